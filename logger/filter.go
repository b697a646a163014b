package logger

import "strings"

// DefaultMaskValue replaces sensitive values in log output.
const DefaultMaskValue = "***"

// MaskConfig lists the key fragments considered sensitive.
// Matching is case-insensitive and by substring, so "X-Api-Key" matches "key".
type MaskConfig struct {
	SensitiveKeys []string
	MaskValue     string
}

// DefaultMaskConfig covers the header and field names that usually carry credentials.
func DefaultMaskConfig() *MaskConfig {
	return &MaskConfig{
		SensitiveKeys: []string{
			"authorization", "cookie",
			"password", "secret", "token",
			"api_key", "apikey", "api-key",
			"credential",
		},
		MaskValue: DefaultMaskValue,
	}
}

// Masker hides sensitive values before they reach the log writer.
type Masker struct {
	keys []string
	mask string
}

// NewMasker creates a Masker. A nil config uses DefaultMaskConfig.
func NewMasker(cfg *MaskConfig) *Masker {
	if cfg == nil {
		cfg = DefaultMaskConfig()
	}
	mask := cfg.MaskValue
	if mask == "" {
		mask = DefaultMaskValue
	}
	keys := make([]string, 0, len(cfg.SensitiveKeys))
	for _, k := range cfg.SensitiveKeys {
		keys = append(keys, strings.ToLower(k))
	}
	return &Masker{keys: keys, mask: mask}
}

// IsSensitive reports whether key names a sensitive value.
func (m *Masker) IsSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, k := range m.keys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// MaskString returns the mask when key is sensitive, value otherwise.
func (m *Masker) MaskString(key, value string) string {
	if m.IsSensitive(key) {
		return m.mask
	}
	return value
}

// MaskValue masks a whole value for a sensitive key and masks entries of
// string maps (such as header sets) whose own keys are sensitive.
func (m *Masker) MaskValue(key string, value any) any {
	if m.IsSensitive(key) {
		return m.mask
	}
	switch v := value.(type) {
	case map[string]string:
		return m.MaskHeaders(v)
	case map[string]any:
		return m.MaskFields(v)
	default:
		return value
	}
}

// MaskHeaders returns a copy of headers with sensitive values masked.
func (m *Masker) MaskHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = m.MaskString(k, v)
	}
	return out
}

// MaskFields returns a copy of fields with sensitive values masked.
func (m *Masker) MaskFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = m.MaskValue(k, v)
	}
	return out
}
