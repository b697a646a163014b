package network

import (
	"fmt"
	"maps"
	"net/url"
	"reflect"
	"strconv"
	"time"
)

// ResolvedRequest is a fully materialized request ready for a Transport.
// It is built once per call and reused unchanged by every retry.
type ResolvedRequest struct {
	URL     string
	Method  Method
	Headers map[string]string
	Body    []byte
	Timeout time.Duration
}

// BuildRequest resolves ep against the current providers of cfg. It performs
// no I/O. Failures are ClientErrors of type InvalidURLError or ValidationError.
func BuildRequest(ep Endpoint, cfg *Configuration) (*ResolvedRequest, error) {
	if cfg == nil {
		return nil, NewValidationError("configuration cannot be nil", "configuration")
	}
	return buildRequest(ep, cfg.snapshot())
}

func buildRequest(ep Endpoint, p providerSnapshot) (*ResolvedRequest, error) {
	if isNilEndpoint(ep) {
		return nil, NewValidationError("endpoint cannot be nil", "endpoint")
	}
	method := ep.Method()
	if !method.Valid() {
		return nil, NewValidationError(fmt.Sprintf("unsupported method %q", method), "method")
	}

	raw := p.environment.BaseURL() + ep.Path()
	u, err := url.Parse(raw)
	if err != nil {
		return nil, NewInvalidURLError(raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, NewInvalidURLError(raw, nil)
	}

	if params := ep.Parameters(); method == MethodGet && len(params) > 0 {
		query := u.Query()
		for key, value := range params {
			query.Add(key, stringifyParameter(value))
		}
		// Encode sorts by key
		u.RawQuery = query.Encode()
	}

	req := &ResolvedRequest{
		URL:     u.String(),
		Method:  method,
		Headers: mergeHeaders(p.headers.DefaultHeaders(), ep.Headers()),
		Timeout: p.timeout.Timeout(),
	}
	if method.CarriesBody() {
		req.Body = ep.Body()
	}
	return req, nil
}

// mergeHeaders overlays overrides on a copy of defaults.
func mergeHeaders(defaults, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(defaults)+len(overrides))
	maps.Copy(merged, defaults)
	maps.Copy(merged, overrides)
	return merged
}

// stringifyParameter renders a query parameter value.
// Numbers are decimal, booleans "true"/"false", times RFC 3339 and nil the empty string.
// Pointers are rendered as the value they point to.
func stringifyParameter(v any) string {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		if s, ok := v.(fmt.Stringer); ok {
			return s.String()
		}
		return stringifyParameter(rv.Elem().Interface())
	}

	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func isNilEndpoint(ep Endpoint) bool {
	if ep == nil {
		return true
	}
	rv := reflect.ValueOf(ep)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
