package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultEnvPrefix prefixes every environment variable read by Load
	DefaultEnvPrefix = "NETMGR_"

	// DefaultFile is the optional YAML file read by Load
	DefaultFile = "config.yaml"
)

type loadOptions struct {
	files     []string
	envPrefix string
}

// LoadOption customizes Load.
type LoadOption func(*loadOptions)

// WithFile replaces the YAML files read by Load. Missing files are skipped.
func WithFile(paths ...string) LoadOption {
	return func(o *loadOptions) {
		o.files = paths
	}
}

// WithEnvPrefix replaces the NETMGR_ prefix. An empty prefix reads every variable.
func WithEnvPrefix(prefix string) LoadOption {
	return func(o *loadOptions) {
		o.envPrefix = prefix
	}
}

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. YAML configuration files, then config.<app.env>.yaml
// 3. Default values (lowest priority)
func Load(opts ...LoadOption) (*Config, error) {
	o := loadOptions{files: []string{DefaultFile}, envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.New(".")
	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	for _, path := range o.files {
		if err := loadOptionalFile(k, path); err != nil {
			return nil, err
		}
	}

	// Environment-specific overlay, e.g. config.production.yaml
	if env := k.String("app.env"); env != "" && len(o.files) > 0 {
		if err := loadOptionalFile(k, envFileName(o.files[0], env)); err != nil {
			return nil, err
		}
	}

	if err := loadEnv(k, o.envPrefix); err != nil {
		return nil, err
	}

	return finalize(k)
}

// LoadBytes loads configuration from YAML data layered over the defaults.
// Environment variables are not consulted.
func LoadBytes(data []byte) (*Config, error) {
	k := koanf.New(".")
	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return finalize(k)
}

func finalize(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.k = k

	cfg.Observability.ApplyDefaults()
	if cfg.Observability.Service.Name == "" {
		cfg.Observability.Service.Name = cfg.App.Name
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadOptionalFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// envFileName turns config.yaml into config.<env>.yaml next to it.
func envFileName(base, env string) string {
	ext := ".yaml"
	if strings.HasSuffix(base, ".yml") {
		ext = ".yml"
	}
	return strings.TrimSuffix(base, ext) + "." + env + ext
}

func loadEnv(k *koanf.Koanf, prefix string) error {
	provider := env.Provider(".", env.Opt{
		Prefix: prefix,
		TransformFunc: func(key, value string) (string, any) {
			// NETMGR_NETWORK_RETRY_COUNT -> network.retry.count
			key = strings.TrimPrefix(key, prefix)
			return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
		},
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":    "netmanager",
		"app.version": "v1.0.0",
		"app.env":     EnvDevelopment,

		"log.level":  "info",
		"log.pretty": false,

		"network.stage":          EnvDevelopment,
		"network.timeout":        "10s",
		"network.retry.count":    3,
		"network.retry.delay":    "2s",
		"network.retry.backoff":  false,
		"network.retry.maxdelay": "30s",
		"network.rate.limit":     0,
		"network.rate.burst":     1,
		"network.trace.header":   "X-Request-ID",

		"observability.enabled": false,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
