package config

import (
	"time"

	"github.com/knadh/koanf/v2"

	"github.com/gaborage/go-netmanager/observability"
)

// Config represents the overall application configuration structure.
// The embedded koanf.Koanf instance allows access to keys that are not
// declared in the struct.
type Config struct {
	App           AppConfig            `koanf:"app" json:"app" yaml:"app"`
	Log           LogConfig            `koanf:"log" json:"log" yaml:"log"`
	Network       NetworkConfig        `koanf:"network" json:"network" yaml:"network"`
	Observability observability.Config `koanf:"observability" json:"observability" yaml:"observability"`

	k *koanf.Koanf `json:"-" yaml:"-"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name    string `koanf:"name" json:"name" yaml:"name" validate:"required"`
	Version string `koanf:"version" json:"version" yaml:"version" validate:"required"`
	Env     string `koanf:"env" json:"env" yaml:"env" validate:"oneof=development staging production"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty"`
}

// NetworkConfig holds the dispatcher settings.
//
// The base URL is taken from Environments[Stage] when Environments is set,
// otherwise from BaseURL.
type NetworkConfig struct {
	Stage        string            `koanf:"stage" json:"stage" yaml:"stage"`
	BaseURL      string            `koanf:"baseurl" json:"baseurl" yaml:"baseurl" validate:"omitempty,url"`
	Environments map[string]string `koanf:"environments" json:"environments" yaml:"environments" validate:"omitempty,dive,url"`
	Headers      map[string]string `koanf:"headers" json:"headers" yaml:"headers"`
	Timeout      time.Duration     `koanf:"timeout" json:"timeout" yaml:"timeout" validate:"gte=0"`
	Retry        RetryConfig       `koanf:"retry" json:"retry" yaml:"retry"`
	Rate         RateConfig        `koanf:"rate" json:"rate" yaml:"rate"`
	Trace        TraceConfig       `koanf:"trace" json:"trace" yaml:"trace"`
}

// RetryConfig controls how failed attempts are retried.
type RetryConfig struct {
	Count int           `koanf:"count" json:"count" yaml:"count" validate:"gte=0,lte=100"`
	Delay time.Duration `koanf:"delay" json:"delay" yaml:"delay" validate:"gte=0"`
	// Backoff switches from a fixed delay to jittered exponential backoff capped at MaxDelay.
	Backoff  bool          `koanf:"backoff" json:"backoff" yaml:"backoff"`
	MaxDelay time.Duration `koanf:"maxdelay" json:"maxdelay" yaml:"maxdelay" validate:"gte=0"`
}

// RateConfig throttles outgoing attempts. A zero limit disables throttling.
type RateConfig struct {
	Limit float64 `koanf:"limit" json:"limit" yaml:"limit" validate:"gte=0"`
	Burst int     `koanf:"burst" json:"burst" yaml:"burst" validate:"gte=0"`
}

// TraceConfig holds request correlation settings.
type TraceConfig struct {
	Header string `koanf:"header" json:"header" yaml:"header"`
}

// ResolvedBaseURL returns the base URL for the configured stage.
func (n NetworkConfig) ResolvedBaseURL() string {
	if len(n.Environments) > 0 {
		return n.Environments[n.Stage]
	}
	return n.BaseURL
}
