package observability

import (
	"strings"
	"time"
)

const (
	// EndpointStdout is a special endpoint value that outputs to stdout (for local development).
	EndpointStdout = "stdout"

	// ProtocolHTTP specifies OTLP over HTTP/protobuf.
	ProtocolHTTP = "http"

	// ProtocolGRPC specifies OTLP over gRPC.
	ProtocolGRPC = "grpc"

	// EnvironmentDevelopment is the default environment name for development mode.
	EnvironmentDevelopment = "development"

	// DefaultPrometheusNamespace prefixes every Prometheus metric name.
	DefaultPrometheusNamespace = "netmanager"
)

// BoolPtr returns a pointer to the provided bool value.
// Helpful when optional boolean configuration fields are used.
func BoolPtr(v bool) *bool {
	return &v
}

// Float64Ptr returns a pointer to the provided float64 value.
func Float64Ptr(v float64) *float64 {
	return &v
}

// Config defines the configuration for observability features.
// It is loaded as the "observability" section of the application config.
type Config struct {
	// Enabled controls whether OpenTelemetry export is active.
	// When false, the provider is a no-op.
	Enabled bool `koanf:"enabled" json:"enabled" yaml:"enabled"`

	// Service contains service identification metadata.
	Service ServiceConfig `koanf:"service" json:"service" yaml:"service"`

	// Environment indicates the deployment environment (e.g., production, staging, development).
	Environment string `koanf:"environment" json:"environment" yaml:"environment"`

	// Trace contains tracing-specific configuration.
	Trace TraceConfig `koanf:"trace" json:"trace" yaml:"trace"`

	// Metrics contains metrics-specific configuration.
	Metrics MetricsConfig `koanf:"metrics" json:"metrics" yaml:"metrics"`

	// Prometheus controls the Prometheus call observer, independent of Enabled.
	Prometheus PrometheusConfig `koanf:"prometheus" json:"prometheus" yaml:"prometheus"`
}

// ServiceConfig contains service identification metadata.
type ServiceConfig struct {
	// Name identifies the service in traces and metrics.
	// Required when observability is enabled.
	Name    string `koanf:"name" json:"name" yaml:"name"`
	Version string `koanf:"version" json:"version" yaml:"version"`
}

// TraceConfig defines configuration for distributed tracing.
type TraceConfig struct {
	// Enabled controls whether tracing is active.
	// nil = apply default (true when observability is enabled), false = explicitly disabled.
	Enabled *bool `koanf:"enabled" json:"enabled" yaml:"enabled"`

	// Endpoint specifies where to send trace data.
	// "stdout" prints spans; otherwise an OTLP endpoint, "host:port" for gRPC
	// and "host:port" or a full URL for HTTP.
	Endpoint string `koanf:"endpoint" json:"endpoint" yaml:"endpoint"`

	// Protocol is "http" or "grpc". Metrics use the same protocol.
	Protocol string `koanf:"protocol" json:"protocol" yaml:"protocol"`

	// Insecure disables TLS for OTLP exporters.
	Insecure bool `koanf:"insecure" json:"insecure" yaml:"insecure"`

	// Headers are sent with every OTLP export, typically for authentication.
	Headers map[string]string `koanf:"headers" json:"headers" yaml:"headers"`

	Sample SampleConfig `koanf:"sample" json:"sample" yaml:"sample"`
	Batch  BatchConfig  `koanf:"batch" json:"batch" yaml:"batch"`
}

// SampleConfig defines sampling configuration for traces.
type SampleConfig struct {
	// Rate controls what fraction of traces to collect (0.0 to 1.0).
	// nil = apply default (1.0), explicit value = use that value (including 0.0).
	Rate *float64 `koanf:"rate" json:"rate" yaml:"rate"`
}

// BatchConfig defines batch span processing.
type BatchConfig struct {
	Timeout       time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout"`
	ExportTimeout time.Duration `koanf:"exporttimeout" json:"exporttimeout" yaml:"exporttimeout"`
}

// MetricsConfig defines configuration for OpenTelemetry metrics.
type MetricsConfig struct {
	// Enabled controls whether metrics are exported.
	// nil = apply default (true when observability is enabled), false = explicitly disabled.
	Enabled *bool `koanf:"enabled" json:"enabled" yaml:"enabled"`

	// Endpoint follows the same rules as TraceConfig.Endpoint.
	Endpoint string `koanf:"endpoint" json:"endpoint" yaml:"endpoint"`

	// Interval is how often metrics are exported.
	Interval time.Duration `koanf:"interval" json:"interval" yaml:"interval"`

	ExportTimeout time.Duration `koanf:"exporttimeout" json:"exporttimeout" yaml:"exporttimeout"`
}

// PrometheusConfig configures the Prometheus call observer.
type PrometheusConfig struct {
	Enabled   bool   `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Namespace string `koanf:"namespace" json:"namespace" yaml:"namespace"`
}

// TraceEnabled reports whether spans are exported.
func (c *Config) TraceEnabled() bool {
	return c.Enabled && c.Trace.Enabled != nil && *c.Trace.Enabled
}

// MetricsEnabled reports whether OpenTelemetry metrics are exported.
func (c *Config) MetricsEnabled() bool {
	return c.Enabled && c.Metrics.Enabled != nil && *c.Metrics.Enabled
}

// ApplyDefaults sets default values for any config fields that are not specified.
// It is idempotent.
func (c *Config) ApplyDefaults() {
	if c.Service.Version == "" {
		c.Service.Version = "unknown"
	}
	if c.Environment == "" {
		c.Environment = EnvironmentDevelopment
	}
	if c.Prometheus.Namespace == "" {
		c.Prometheus.Namespace = DefaultPrometheusNamespace
	}

	c.applyTraceDefaults()
	c.applyMetricsDefaults()
}

func (c *Config) applyTraceDefaults() {
	if c.Trace.Endpoint == "" {
		c.Trace.Endpoint = EndpointStdout
	}
	// Only set when unset. An explicit false is preserved.
	if c.Enabled && c.Trace.Enabled == nil {
		c.Trace.Enabled = BoolPtr(true)
	}
	if c.Trace.Protocol == "" {
		c.Trace.Protocol = ProtocolHTTP
	}
	if c.Trace.Sample.Rate == nil {
		c.Trace.Sample.Rate = Float64Ptr(1.0)
	}

	dev := c.isDevelopment(c.Trace.Endpoint)
	if c.Trace.Batch.Timeout == 0 {
		c.Trace.Batch.Timeout = pick(dev, 500*time.Millisecond, 5*time.Second)
	}
	if c.Trace.Batch.ExportTimeout == 0 {
		c.Trace.Batch.ExportTimeout = pick(dev, 10*time.Second, 60*time.Second)
	}
}

func (c *Config) applyMetricsDefaults() {
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = EndpointStdout
	}
	if c.Enabled && c.Metrics.Enabled == nil {
		c.Metrics.Enabled = BoolPtr(true)
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = 10 * time.Second
	}
	if c.Metrics.ExportTimeout == 0 {
		c.Metrics.ExportTimeout = pick(c.isDevelopment(c.Metrics.Endpoint), 10*time.Second, 60*time.Second)
	}
}

// isDevelopment selects fast-feedback batching for local setups.
func (c *Config) isDevelopment(endpoint string) bool {
	return c.Environment == EnvironmentDevelopment || endpoint == EndpointStdout
}

func pick(cond bool, a, b time.Duration) time.Duration {
	if cond {
		return a
	}
	return b
}

// Validate checks the configuration. Call ApplyDefaults first.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if !c.Enabled {
		return nil
	}
	if c.Service.Name == "" {
		return ErrMissingServiceName
	}
	if c.Trace.Sample.Rate != nil && (*c.Trace.Sample.Rate < 0 || *c.Trace.Sample.Rate > 1) {
		return ErrInvalidSampleRate
	}
	if c.Trace.Protocol != ProtocolHTTP && c.Trace.Protocol != ProtocolGRPC {
		return ErrInvalidProtocol
	}
	if c.Trace.Protocol == ProtocolGRPC {
		for _, endpoint := range []string{c.Trace.Endpoint, c.Metrics.Endpoint} {
			if strings.Contains(endpoint, "://") {
				return ErrInvalidEndpointFormat
			}
		}
	}
	return nil
}
