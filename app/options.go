package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gaborage/go-netmanager/config"
	"github.com/gaborage/go-netmanager/logger"
	"github.com/gaborage/go-netmanager/network"
)

// DefaultShutdownTimeout bounds Shutdown during Run.
const DefaultShutdownTimeout = 10 * time.Second

// Options contains optional dependencies for creating an App instance.
// Zero values select the production defaults.
type Options struct {
	// ConfigLoader replaces config.Load in New.
	ConfigLoader func() (*config.Config, error)
	// Logger replaces the logger built from the log section.
	Logger logger.Logger
	// Transport replaces the net/http transport, typically with a mock.
	Transport network.Transport
	// Decoder replaces the JSON decoder.
	Decoder network.Decoder
	// Observers are registered after the built-in ones.
	Observers []network.Observer
	// Registerer receives the Prometheus metrics when observability.prometheus is enabled.
	// Defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer

	SignalHandler   SignalHandler
	TimeoutProvider TimeoutProvider
	ShutdownTimeout time.Duration
}

func resolveOptions(opts *Options) *Options {
	resolved := Options{}
	if opts != nil {
		resolved = *opts
	}
	if resolved.ConfigLoader == nil {
		resolved.ConfigLoader = func() (*config.Config, error) { return config.Load() }
	}
	if resolved.SignalHandler == nil {
		resolved.SignalHandler = osSignalHandler{}
	}
	if resolved.TimeoutProvider == nil {
		resolved.TimeoutProvider = standardTimeoutProvider{}
	}
	if resolved.ShutdownTimeout <= 0 {
		resolved.ShutdownTimeout = DefaultShutdownTimeout
	}
	if resolved.Registerer == nil {
		resolved.Registerer = prometheus.DefaultRegisterer
	}
	return &resolved
}
