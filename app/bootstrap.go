package app

import (
	"fmt"

	"github.com/gaborage/go-netmanager/config"
	"github.com/gaborage/go-netmanager/logger"
	"github.com/gaborage/go-netmanager/network"
	"github.com/gaborage/go-netmanager/observability"
)

// appBootstrap handles the initialization sequence for creating an App instance.
type appBootstrap struct {
	cfg  *config.Config
	log  logger.Logger
	opts *Options
}

func newAppBootstrap(cfg *config.Config, opts *Options) *appBootstrap {
	log := opts.Logger
	if log == nil {
		log = logger.New(cfg.Log.Level, cfg.Log.Pretty)
	}
	return &appBootstrap{cfg: cfg, log: log, opts: opts}
}

// telemetry creates the observability provider and the observers fed by it.
func (b *appBootstrap) telemetry() (observability.Provider, []network.Observer, error) {
	provider, err := observability.NewProvider(&b.cfg.Observability)
	if err != nil {
		return nil, nil, err
	}

	observers := []network.Observer{network.NewLogObserver(b.log)}

	if !observability.IsNoop(provider) {
		otelObs, err := observability.NewOTelObserverFromProvider(provider)
		if err != nil {
			_ = observability.Shutdown(provider, 0)
			return nil, nil, fmt.Errorf("failed to create otel observer: %w", err)
		}
		observers = append(observers, otelObs)
		b.log.Info().
			Str("service", b.cfg.Observability.Service.Name).
			Str("trace_endpoint", b.cfg.Observability.Trace.Endpoint).
			Msg("OpenTelemetry enabled")
	}

	if b.cfg.Observability.Prometheus.Enabled {
		observers = append(observers,
			observability.NewPrometheusObserver(b.opts.Registerer, b.cfg.Observability.Prometheus.Namespace))
		b.log.Debug().Msg("Prometheus call metrics registered")
	}

	return provider, append(observers, b.opts.Observers...), nil
}

// dispatcher assembles the network dispatcher from the network section.
func (b *appBootstrap) dispatcher(provider observability.Provider, observers []network.Observer) *network.Dispatcher {
	netCfg := b.cfg.Network
	traceHeader := netCfg.Trace.Header

	transport := b.opts.Transport
	if transport == nil {
		transport = network.NewHTTPTransport(
			network.WithRoundTripper(observability.InstrumentRoundTripper(provider, nil)),
			network.WithRequestInterceptor(network.NewTraceInterceptor(traceHeader)),
		)
	}

	opts := []network.Option{
		network.WithTransport(transport),
		network.WithTraceIDHeader(traceHeader),
		network.WithObserver(observers...),
	}
	if b.opts.Decoder != nil {
		opts = append(opts, network.WithDecoder(b.opts.Decoder))
	}

	rps, burst, err := netCfg.RateLimit()
	switch {
	case err == nil:
		opts = append(opts, network.WithRateLimit(rps, burst))
		b.log.Info().Int("burst", burst).Msgf("Rate limiting outgoing calls to %.2f/s", rps)
	case config.IsNotConfigured(err):
		b.log.Debug().Msg("No rate limit configured, calls are not throttled")
	}

	b.log.Info().
		Str("base_url", netCfg.ResolvedBaseURL()).
		Str("stage", netCfg.Stage).
		Dur("timeout", netCfg.Timeout).
		Int("retries", netCfg.Retry.Count).
		Msg("Network dispatcher configured")

	return network.NewDispatcher(netCfg.Configuration(), b.log, opts...)
}
