package observability

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// noopProvider is returned when observability is disabled.
// Observers built from it record nothing.
type noopProvider struct{}

func newNoopProvider() noopProvider {
	return noopProvider{}
}

func (noopProvider) TracerProvider() trace.TracerProvider {
	return tracenoop.NewTracerProvider()
}

func (noopProvider) MeterProvider() metric.MeterProvider {
	return metricnoop.NewMeterProvider()
}

func (noopProvider) Shutdown(context.Context) error {
	return nil
}

func (noopProvider) ForceFlush(context.Context) error {
	return nil
}

// IsNoop reports whether p records nothing.
func IsNoop(p Provider) bool {
	_, ok := p.(noopProvider)
	return p == nil || ok
}
