package observability

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

// InstrumentRoundTripper wraps base so every attempt gets its own HTTP client
// span and carries the W3C traceparent. A nil base wraps http.DefaultTransport.
// The no-op provider returns base unchanged.
func InstrumentRoundTripper(p Provider, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if IsNoop(p) {
		return base
	}
	return otelhttp.NewTransport(base,
		otelhttp.WithTracerProvider(p.TracerProvider()),
		otelhttp.WithMeterProvider(p.MeterProvider()),
		otelhttp.WithPropagators(otel.GetTextMapPropagator()),
	)
}
