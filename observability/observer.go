package observability

import (
	"context"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/gaborage/go-netmanager/network"
)

const instrumentationName = "github.com/gaborage/go-netmanager/network"

// Metric names recorded by OTelObserver.
const (
	MetricCallDuration = "network.client.call.duration"
	MetricCalls        = "network.client.calls"
	MetricAttempts     = "network.client.attempts"
	MetricActiveCalls  = "network.client.active_calls"
)

// Outcome labels shared by the OTel and Prometheus observers.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeCanceled  = "canceled"
)

type spanKey struct {
	id      string
	started int64
}

func keyOf(info network.CallInfo) spanKey {
	return spanKey{id: info.ID, started: info.StartedAt.UnixNano()}
}

// OTelObserver records one client span per call plus call and attempt metrics.
// The span covers every attempt; retries show up in the attempt count.
type OTelObserver struct {
	tracer trace.Tracer

	duration metric.Float64Histogram
	calls    metric.Int64Counter
	attempts metric.Int64Counter
	active   metric.Int64UpDownCounter

	spans sync.Map // spanKey -> trace.Span
}

var _ network.Observer = (*OTelObserver)(nil)

// NewOTelObserver creates an observer from the given providers.
// Instrument creation errors are returned so misconfigured meters surface at startup.
func NewOTelObserver(tp trace.TracerProvider, mp metric.MeterProvider) (*OTelObserver, error) {
	meter := mp.Meter(instrumentationName)

	duration, err := CreateHistogram(meter, MetricCallDuration, "Duration of network calls including retries",
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	calls, err := CreateCounter(meter, MetricCalls, "Network calls by outcome")
	if err != nil {
		return nil, err
	}
	attempts, err := CreateCounter(meter, MetricAttempts, "Transport attempts made by network calls")
	if err != nil {
		return nil, err
	}
	active, err := CreateUpDownCounter(meter, MetricActiveCalls, "Network calls in flight")
	if err != nil {
		return nil, err
	}

	return &OTelObserver{
		tracer:   tp.Tracer(instrumentationName),
		duration: duration,
		calls:    calls,
		attempts: attempts,
		active:   active,
	}, nil
}

// NewOTelObserverFromProvider is NewOTelObserver over p's providers.
func NewOTelObserverFromProvider(p Provider) (*OTelObserver, error) {
	return NewOTelObserver(p.TracerProvider(), p.MeterProvider())
}

func (o *OTelObserver) OnStart(ctx context.Context, info network.CallInfo) {
	_, span := o.tracer.Start(ctx, "network "+info.Method.String(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithTimestamp(info.StartedAt),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(info.Method.String()),
			semconv.URLPath(info.Path),
			attribute.String("network.request_id", info.ID),
		),
	)
	o.spans.Store(keyOf(info), span)
	o.active.Add(ctx, 1, metric.WithAttributes(semconv.HTTPRequestMethodKey.String(info.Method.String())))
}

func (o *OTelObserver) OnOutput(_ context.Context, info network.CallInfo, _ any) {
	if span, ok := o.span(info, false); ok {
		span.AddEvent("output")
	}
}

func (o *OTelObserver) OnComplete(ctx context.Context, info network.CallInfo, c network.Completion) {
	outcome := OutcomeSucceeded
	if c.Status == network.StatusFailed {
		outcome = OutcomeFailed
	}

	if span, ok := o.span(info, true); ok {
		span.SetAttributes(
			semconv.URLFull(info.URL),
			attribute.Int("network.attempts", c.Attempts),
		)
		if c.StatusCode != 0 {
			span.SetAttributes(semconv.HTTPResponseStatusCode(c.StatusCode))
		}
		if c.Err != nil {
			span.RecordError(c.Err)
			span.SetStatus(codes.Error, c.Err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}

	o.record(ctx, info, outcome, c.Attempts, c.Elapsed)
}

func (o *OTelObserver) OnCancel(ctx context.Context, info network.CallInfo) {
	if span, ok := o.span(info, true); ok {
		span.SetStatus(codes.Error, network.ErrCanceled.Error())
		span.End()
	}
	o.record(ctx, info, OutcomeCanceled, 0, time.Since(info.StartedAt))
}

func (o *OTelObserver) record(ctx context.Context, info network.CallInfo, outcome string, attempts int, elapsed time.Duration) {
	method := semconv.HTTPRequestMethodKey.String(info.Method.String())
	attrs := metric.WithAttributes(method, attribute.String("outcome", outcome), attribute.String("host", hostOf(info.URL)))

	o.calls.Add(ctx, 1, attrs)
	o.duration.Record(ctx, elapsed.Seconds(), attrs)
	if attempts > 0 {
		o.attempts.Add(ctx, int64(attempts), metric.WithAttributes(method))
	}
	o.active.Add(ctx, -1, metric.WithAttributes(method))
}

// span looks up the span started for info, removing it when end is set.
func (o *OTelObserver) span(info network.CallInfo, end bool) (trace.Span, bool) {
	var (
		v  any
		ok bool
	)
	if end {
		v, ok = o.spans.LoadAndDelete(keyOf(info))
	} else {
		v, ok = o.spans.Load(keyOf(info))
	}
	if !ok {
		return nil, false
	}
	return v.(trace.Span), true
}

// hostOf returns the host of raw, or "unknown" before the URL is built.
func hostOf(raw string) string {
	if raw == "" {
		return "unknown"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
