package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gaborage/go-netmanager/network"
)

// PrometheusObserver exports call metrics through a Prometheus registry.
type PrometheusObserver struct {
	duration *prometheus.HistogramVec
	calls    *prometheus.CounterVec
	retries  *prometheus.CounterVec
	active   *prometheus.GaugeVec
}

var _ network.Observer = (*PrometheusObserver)(nil)

// NewPrometheusObserver registers the call metrics with registry.
// A nil registry uses prometheus.DefaultRegisterer. Registering twice with the
// same registry and namespace panics, as promauto does.
func NewPrometheusObserver(registry prometheus.Registerer, namespace string) *PrometheusObserver {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &PrometheusObserver{
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "network_call_duration_seconds",
				Help:      "Network call duration in seconds, including retries",
				Buckets: []float64{
					0.005, // 5ms
					0.01,  // 10ms
					0.05,  // 50ms
					0.1,   // 100ms
					0.5,   // 500ms
					1.0,   // 1s
					2.5,   // 2.5s
					5.0,   // 5s
					10.0,  // 10s
					30.0,  // 30s
				},
			},
			[]string{"method", "status_code", "host"},
		),

		calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "network_calls_total",
				Help:      "Total number of network calls by outcome",
			},
			[]string{"method", "outcome"},
		),

		retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "network_retries_total",
				Help:      "Total number of retry attempts",
			},
			[]string{"method", "host"},
		),

		active: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "network_active_calls",
				Help:      "Number of network calls in flight",
			},
			[]string{"method"},
		),
	}
}

func (p *PrometheusObserver) OnStart(_ context.Context, info network.CallInfo) {
	p.active.WithLabelValues(info.Method.String()).Inc()
}

func (p *PrometheusObserver) OnOutput(context.Context, network.CallInfo, any) {}

func (p *PrometheusObserver) OnComplete(_ context.Context, info network.CallInfo, c network.Completion) {
	method := info.Method.String()
	host := hostOf(info.URL)

	outcome := OutcomeSucceeded
	if c.Status == network.StatusFailed {
		outcome = OutcomeFailed
	}
	p.calls.WithLabelValues(method, outcome).Inc()
	p.duration.WithLabelValues(method, strconv.Itoa(c.StatusCode), host).Observe(c.Elapsed.Seconds())
	if c.Attempts > 1 {
		p.retries.WithLabelValues(method, host).Add(float64(c.Attempts - 1))
	}
	p.active.WithLabelValues(method).Dec()
}

func (p *PrometheusObserver) OnCancel(_ context.Context, info network.CallInfo) {
	method := info.Method.String()
	p.calls.WithLabelValues(method, OutcomeCanceled).Inc()
	p.duration.WithLabelValues(method, "0", hostOf(info.URL)).Observe(time.Since(info.StartedAt).Seconds())
	p.active.WithLabelValues(method).Dec()
}
