package app

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-netmanager/config"
	"github.com/gaborage/go-netmanager/logger"
	"github.com/gaborage/go-netmanager/network"
	"github.com/gaborage/go-netmanager/observability"
	"github.com/gaborage/go-netmanager/testing/fixtures"
	"github.com/gaborage/go-netmanager/testing/mocks"
	"github.com/gaborage/go-netmanager/trace"
)

const itemJSON = `{"id":7}`

type item struct {
	ID int `json:"id"`
}

// syncBuffer guards a bytes.Buffer shared between the logger and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fakeSignals struct {
	notified chan chan<- os.Signal
	stopped  atomic.Bool
}

func newFakeSignals() *fakeSignals {
	return &fakeSignals{notified: make(chan chan<- os.Signal, 1)}
}

func (f *fakeSignals) Notify(c chan<- os.Signal, _ ...os.Signal) {
	f.notified <- c
}

func (f *fakeSignals) Stop(chan<- os.Signal) {
	f.stopped.Store(true)
}

func newTestApp(t *testing.T, cfg *config.Config, opts *Options) (*App, *syncBuffer) {
	t.Helper()
	logs := &syncBuffer{}
	if opts == nil {
		opts = &Options{}
	}
	opts.Logger = logger.NewWithWriter(logs, "debug")
	if opts.Registerer == nil {
		opts.Registerer = prometheus.NewRegistry()
	}
	a, err := NewWithConfig(cfg, opts)
	require.NoError(t, err)
	return a, logs
}

func TestNewWithConfigDispatches(t *testing.T) {
	transport := fixtures.NewHealthyTransport(itemJSON)
	a, logs := newTestApp(t, fixtures.NewTestConfig(fixtures.DefaultBaseURL, ""), &Options{Transport: transport})

	got, err := network.Do[item](context.Background(), a.Dispatcher(),
		network.NewDynamicEndpoint("/items", network.MethodGet, network.WithParameter("page", 2)))
	require.NoError(t, err)
	assert.Equal(t, 7, got.ID)

	require.Len(t, transport.Requests(), 1)
	assert.Equal(t, fixtures.DefaultBaseURL+"/items?page=2", transport.Requests()[0].URL)

	assert.True(t, observability.IsNoop(a.Observability()))
	assert.Equal(t, "test-app", a.Config().App.Name)
	assert.NotNil(t, a.Logger())
	assert.Contains(t, logs.String(), "Network dispatcher configured")
	assert.Contains(t, logs.String(), "network call completed")
	assert.NoError(t, a.Shutdown(context.Background()))
}

func TestNewWithConfigRetriesFromConfig(t *testing.T) {
	transport := fixtures.NewFlakyTransport(1, http.StatusServiceUnavailable, itemJSON)
	a, _ := newTestApp(t, fixtures.NewTestConfig(fixtures.DefaultBaseURL, ""), &Options{Transport: transport})

	_, err := network.Do[item](context.Background(), a.Dispatcher(), network.NewDynamicEndpoint("/items", network.MethodGet))
	require.NoError(t, err)
	transport.AssertNumberOfCalls(t, "Send", 2)
}

func TestNewWithConfigObservers(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := mocks.NewRecordingObserver()
	cfg := fixtures.NewTestConfig(fixtures.DefaultBaseURL, `
observability:
  prometheus:
    enabled: true
    namespace: billing
`)

	a, _ := newTestApp(t, cfg, &Options{
		Transport:  fixtures.NewHealthyTransport(itemJSON),
		Registerer: reg,
		Observers:  []network.Observer{recorder},
	})

	_, err := network.Do[item](context.Background(), a.Dispatcher(), network.NewDynamicEndpoint("/items", network.MethodGet))
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "output", "complete"}, recorder.Names())
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "billing_network_calls_total"))
}

func TestNewWithConfigOpenTelemetry(t *testing.T) {
	cfg := fixtures.NewTestConfig(fixtures.DefaultBaseURL, `
observability:
  enabled: true
  metrics:
    enabled: false
`)
	a, logs := newTestApp(t, cfg, &Options{Transport: fixtures.NewHealthyTransport(itemJSON)})
	assert.False(t, observability.IsNoop(a.Observability()))
	assert.Contains(t, logs.String(), "OpenTelemetry enabled")

	_, err := network.Do[item](context.Background(), a.Dispatcher(), network.NewDynamicEndpoint("/items", network.MethodGet))
	require.NoError(t, err)
	assert.NoError(t, a.Shutdown(context.Background()))
}

func TestNewWithConfigInvalidObservability(t *testing.T) {
	cfg := fixtures.NewTestConfig(fixtures.DefaultBaseURL, "")
	cfg.Observability.Enabled = true
	cfg.Observability.Service.Name = ""

	_, err := NewWithConfig(cfg, &Options{Logger: logger.Nop()})
	assert.ErrorIs(t, err, observability.ErrMissingServiceName)
}

func TestNewWithConfigNil(t *testing.T) {
	_, err := NewWithConfig(nil, nil)
	assert.Error(t, err)
}

func TestNewWithOptionsConfigLoaderError(t *testing.T) {
	_, err := NewWithOptions(&Options{
		ConfigLoader: func() (*config.Config, error) { return nil, errors.New("boom") },
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestNewWithConfigRateLimit(t *testing.T) {
	cfg := fixtures.NewTestConfig(fixtures.DefaultBaseURL, `
  rate:
    limit: 50
    burst: 2
`)
	_, logs := newTestApp(t, cfg, &Options{Transport: fixtures.NewHealthyTransport(itemJSON)})
	assert.Contains(t, logs.String(), "Rate limiting outgoing calls to 50.00/s")
}

func TestDefaultTransportPropagatesRequestID(t *testing.T) {
	var seen atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get("X-Correlation-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(itemJSON))
	}))
	defer srv.Close()

	cfg := fixtures.NewTestConfig(srv.URL, `
  trace:
    header: X-Correlation-ID
`)
	a, _ := newTestApp(t, cfg, nil)

	call := network.Request[item](context.Background(), a.Dispatcher(), network.NewDynamicEndpoint("/items", network.MethodGet))
	got, err := call.Wait()
	require.NoError(t, err)
	assert.Equal(t, 7, got.ID)
	assert.Equal(t, call.Info().ID, seen.Load())
}

func TestInstrumentedTransportOwnsTraceParent(t *testing.T) {
	const manual = "00-0123456789abcdef0123456789abcdef-0123456789abcdef-01"
	var seen atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get(trace.HeaderTraceParent))
		_, _ = w.Write([]byte(itemJSON))
	}))
	defer srv.Close()

	for _, tt := range []struct {
		name      string
		extraYAML string
		otel      bool
	}{
		{name: "without telemetry", extraYAML: ""},
		{name: "with telemetry", extraYAML: `
observability:
  enabled: true
  metrics:
    enabled: false
`, otel: true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestApp(t, fixtures.NewTestConfig(srv.URL, tt.extraYAML), nil)
			defer func() { assert.NoError(t, a.Shutdown(context.Background())) }()

			ctx := trace.WithTraceParent(context.Background(), manual)
			_, err := network.Do[item](ctx, a.Dispatcher(), network.NewDynamicEndpoint("/items", network.MethodGet))
			require.NoError(t, err)

			got, _ := seen.Load().(string)
			if !tt.otel {
				assert.Equal(t, manual, got)
				return
			}
			assert.NotEqual(t, manual, got)
			assert.Regexp(t, `^00-[0-9a-f]{32}-[0-9a-f]{16}-0[01]$`, got)
		})
	}
}

func TestRunJobCompletes(t *testing.T) {
	signals := newFakeSignals()
	a, logs := newTestApp(t, fixtures.NewTestConfig(fixtures.DefaultBaseURL, ""), &Options{
		Transport:     fixtures.NewHealthyTransport(itemJSON),
		SignalHandler: signals,
	})

	var got item
	err := a.Run(func(ctx context.Context, d *network.Dispatcher) error {
		var err error
		got, err = network.Do[item](ctx, d, network.NewDynamicEndpoint("/items", network.MethodGet))
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got.ID)
	assert.True(t, signals.stopped.Load())
	assert.Contains(t, logs.String(), "Application shutdown complete")
}

func TestRunJobError(t *testing.T) {
	a, _ := newTestApp(t, fixtures.NewTestConfig(fixtures.DefaultBaseURL, ""), &Options{
		Transport:     fixtures.NewFailingTransport(errors.New("connection refused")),
		SignalHandler: newFakeSignals(),
	})

	err := a.Run(func(ctx context.Context, d *network.Dispatcher) error {
		_, err := network.Do[item](ctx, d, network.NewDynamicEndpoint("/items", network.MethodGet))
		return err
	})
	require.Error(t, err)
	assert.True(t, network.IsErrorType(err, network.CustomError))
}

func TestRunSignalCancelsInFlightCalls(t *testing.T) {
	signals := newFakeSignals()
	started := make(chan struct{})
	blocking := network.TransportFunc(func(ctx context.Context, _ *network.ResolvedRequest) (*network.RawResponse, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	a, logs := newTestApp(t, fixtures.NewTestConfig(fixtures.DefaultBaseURL, ""), &Options{
		Transport:     blocking,
		SignalHandler: signals,
	})

	var callStatus atomic.Value
	done := make(chan error, 1)
	go func() {
		done <- a.Run(func(ctx context.Context, d *network.Dispatcher) error {
			call := network.Request[item](ctx, d, network.NewDynamicEndpoint("/slow", network.MethodGet))
			_, err := call.Wait()
			callStatus.Store(call.Status())
			return err
		})
	}()

	quit := <-signals.notified
	<-started
	quit <- os.Interrupt

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after signal")
	}
	assert.Equal(t, network.StatusCanceled, callStatus.Load())
	assert.Contains(t, logs.String(), "Shutdown signal received")
}
