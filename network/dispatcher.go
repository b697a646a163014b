package network

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/gaborage/go-netmanager/logger"
	"github.com/gaborage/go-netmanager/trace"
)

// Dispatcher sends endpoints through a Transport according to a Configuration.
// It is safe for concurrent use; calls never block each other.
type Dispatcher struct {
	config      *Configuration
	transport   Transport
	decoder     Decoder
	logger      logger.Logger
	observers   observers
	limiter     *rate.Limiter
	traceHeader string
	wait        func(ctx context.Context, d time.Duration) error
	callCount   atomic.Int64
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTransport replaces the default HTTPTransport.
func WithTransport(t Transport) Option {
	return func(d *Dispatcher) {
		if t != nil {
			d.transport = t
		}
	}
}

// WithDecoder replaces the default JSONDecoder.
func WithDecoder(dec Decoder) Option {
	return func(d *Dispatcher) {
		if dec != nil {
			d.decoder = dec
		}
	}
}

// WithObserver attaches observers notified for every call.
func WithObserver(obs ...Observer) Option {
	return func(d *Dispatcher) {
		for _, o := range obs {
			if o != nil {
				d.observers = append(d.observers, o)
			}
		}
	}
}

// WithRateLimit throttles attempts to rps per second with the given burst.
// Retries are throttled too. A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(d *Dispatcher) {
		if rps <= 0 {
			d.limiter = nil
			return
		}
		d.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithTraceIDHeader sets the header used to propagate the request ID by the
// default transport. Empty keeps X-Request-ID.
func WithTraceIDHeader(header string) Option {
	return func(d *Dispatcher) {
		if header != "" {
			d.traceHeader = header
		}
	}
}

// NewDispatcher creates a Dispatcher. A nil cfg uses NewConfiguration(nil, nil),
// a nil logger discards logs.
func NewDispatcher(cfg *Configuration, log logger.Logger, opts ...Option) *Dispatcher {
	if cfg == nil {
		cfg = NewConfiguration(nil, nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	d := &Dispatcher{
		config:      cfg,
		decoder:     JSONDecoder{},
		logger:      log,
		traceHeader: trace.HeaderXRequestID,
		wait:        sleepContext,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.transport == nil {
		d.transport = NewHTTPTransport(WithRequestInterceptor(NewTraceInterceptor(d.traceHeader)))
	}
	return d
}

// Configuration returns the live configuration.
func (d *Dispatcher) Configuration() *Configuration {
	return d.config
}

// SetEnvironment replaces the environment provider for calls started afterwards.
func (d *Dispatcher) SetEnvironment(p EnvironmentProvider) {
	d.config.SetEnvironment(p)
}

// SetHeaders replaces the headers provider for calls started afterwards.
func (d *Dispatcher) SetHeaders(p HeadersProvider) {
	d.config.SetHeaders(p)
}

// CallCount returns the number of calls started so far.
func (d *Dispatcher) CallCount() int64 {
	return d.callCount.Load()
}

// Request dispatches ep asynchronously and decodes a 2xx body into T.
// The configuration is captured when Request is called; observers passed here
// are notified after the dispatcher-level ones.
func Request[T any](ctx context.Context, d *Dispatcher, ep Endpoint, obs ...Observer) *Call[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, id := trace.EnsureRequestID(ctx)
	d.callCount.Add(1)

	info := CallInfo{ID: id, StartedAt: time.Now()}
	if !isNilEndpoint(ep) {
		info.Method = ep.Method()
		info.Path = ep.Path()
	}

	all := make(observers, 0, len(d.observers)+len(obs))
	all = append(all, d.observers...)
	for _, o := range obs {
		if o != nil {
			all = append(all, o)
		}
	}

	call := newCall[T](ctx, info, all)
	snapshot := d.config.snapshot()
	call.start()
	go execute(d, call, ep, snapshot)
	return call
}

// RequestPath dispatches a DynamicEndpoint built from the raw arguments.
func RequestPath[T any](ctx context.Context, d *Dispatcher, path string, method Method, opts ...EndpointOption) *Call[T] {
	return Request[T](ctx, d, NewDynamicEndpoint(path, method, opts...))
}

// Do dispatches ep and waits for the result.
func Do[T any](ctx context.Context, d *Dispatcher, ep Endpoint) (T, error) {
	return Request[T](ctx, d, ep).Wait()
}

// execute drives one call: build, send, retry, decode.
func execute[T any](d *Dispatcher, call *Call[T], ep Endpoint, p providerSnapshot) {
	ctx := call.ctx
	info := call.Info()

	req, err := buildRequest(ep, p)
	if err != nil {
		d.logger.Warn().
			Err(err).
			Str("request_id", info.ID).
			Str("path", info.Path).
			Msg("network request build failed")
		call.fail(err)
		return
	}
	call.setURL(req.URL)

	var resp *RawResponse
	for attempt := 0; ; attempt++ {
		if d.limiter != nil {
			if err := d.limiter.Wait(ctx); err != nil {
				interrupt(call, fmt.Errorf("rate limiter: %w", err))
				return
			}
		}
		if !call.beginAttempt() {
			return
		}
		d.logRequest(info.ID, req, attempt)

		var sendErr error
		resp, sendErr = d.transport.Send(ctx, req)
		if ctx.Err() != nil {
			interrupt(call, ctx.Err())
			return
		}
		if resp != nil {
			call.recordStatusCode(resp.StatusCode)
		}
		if sendErr == nil && resp != nil && IsSuccessStatus(resp.StatusCode) {
			d.logResponse(info.ID, resp, attempt)
			break
		}

		failure := attemptFailure(resp, sendErr, attempt+1)
		if !p.retry.ShouldRetry(attempt) {
			d.logger.Warn().
				Err(failure).
				Str("request_id", info.ID).
				Str("url", req.URL).
				Int("attempts", attempt+1).
				Msg("network request failed, retries exhausted")
			call.fail(failure)
			return
		}

		delay := retryDelay(p.retry, attempt)
		d.logger.Warn().
			Err(failure).
			Str("request_id", info.ID).
			Str("url", req.URL).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("network request failed, retrying")
		if err := d.wait(ctx, delay); err != nil {
			interrupt(call, err)
			return
		}
	}

	if ctx.Err() != nil {
		interrupt(call, ctx.Err())
		return
	}

	var out T
	if err := d.decoder.Decode(resp.Body, &out); err != nil {
		decErr := NewDecodingError(err)
		d.logger.Warn().
			Err(decErr).
			Str("request_id", info.ID).
			Str("url", req.URL).
			Msg("network response decoding failed")
		call.fail(decErr)
		return
	}
	call.emitOutput(out)
	call.succeed(out)
}

// interrupt resolves a call whose attempt loop stopped before a result.
// Cancellation of the call or its parent context cancels; anything else, such
// as the caller's deadline passing, fails with a custom error.
func interrupt[T any](call *Call[T], cause error) {
	if errors.Is(cause, context.Canceled) {
		call.Cancel()
		return
	}
	call.fail(NewCustomError(cause.Error(), cause))
}

// attemptFailure converts an attempt outcome into the error reported if no retry follows.
func attemptFailure(resp *RawResponse, err error, attempts int) ClientError {
	if err != nil {
		if IsTimeout(err) {
			return NewCustomError(fmt.Sprintf("request timeout: %v", err), err)
		}
		return NewCustomError(err.Error(), err)
	}
	if resp == nil {
		return NewCustomError("transport returned no response", nil)
	}
	return NewServerError(resp.StatusCode, resp.Body, attempts)
}

func retryDelay(p RetryProvider, attempt int) time.Duration {
	if b, ok := p.(BackoffProvider); ok {
		return b.DelayFor(attempt)
	}
	return p.RetryDelay()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) logRequest(id string, req *ResolvedRequest, attempt int) {
	event := d.logger.Debug().
		Str("direction", "outbound").
		Str("request_id", id).
		Str("method", req.Method.String()).
		Str("url", req.URL).
		Int("attempt", attempt)

	if len(req.Headers) > 0 {
		event = event.Interface("headers", req.Headers)
	}
	if len(req.Body) > 0 {
		event = event.Bytes("body", req.Body)
	}
	event.Msg("network request")
}

func (d *Dispatcher) logResponse(id string, resp *RawResponse, attempt int) {
	d.logger.Debug().
		Str("direction", "inbound").
		Str("request_id", id).
		Int("status", resp.StatusCode).
		Int("attempt", attempt).
		Int("bytes", len(resp.Body)).
		Msg("network response")
}
