package network

import (
	"context"
	"sync"
	"time"
)

// Status is the state of a Call.
type Status int

const (
	StatusPending Status = iota
	StatusSucceeded
	StatusFailed
	StatusCanceled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Call is the single-resolution result of a dispatched request.
// It leaves StatusPending exactly once.
type Call[T any] struct {
	ctx      context.Context
	cancel   context.CancelFunc
	// obsCtx keeps the caller's values but never expires, so observers can
	// still record telemetry after cancellation.
	obsCtx   context.Context
	observer Observer
	done     chan struct{}

	// notifyMu orders observer fan-out so no event follows the terminal one.
	notifyMu sync.Mutex

	mu         sync.Mutex
	info       CallInfo
	status     Status
	value      T
	err        error
	attempts   int
	statusCode int
}

func newCall[T any](ctx context.Context, info CallInfo, observer Observer) *Call[T] {
	callCtx, cancel := context.WithCancel(ctx)
	return &Call[T]{
		ctx:      callCtx,
		cancel:   cancel,
		obsCtx:   context.WithoutCancel(ctx),
		observer: observer,
		done:     make(chan struct{}),
		info:     info,
	}
}

// Done is closed once the call reaches a terminal state and observers have been notified.
func (c *Call[T]) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the call resolves.
func (c *Call[T]) Wait() (T, error) {
	<-c.done
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.err
}

// Result waits like Wait but gives up when ctx is done. Giving up does not cancel the call.
func (c *Call[T]) Result(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		return c.Wait()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Cancel aborts the call if it has not resolved yet. The in-flight attempt is
// interrupted, no further retry or decode happens, and the call resolves with
// StatusCanceled and ErrCanceled. Cancel after resolution is a no-op.
func (c *Call[T]) Cancel() {
	var zero T
	c.resolve(StatusCanceled, zero, ErrCanceled)
}

// Status returns the current state.
func (c *Call[T]) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Attempts returns how many times the request has been handed to the transport.
func (c *Call[T]) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// Info returns the call identification, including the URL once built.
func (c *Call[T]) Info() CallInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info
}

func (c *Call[T]) setURL(url string) {
	c.mu.Lock()
	c.info.URL = url
	c.mu.Unlock()
}

// beginAttempt records an attempt unless the call already resolved.
func (c *Call[T]) beginAttempt() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusPending {
		return false
	}
	c.attempts++
	return true
}

func (c *Call[T]) recordStatusCode(code int) {
	c.mu.Lock()
	c.statusCode = code
	c.mu.Unlock()
}

func (c *Call[T]) start() {
	c.observer.OnStart(c.obsCtx, c.Info())
}

// emitOutput notifies observers of a decoded value. A Cancel arriving while
// OnOutput runs waits for it, so OnCancel is always the last event.
func (c *Call[T]) emitOutput(value T) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	pending := c.status == StatusPending
	info := c.info
	c.mu.Unlock()
	if pending {
		c.observer.OnOutput(c.obsCtx, info, value)
	}
}

func (c *Call[T]) succeed(value T) bool {
	return c.resolve(StatusSucceeded, value, nil)
}

func (c *Call[T]) fail(err error) bool {
	var zero T
	return c.resolve(StatusFailed, zero, err)
}

func (c *Call[T]) resolve(status Status, value T, err error) bool {
	// interrupt the transport before queueing behind an in-progress OnOutput
	if status == StatusCanceled {
		c.cancel()
	}

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.status != StatusPending {
		c.mu.Unlock()
		return false
	}
	c.status = status
	c.value = value
	c.err = err
	info := c.info
	completion := Completion{
		Status:     status,
		Err:        err,
		Attempts:   c.attempts,
		Elapsed:    time.Since(info.StartedAt),
		StatusCode: c.statusCode,
	}
	c.mu.Unlock()

	// releases the transport when canceling and the context resources otherwise
	c.cancel()

	if status == StatusCanceled {
		c.observer.OnCancel(c.obsCtx, info)
	} else {
		c.observer.OnComplete(c.obsCtx, info, completion)
	}
	close(c.done)
	return true
}
