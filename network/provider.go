package network

import (
	crand "crypto/rand"
	"maps"
	"math/big"
	"sync"
	"time"
)

const (
	// DefaultTimeout is the per-attempt transport timeout
	DefaultTimeout = 10 * time.Second

	// DefaultRetryCount is the number of retries performed after the first attempt
	DefaultRetryCount = 3

	// DefaultRetryDelay is the wait between attempts
	DefaultRetryDelay = 2 * time.Second

	// DefaultMaxBackoff caps BackoffRetryProvider delays
	DefaultMaxBackoff = 30 * time.Second
)

// EnvironmentProvider supplies the base URL that endpoint paths are appended to.
type EnvironmentProvider interface {
	BaseURL() string
}

// HeadersProvider supplies default headers. Mutations must be visible to any
// request built after the mutating call returns.
type HeadersProvider interface {
	DefaultHeaders() map[string]string
	UpdateHeader(key, value string)
	RemoveHeader(key string)
}

// TimeoutProvider supplies the per-attempt timeout handed to the transport.
type TimeoutProvider interface {
	Timeout() time.Duration
}

// RetryProvider decides whether a failed attempt is retried.
// ShouldRetry must depend only on attempt, the number of retries already performed.
type RetryProvider interface {
	RetryCount() int
	RetryDelay() time.Duration
	ShouldRetry(attempt int) bool
}

// BackoffProvider is implemented by retry providers whose delay grows with the attempt.
// The dispatcher prefers DelayFor over RetryDelay when it is available.
type BackoffProvider interface {
	DelayFor(attempt int) time.Duration
}

// StaticEnvironment is a fixed base URL.
type StaticEnvironment string

// BaseURL returns the environment itself.
func (e StaticEnvironment) BaseURL() string {
	return string(e)
}

// Stage names a deployment environment.
type Stage string

const (
	StageDevelopment Stage = "development"
	StageStaging     Stage = "staging"
	StageProduction  Stage = "production"
)

// StageEnvironment selects a base URL by deployment stage.
type StageEnvironment struct {
	Stage Stage
	URLs  map[Stage]string
}

// BaseURL returns the URL registered for the current stage, or "" when none is.
func (e StageEnvironment) BaseURL() string {
	return e.URLs[e.Stage]
}

// WithStage returns a copy of e pointing at another stage.
func (e StageEnvironment) WithStage(stage Stage) StageEnvironment {
	return StageEnvironment{Stage: stage, URLs: maps.Clone(e.URLs)}
}

// HeaderSet is a concurrency-safe HeadersProvider. The zero value is an empty set.
type HeaderSet struct {
	mu      sync.RWMutex
	headers map[string]string
}

var _ HeadersProvider = (*HeaderSet)(nil)

// NewHeaderSet creates a HeaderSet seeded with a copy of initial.
func NewHeaderSet(initial map[string]string) *HeaderSet {
	h := make(map[string]string, len(initial))
	maps.Copy(h, initial)
	return &HeaderSet{headers: h}
}

// DefaultHeaders returns a snapshot copy of the headers.
func (s *HeaderSet) DefaultHeaders() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.headers)
}

// UpdateHeader adds or replaces a header.
func (s *HeaderSet) UpdateHeader(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.headers == nil {
		s.headers = make(map[string]string)
	}
	s.headers[key] = value
}

// RemoveHeader deletes a header. Removing an absent key is a no-op.
func (s *HeaderSet) RemoveHeader(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.headers, key)
}

// FixedTimeout is a constant TimeoutProvider.
type FixedTimeout time.Duration

// Timeout returns the duration, or DefaultTimeout when it is not positive.
func (t FixedTimeout) Timeout() time.Duration {
	if t <= 0 {
		return DefaultTimeout
	}
	return time.Duration(t)
}

// DefaultRetryProvider retries while attempt < count, waiting a fixed delay.
type DefaultRetryProvider struct {
	count int
	delay time.Duration
}

var _ RetryProvider = DefaultRetryProvider{}

// NewRetryProvider creates a DefaultRetryProvider. Negative values are clamped to zero.
func NewRetryProvider(count int, delay time.Duration) DefaultRetryProvider {
	return DefaultRetryProvider{count: max(count, 0), delay: max(delay, 0)}
}

// NewDefaultRetryProvider returns the provider with DefaultRetryCount and DefaultRetryDelay.
func NewDefaultRetryProvider() DefaultRetryProvider {
	return NewRetryProvider(DefaultRetryCount, DefaultRetryDelay)
}

func (p DefaultRetryProvider) RetryCount() int {
	return p.count
}

func (p DefaultRetryProvider) RetryDelay() time.Duration {
	return p.delay
}

func (p DefaultRetryProvider) ShouldRetry(attempt int) bool {
	return attempt < p.count
}

// BackoffRetryProvider retries like DefaultRetryProvider but waits
// RetryDelay * 2^attempt with full jitter, capped at MaxDelay.
type BackoffRetryProvider struct {
	DefaultRetryProvider
	maxDelay time.Duration
}

var (
	_ RetryProvider   = BackoffRetryProvider{}
	_ BackoffProvider = BackoffRetryProvider{}
)

// NewBackoffRetryProvider creates a BackoffRetryProvider. A non-positive maxDelay uses DefaultMaxBackoff.
func NewBackoffRetryProvider(count int, base, maxDelay time.Duration) BackoffRetryProvider {
	if maxDelay <= 0 {
		maxDelay = DefaultMaxBackoff
	}
	return BackoffRetryProvider{
		DefaultRetryProvider: NewRetryProvider(count, base),
		maxDelay:             maxDelay,
	}
}

// MaxDelay returns the backoff cap.
func (p BackoffRetryProvider) MaxDelay() time.Duration {
	return p.maxDelay
}

// DelayFor returns a random duration in [0, min(base*2^attempt, max)).
func (p BackoffRetryProvider) DelayFor(attempt int) time.Duration {
	base := p.delay
	if base <= 0 {
		return 0
	}
	// 2^20 already exceeds any sane cap
	attempt = min(max(attempt, 0), 20)
	d := min(base*time.Duration(1<<attempt), p.maxDelay)
	if d <= 0 {
		return base
	}
	n, err := crand.Int(crand.Reader, big.NewInt(int64(d)))
	if err != nil {
		return d
	}
	return time.Duration(n.Int64())
}
