package network

import "sync"

// Configuration holds exactly one provider per concern. The environment and
// headers providers can be swapped at runtime; a swap is atomic with respect to
// request building.
type Configuration struct {
	mu          sync.RWMutex
	environment EnvironmentProvider
	headers     HeadersProvider
	timeout     TimeoutProvider
	retry       RetryProvider
}

// ConfigurationOption customizes a Configuration at construction.
type ConfigurationOption func(*Configuration)

// WithTimeoutProvider replaces the default timeout provider.
func WithTimeoutProvider(p TimeoutProvider) ConfigurationOption {
	return func(c *Configuration) {
		if p != nil {
			c.timeout = p
		}
	}
}

// WithRetryProvider replaces the default retry provider.
func WithRetryProvider(p RetryProvider) ConfigurationOption {
	return func(c *Configuration) {
		if p != nil {
			c.retry = p
		}
	}
}

// NewConfiguration creates a Configuration. A nil environment resolves to an
// empty base URL (every build then fails with an invalid URL error) and nil
// headers to an empty HeaderSet. Timeout and retry default to DefaultTimeout
// and NewDefaultRetryProvider.
func NewConfiguration(env EnvironmentProvider, headers HeadersProvider, opts ...ConfigurationOption) *Configuration {
	if env == nil {
		env = StaticEnvironment("")
	}
	if headers == nil {
		headers = NewHeaderSet(nil)
	}
	c := &Configuration{
		environment: env,
		headers:     headers,
		timeout:     FixedTimeout(DefaultTimeout),
		retry:       NewDefaultRetryProvider(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetEnvironment replaces the environment provider. nil is ignored.
func (c *Configuration) SetEnvironment(p EnvironmentProvider) {
	if p == nil {
		return
	}
	c.mu.Lock()
	c.environment = p
	c.mu.Unlock()
}

// SetHeaders replaces the headers provider. nil is ignored.
func (c *Configuration) SetHeaders(p HeadersProvider) {
	if p == nil {
		return
	}
	c.mu.Lock()
	c.headers = p
	c.mu.Unlock()
}

func (c *Configuration) Environment() EnvironmentProvider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.environment
}

func (c *Configuration) Headers() HeadersProvider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers
}

func (c *Configuration) Timeout() TimeoutProvider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeout
}

func (c *Configuration) Retry() RetryProvider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.retry
}

// providerSnapshot is the set of providers one call resolves against.
type providerSnapshot struct {
	environment EnvironmentProvider
	headers     HeadersProvider
	timeout     TimeoutProvider
	retry       RetryProvider
}

func (c *Configuration) snapshot() providerSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return providerSnapshot{
		environment: c.environment,
		headers:     c.headers,
		timeout:     c.timeout,
		retry:       c.retry,
	}
}
