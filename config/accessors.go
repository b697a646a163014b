package config

import (
	"time"

	"github.com/gaborage/go-netmanager/network"
)

// GetString returns the raw string at key, or defaultVal when the key is absent.
// It reaches keys that Config does not declare.
func (c *Config) GetString(key string, defaultVal ...string) string {
	if c.k == nil || !c.k.Exists(key) {
		return optionalDefault("", defaultVal...)
	}
	return c.k.String(key)
}

// GetDuration returns the duration at key, or defaultVal when the key is absent.
func (c *Config) GetDuration(key string, defaultVal ...time.Duration) time.Duration {
	if c.k == nil || !c.k.Exists(key) {
		return optionalDefault(time.Duration(0), defaultVal...)
	}
	return c.k.Duration(key)
}

// Exists reports whether key was set by any source.
func (c *Config) Exists(key string) bool {
	return c.k != nil && c.k.Exists(key)
}

// Unmarshal decodes the subtree at key into out.
func (c *Config) Unmarshal(key string, out any) error {
	if c.k == nil {
		return ErrNotConfigured
	}
	return c.k.Unmarshal(key, out)
}

func optionalDefault[T any](zero T, overrides ...T) T {
	if len(overrides) > 0 {
		return overrides[0]
	}
	return zero
}

// Environment builds the environment provider for the configured stage.
func (n NetworkConfig) Environment() network.EnvironmentProvider {
	if len(n.Environments) == 0 {
		return network.StaticEnvironment(n.BaseURL)
	}
	urls := make(map[network.Stage]string, len(n.Environments))
	for stage, url := range n.Environments {
		urls[network.Stage(stage)] = url
	}
	return network.StageEnvironment{Stage: network.Stage(n.Stage), URLs: urls}
}

// RetryProvider builds the retry policy described by the retry section.
func (n NetworkConfig) RetryProvider() network.RetryProvider {
	if n.Retry.Backoff {
		return network.NewBackoffRetryProvider(n.Retry.Count, n.Retry.Delay, n.Retry.MaxDelay)
	}
	return network.NewRetryProvider(n.Retry.Count, n.Retry.Delay)
}

// RateLimit returns the throttling settings, or a not-configured error when
// throttling is off.
func (n NetworkConfig) RateLimit() (rps float64, burst int, err error) {
	if n.Rate.Limit <= 0 {
		return 0, 0, NewNotConfiguredError("network.rate.limit")
	}
	return n.Rate.Limit, max(n.Rate.Burst, 1), nil
}

// Configuration assembles a network.Configuration from the section.
func (n NetworkConfig) Configuration() *network.Configuration {
	return network.NewConfiguration(
		n.Environment(),
		network.NewHeaderSet(n.Headers),
		network.WithTimeoutProvider(network.FixedTimeout(n.Timeout)),
		network.WithRetryProvider(n.RetryProvider()),
	)
}
