package fixtures

import (
	"fmt"
	"net/http"

	"github.com/gaborage/go-netmanager/config"
	"github.com/gaborage/go-netmanager/network"
	"github.com/gaborage/go-netmanager/testing/mocks"
)

// DefaultBaseURL is the base URL used by the configuration fixtures.
const DefaultBaseURL = "https://api.example.com"

// NewHealthyTransport creates a mock transport answering every request with
// 200 and body. Useful for happy path scenarios.
func NewHealthyTransport(body string) *mocks.MockTransport {
	transport := mocks.NewMockTransport()
	transport.ExpectStatus(http.StatusOK, body)
	return transport
}

// NewFailingTransport creates a mock transport failing every request with err.
func NewFailingTransport(err error) *mocks.MockTransport {
	transport := mocks.NewMockTransport()
	transport.ExpectError(err)
	return transport
}

// NewFlakyTransport creates a mock transport answering status for the first
// failures requests and 200 with body afterwards.
//
// Example:
//
//	transport := fixtures.NewFlakyTransport(2, http.StatusBadGateway, `{"id":1}`)
//	// attempts 1 and 2 see 502, attempt 3 succeeds
func NewFlakyTransport(failures int, status int, body string) *mocks.MockTransport {
	transport := mocks.NewMockTransport()
	if failures > 0 {
		transport.ExpectStatus(status, "").Times(failures)
	}
	transport.ExpectStatus(http.StatusOK, body)
	return transport
}

// NewStaticConfiguration creates a network configuration for DefaultBaseURL
// with retries immediate retries.
func NewStaticConfiguration(retries int) *network.Configuration {
	return network.NewConfiguration(
		network.StaticEnvironment(DefaultBaseURL),
		network.NewHeaderSet(map[string]string{"Accept": "application/json"}),
		network.WithRetryProvider(network.NewRetryProvider(retries, 0)),
	)
}

// NewTestConfig loads a complete application configuration pointing at
// baseURL, with extra YAML appended under the root. It panics on invalid
// input since fixtures are static.
func NewTestConfig(baseURL string, extraYAML string) *config.Config {
	cfg, err := config.LoadBytes([]byte(fmt.Sprintf(`
app:
  name: test-app
  version: v1.0.0
network:
  baseurl: %s
  retry:
    count: 1
    delay: 0s
%s`, baseURL, extraYAML)))
	if err != nil {
		panic(fmt.Errorf("fixtures: invalid test config: %w", err))
	}
	return cfg
}
