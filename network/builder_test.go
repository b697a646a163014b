package network

import (
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBaseURL     = "https://api.example.com"
	testUsersPath   = "/users"
	testContentType = "Content-Type"
	testJSONType    = "application/json"
)

// userEndpoint is a caller-defined Endpoint, as opposed to DynamicEndpoint.
type userEndpoint struct {
	id int
}

func (e userEndpoint) Path() string { return testUsersPath }
func (e userEndpoint) Method() Method { return MethodGet }
func (e userEndpoint) Parameters() map[string]any { return map[string]any{"id": e.id} }
func (e userEndpoint) Headers() map[string]string { return nil }
func (e userEndpoint) Body() []byte { return nil }

func newTestConfiguration(headers map[string]string) *Configuration {
	return NewConfiguration(StaticEnvironment(testBaseURL), NewHeaderSet(headers))
}

func TestBuildRequestExampleURL(t *testing.T) {
	req, err := BuildRequest(userEndpoint{id: 7}, newTestConfiguration(nil))
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/users?id=7", req.URL)
	assert.Equal(t, MethodGet, req.Method)
	assert.Nil(t, req.Body)
}

func TestBuildRequestGETParameters(t *testing.T) {
	cfg := newTestConfiguration(nil)

	t.Run("sorted by key", func(t *testing.T) {
		ep := NewDynamicEndpoint("/search", MethodGet, WithParameters(map[string]any{
			"q":     "go lang",
			"page":  2,
			"exact": true,
		}))
		req, err := BuildRequest(ep, cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/search?exact=true&page=2&q=go+lang", req.URL)
	})

	t.Run("every key exactly once", func(t *testing.T) {
		params := map[string]any{"a": 1, "b": "two", "c": 3.5, "d": false, "e": uint8(9)}
		req, err := BuildRequest(NewDynamicEndpoint("/items", MethodGet, WithParameters(params)), cfg)
		require.NoError(t, err)

		u, err := url.Parse(req.URL)
		require.NoError(t, err)
		query := u.Query()
		assert.Len(t, query, len(params))
		for key := range params {
			assert.Len(t, query[key], 1, key)
		}
		assert.Equal(t, "3.5", query.Get("c"))
		assert.Equal(t, "false", query.Get("d"))
		assert.Equal(t, "9", query.Get("e"))
	})

	t.Run("merged with query already in path", func(t *testing.T) {
		ep := NewDynamicEndpoint("/items?limit=10", MethodGet, WithParameter("offset", 20))
		req, err := BuildRequest(ep, cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/items?limit=10&offset=20", req.URL)
	})

	t.Run("empty parameters leave url untouched", func(t *testing.T) {
		ep := NewDynamicEndpoint(testUsersPath, MethodGet, WithParameters(map[string]any{}))
		req, err := BuildRequest(ep, cfg)
		require.NoError(t, err)
		assert.Equal(t, testBaseURL+testUsersPath, req.URL)
	})

	t.Run("delete ignores parameters", func(t *testing.T) {
		ep := NewDynamicEndpoint("/users/1", MethodDelete, WithParameter("force", true), WithBody([]byte("x")))
		req, err := BuildRequest(ep, cfg)
		require.NoError(t, err)
		assert.Equal(t, testBaseURL+"/users/1", req.URL)
		assert.Nil(t, req.Body)
	})
}

func TestBuildRequestBodyMethods(t *testing.T) {
	cfg := newTestConfiguration(nil)
	body := []byte(`{"name":"ada","tags":["a","b"]}`)

	for _, method := range []Method{MethodPost, MethodPut} {
		t.Run(string(method), func(t *testing.T) {
			ep := NewDynamicEndpoint(testUsersPath, method,
				WithBody(body),
				WithParameter("ignored", "yes"),
			)
			req, err := BuildRequest(ep, cfg)
			require.NoError(t, err)
			assert.Equal(t, body, req.Body)
			assert.Equal(t, testBaseURL+testUsersPath, req.URL, "parameters must not reach the url")
		})
	}

	t.Run("post without body", func(t *testing.T) {
		req, err := BuildRequest(NewDynamicEndpoint(testUsersPath, MethodPost), cfg)
		require.NoError(t, err)
		assert.Nil(t, req.Body)
	})
}

func TestBuildRequestHeaderMerge(t *testing.T) {
	cfg := newTestConfiguration(map[string]string{
		testContentType: "text/plain",
		"Accept":        testJSONType,
	})
	ep := NewDynamicEndpoint(testUsersPath, MethodGet, WithHeaders(map[string]string{
		testContentType: testJSONType,
		"X-Trace":       "abc",
	}))

	first, err := BuildRequest(ep, cfg)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		testContentType: testJSONType,
		"Accept":        testJSONType,
		"X-Trace":       "abc",
	}, first.Headers)

	second, err := BuildRequest(ep, cfg)
	require.NoError(t, err)
	assert.Equal(t, first.Headers, second.Headers, "merge must be idempotent")

	first.Headers["Accept"] = "mutated"
	assert.Equal(t, testJSONType, cfg.Headers().DefaultHeaders()["Accept"], "resolved headers must not alias defaults")
}

func TestBuildRequestTimeout(t *testing.T) {
	cfg := NewConfiguration(StaticEnvironment(testBaseURL), nil, WithTimeoutProvider(FixedTimeout(3*time.Second)))
	req, err := BuildRequest(NewDynamicEndpoint("/", MethodGet), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, req.Timeout)

	req, err = BuildRequest(NewDynamicEndpoint("/", MethodGet), newTestConfiguration(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, req.Timeout)
}

func TestBuildRequestFailures(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		endpoint Endpoint
		errType  ErrorType
	}{
		{"empty base url", "", NewDynamicEndpoint(testUsersPath, MethodGet), InvalidURLError},
		{"missing scheme", "://api.example.com", NewDynamicEndpoint(testUsersPath, MethodGet), InvalidURLError},
		{"no host", "https://", NewDynamicEndpoint("", MethodGet), InvalidURLError},
		{"relative only", "api.example.com", NewDynamicEndpoint(testUsersPath, MethodGet), InvalidURLError},
		{"bad escape", testBaseURL, NewDynamicEndpoint("/%zz", MethodGet), InvalidURLError},
		{"unsupported method", testBaseURL, NewDynamicEndpoint(testUsersPath, Method("PATCH")), ValidationError},
		{"nil endpoint", testBaseURL, nil, ValidationError},
		{"typed nil endpoint", testBaseURL, (*DynamicEndpoint)(nil), ValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfiguration(StaticEnvironment(tt.baseURL), nil)
			req, err := BuildRequest(tt.endpoint, cfg)
			require.Error(t, err)
			assert.Nil(t, req)
			assert.True(t, IsErrorType(err, tt.errType), "got %v", err)
		})
	}

	t.Run("nil configuration", func(t *testing.T) {
		_, err := BuildRequest(NewDynamicEndpoint("/", MethodGet), nil)
		assert.True(t, IsErrorType(err, ValidationError))
	})
}

type colour int

func (c colour) String() string { return [...]string{"red", "green"}[c] }

type counter struct{ n int }

func (c *counter) String() string { return "count-" + strconv.Itoa(c.n) }

func TestStringifyParameter(t *testing.T) {
	stamp := time.Date(2024, 11, 14, 9, 30, 0, 0, time.UTC)
	page := 3
	name := "ada"
	pagePtr := &page
	var nilInt *int

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "plain", "plain"},
		{"bytes", []byte("raw"), "raw"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"int", -42, "-42"},
		{"int64", int64(1) << 40, "1099511627776"},
		{"uint", uint(7), "7"},
		{"float64 integral", 2.0, "2"},
		{"float64 fraction", 0.125, "0.125"},
		{"float32", float32(1.5), "1.5"},
		{"duration", 1500 * time.Millisecond, "1.5s"},
		{"time", stamp, "2024-11-14T09:30:00Z"},
		{"stringer", colour(1), "green"},
		{"fallback", []int{1, 2}, "[1 2]"},
		{"int pointer", &page, "3"},
		{"string pointer", &name, "ada"},
		{"pointer to pointer", &pagePtr, "3"},
		{"time pointer", &stamp, "2024-11-14T09:30:00Z"},
		{"nil pointer", nilInt, ""},
		{"pointer stringer", &counter{n: 2}, "count-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stringifyParameter(tt.in))
		})
	}
}
