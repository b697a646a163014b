package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDynamicEndpoint(t *testing.T) {
	ep := NewDynamicEndpoint("/orders", MethodPost,
		WithParameters(map[string]any{"a": 1}),
		WithParameter("b", "two"),
		WithHeaders(map[string]string{"X-A": "1"}),
		WithHeader("X-B", "2"),
		WithBody([]byte("payload")),
	)

	assert.Equal(t, "/orders", ep.Path())
	assert.Equal(t, MethodPost, ep.Method())
	assert.Equal(t, map[string]any{"a": 1, "b": "two"}, ep.Parameters())
	assert.Equal(t, map[string]string{"X-A": "1", "X-B": "2"}, ep.Headers())
	assert.Equal(t, []byte("payload"), ep.Body())
}

func TestDynamicEndpointEmpty(t *testing.T) {
	ep := NewDynamicEndpoint("/", MethodGet, WithParameters(nil), WithHeaders(nil), WithBody(nil))
	assert.Nil(t, ep.Parameters())
	assert.Nil(t, ep.Headers())
	assert.Nil(t, ep.Body())
}

func TestDynamicEndpointIsImmutable(t *testing.T) {
	params := map[string]any{"id": 1}
	headers := map[string]string{"X-A": "1"}
	body := []byte("abc")
	ep := NewDynamicEndpoint("/", MethodPut, WithParameters(params), WithHeaders(headers), WithBody(body))

	params["id"] = 2
	headers["X-A"] = "2"
	body[0] = 'z'
	assert.Equal(t, 1, ep.Parameters()["id"])
	assert.Equal(t, "1", ep.Headers()["X-A"])
	assert.Equal(t, []byte("abc"), ep.Body())

	ep.Parameters()["id"] = 3
	ep.Headers()["X-A"] = "3"
	ep.Body()[0] = 'y'
	assert.Equal(t, 1, ep.Parameters()["id"])
	assert.Equal(t, "1", ep.Headers()["X-A"])
	assert.Equal(t, []byte("abc"), ep.Body())
}

func TestMethod(t *testing.T) {
	tests := []struct {
		method      Method
		valid       bool
		carriesBody bool
	}{
		{MethodGet, true, false},
		{MethodPost, true, true},
		{MethodPut, true, true},
		{MethodDelete, true, false},
		{Method("PATCH"), false, false},
		{Method("get"), false, false},
		{Method(""), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.method.Valid())
			assert.Equal(t, tt.carriesBody, tt.method.CarriesBody())
		})
	}
}
