package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/gaborage/go-netmanager/network"
)

// MockTransport provides a testify-based mock implementation of network.Transport.
// Every request it receives is also recorded so tests can inspect what was sent.
//
// Example usage:
//
//	transport := mocks.NewMockTransport()
//	transport.On("Send", mock.Anything, mock.Anything).
//		Return(&network.RawResponse{StatusCode: 200, Body: []byte(`{}`)}, nil)
type MockTransport struct {
	mock.Mock

	mu       sync.Mutex
	requests []*network.ResolvedRequest
}

var _ network.Transport = (*MockTransport)(nil)

// NewMockTransport creates a new mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Send implements network.Transport
func (m *MockTransport) Send(ctx context.Context, req *network.ResolvedRequest) (*network.RawResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	args := m.Called(ctx, req)
	var resp *network.RawResponse
	if r := args.Get(0); r != nil {
		resp = r.(*network.RawResponse)
	}
	return resp, args.Error(1)
}

// Requests returns the requests received so far, in order.
func (m *MockTransport) Requests() []*network.ResolvedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*network.ResolvedRequest(nil), m.requests...)
}

// ExpectStatus registers a Send expectation answering with status and body.
func (m *MockTransport) ExpectStatus(status int, body string) *mock.Call {
	return m.On("Send", mock.Anything, mock.Anything).
		Return(&network.RawResponse{StatusCode: status, Body: []byte(body)}, nil)
}

// ExpectError registers a Send expectation failing with err.
func (m *MockTransport) ExpectError(err error) *mock.Call {
	return m.On("Send", mock.Anything, mock.Anything).Return(nil, err)
}
