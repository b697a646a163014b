package network

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	nethttp "net/http"

	"github.com/gaborage/go-netmanager/trace"
)

// RawResponse is what a Transport returns for any HTTP answer, 2xx or not.
type RawResponse struct {
	StatusCode int
	Body       []byte
	Headers    nethttp.Header
}

// Transport performs the network I/O for one attempt. It must honor ctx
// cancellation and should apply req.Timeout to the attempt. A non-2xx answer
// is a RawResponse, not an error.
type Transport interface {
	Send(ctx context.Context, req *ResolvedRequest) (*RawResponse, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *ResolvedRequest) (*RawResponse, error)

// Send calls f.
func (f TransportFunc) Send(ctx context.Context, req *ResolvedRequest) (*RawResponse, error) {
	return f(ctx, req)
}

// RequestInterceptor can decorate the outgoing *http.Request right before it is sent.
type RequestInterceptor func(ctx context.Context, req *nethttp.Request)

// HTTPTransport sends resolved requests with net/http.
type HTTPTransport struct {
	client       *nethttp.Client
	roundTripper nethttp.RoundTripper
	interceptors []RequestInterceptor
}

var _ Transport = (*HTTPTransport)(nil)

// HTTPTransportOption customizes an HTTPTransport.
type HTTPTransportOption func(*HTTPTransport)

// WithHTTPClient uses c instead of a fresh http.Client.
// Its Timeout is left untouched; per-attempt timeouts come from the request.
func WithHTTPClient(c *nethttp.Client) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithRoundTripper sets the RoundTripper used for sending. It applies to a
// copy of the client, so a client passed to WithHTTPClient is never modified.
func WithRoundTripper(rt nethttp.RoundTripper) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if rt != nil {
			t.roundTripper = rt
		}
	}
}

// WithRequestInterceptor appends an interceptor.
func WithRequestInterceptor(i RequestInterceptor) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if i != nil {
			t.interceptors = append(t.interceptors, i)
		}
	}
}

// NewHTTPTransport creates an HTTPTransport.
func NewHTTPTransport(opts ...HTTPTransportOption) *HTTPTransport {
	t := &HTTPTransport{client: &nethttp.Client{}}
	for _, opt := range opts {
		opt(t)
	}
	if t.roundTripper != nil {
		client := *t.client
		client.Transport = t.roundTripper
		t.client = &client
	}
	return t
}

// NewTraceInterceptor propagates the request ID and traceparent from the context.
// header names the request ID header; empty means X-Request-ID.
func NewTraceInterceptor(header string) RequestInterceptor {
	return func(ctx context.Context, req *nethttp.Request) {
		trace.Inject(ctx, req.Header, header)
	}
}

// Send performs one attempt.
func (t *HTTPTransport) Send(ctx context.Context, req *ResolvedRequest) (*RawResponse, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, string(req.Method), req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	for _, intercept := range t.interceptors {
		intercept(ctx, httpReq)
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &RawResponse{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
	}, nil
}

// IsTimeout reports whether err came from a deadline or a network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
