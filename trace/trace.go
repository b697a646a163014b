// Package trace carries correlation identifiers for outgoing calls.
// A request ID placed on the context by the caller is reused; otherwise a new
// one is generated per call so every attempt of a retried call shares it.
package trace

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDKey   contextKey = "request_id"
	traceParentKey contextKey = "traceparent"

	// HeaderXRequestID is the default header used to propagate the request ID
	HeaderXRequestID = "X-Request-ID"
	// HeaderTraceParent is the W3C trace context header name
	HeaderTraceParent = "traceparent"
)

// NewRequestID returns a random UUID string.
func NewRequestID() string {
	return uuid.NewString()
}

// WithRequestID stores a request ID on the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID if present and non-empty.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		return id, true
	}
	return "", false
}

// EnsureRequestID returns a context that is guaranteed to carry a request ID, and the ID.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id, ok := RequestIDFromContext(ctx); ok {
		return ctx, id
	}
	id := NewRequestID()
	return WithRequestID(ctx, id), id
}

// WithTraceParent stores a W3C traceparent value on the context.
func WithTraceParent(ctx context.Context, traceParent string) context.Context {
	return context.WithValue(ctx, traceParentKey, traceParent)
}

// TraceParentFromContext returns the traceparent if present.
func TraceParentFromContext(ctx context.Context) (string, bool) {
	if tp, ok := ctx.Value(traceParentKey).(string); ok && tp != "" {
		return tp, true
	}
	return "", false
}

// GenerateTraceParent creates a W3C traceparent value:
// version(2)-trace-id(32)-span-id(16)-flags(2).
// It is meant for deployments without OpenTelemetry; when the HTTP transport
// is instrumented, the OTel propagator writes the traceparent of the client span.
func GenerateTraceParent() string {
	traceID := make([]byte, 16)
	spanID := make([]byte, 8)
	_, _ = crand.Read(traceID)
	_, _ = crand.Read(spanID)
	// all-zero IDs are invalid in a traceparent
	if allZero(traceID) {
		traceID[15] = 0x01
	}
	if allZero(spanID) {
		spanID[7] = 0x01
	}
	return "00-" + hex.EncodeToString(traceID) + "-" + hex.EncodeToString(spanID) + "-01"
}

// Inject sets the request ID header (named by header, or X-Request-ID when empty)
// and the traceparent header on h unless they are already present.
// An instrumented round tripper replaces the traceparent set here.
func Inject(ctx context.Context, h http.Header, header string) {
	if header == "" {
		header = HeaderXRequestID
	}
	if h.Get(header) == "" {
		if id, ok := RequestIDFromContext(ctx); ok {
			h.Set(header, id)
		}
	}
	if h.Get(HeaderTraceParent) == "" {
		if tp, ok := TraceParentFromContext(ctx); ok {
			h.Set(HeaderTraceParent, tp)
		}
	}
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
