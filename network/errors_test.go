package network

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientErrorTypes(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name    string
		err     ClientError
		errType ErrorType
		message string
	}{
		{"invalid url", NewInvalidURLError("::bad", cause), InvalidURLError, `invalid url "::bad": boom`},
		{"invalid url without cause", NewInvalidURLError("x", nil), InvalidURLError, `invalid url "x"`},
		{"server", NewServerError(503, []byte("down"), 4), ServerError, "server error: status 503 after 4 attempt(s)"},
		{"decoding", NewDecodingError(cause), DecodingError, "decoding error: boom"},
		{"custom", NewCustomError("connection refused", cause), CustomError, "connection refused"},
		{"validation", NewValidationError("bad method", "method"), ValidationError, "validation error: bad method (field: method)"},
		{"validation without field", NewValidationError("bad", ""), ValidationError, "validation error: bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errType, tt.err.Type())
			assert.Equal(t, tt.message, tt.err.Error())
			assert.True(t, IsErrorType(tt.err, tt.errType))
			assert.True(t, IsErrorType(fmt.Errorf("wrapped: %w", tt.err), tt.errType))
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := &url.Error{Op: "parse", URL: "x", Err: errors.New("bad")}
	err := NewInvalidURLError("x", cause)
	var urlErr *url.Error
	assert.ErrorAs(t, err, &urlErr)

	assert.ErrorIs(t, NewCustomError("deadline", context.DeadlineExceeded), context.DeadlineExceeded)
	assert.ErrorIs(t, NewDecodingError(cause), cause)
}

func TestServerErrorHelpers(t *testing.T) {
	err := fmt.Errorf("call failed: %w", NewServerError(404, nil, 1))
	assert.True(t, IsServerStatusError(err, 404))
	assert.False(t, IsServerStatusError(err, 500))
	assert.Equal(t, 404, StatusCodeOf(err))

	assert.Equal(t, 0, StatusCodeOf(NewCustomError("x", nil)))
	assert.Equal(t, 0, StatusCodeOf(nil))
	assert.False(t, IsErrorType(nil, ServerError))
	assert.False(t, IsErrorType(errors.New("plain"), CustomError))
}

func TestIsSuccessStatus(t *testing.T) {
	assert.True(t, IsSuccessStatus(200))
	assert.True(t, IsSuccessStatus(204))
	assert.True(t, IsSuccessStatus(299))
	assert.False(t, IsSuccessStatus(199))
	assert.False(t, IsSuccessStatus(300))
	assert.False(t, IsSuccessStatus(500))
}

func TestErrCanceled(t *testing.T) {
	assert.ErrorIs(t, ErrCanceled, context.Canceled)
	assert.False(t, IsErrorType(ErrCanceled, CustomError))
}
