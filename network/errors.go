package network

import (
	"context"
	"errors"
	"fmt"
)

// ErrCanceled is returned by a Call that was canceled before reaching a terminal state.
var ErrCanceled = fmt.Errorf("request canceled: %w", context.Canceled)

// ClientError is implemented by every terminal failure a Call can report.
type ClientError interface {
	error
	Type() ErrorType
}

// ErrorType defines the category of a client error
type ErrorType string

const (
	// InvalidURLError means base URL and path did not form a valid URL
	InvalidURLError ErrorType = "invalid_url"
	// ServerError means the server kept answering with a non-2xx status
	ServerError ErrorType = "server"
	// DecodingError means a 2xx body could not be decoded into the target type
	DecodingError ErrorType = "decoding"
	// CustomError covers transport failures such as connectivity problems and timeouts
	CustomError ErrorType = "custom"
	// ValidationError means the endpoint itself was unusable (nil, unsupported method)
	ValidationError ErrorType = "validation"
)

type invalidURLError struct {
	url     string
	wrapped error
}

func (e *invalidURLError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("invalid url %q: %v", e.url, e.wrapped)
	}
	return fmt.Sprintf("invalid url %q", e.url)
}

func (e *invalidURLError) Type() ErrorType {
	return InvalidURLError
}

func (e *invalidURLError) Unwrap() error {
	return e.wrapped
}

// URL returns the string that failed to parse.
func (e *invalidURLError) URL() string {
	return e.url
}

type serverError struct {
	statusCode int
	body       []byte
	attempts   int
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error: status %d after %d attempt(s)", e.statusCode, e.attempts)
}

func (e *serverError) Type() ErrorType {
	return ServerError
}

func (e *serverError) StatusCode() int {
	return e.statusCode
}

func (e *serverError) Body() []byte {
	return e.body
}

type decodingError struct {
	wrapped error
}

func (e *decodingError) Error() string {
	return fmt.Sprintf("decoding error: %v", e.wrapped)
}

func (e *decodingError) Type() ErrorType {
	return DecodingError
}

func (e *decodingError) Unwrap() error {
	return e.wrapped
}

type customError struct {
	message string
	wrapped error
}

func (e *customError) Error() string {
	return e.message
}

func (e *customError) Type() ErrorType {
	return CustomError
}

func (e *customError) Unwrap() error {
	return e.wrapped
}

type validationError struct {
	message string
	field   string
}

func (e *validationError) Error() string {
	if e.field != "" {
		return fmt.Sprintf("validation error: %s (field: %s)", e.message, e.field)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

func (e *validationError) Type() ErrorType {
	return ValidationError
}

// NewInvalidURLError creates an invalid URL error
func NewInvalidURLError(url string, wrapped error) ClientError {
	return &invalidURLError{url: url, wrapped: wrapped}
}

// NewServerError creates a server error for a non-2xx status
func NewServerError(statusCode int, body []byte, attempts int) ClientError {
	return &serverError{statusCode: statusCode, body: body, attempts: attempts}
}

// NewDecodingError creates a decoding error
func NewDecodingError(wrapped error) ClientError {
	return &decodingError{wrapped: wrapped}
}

// NewCustomError creates a transport failure error carrying message
func NewCustomError(message string, wrapped error) ClientError {
	return &customError{message: message, wrapped: wrapped}
}

// NewValidationError creates a validation error
func NewValidationError(message, field string) ClientError {
	return &validationError{message: message, field: field}
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	var clientErr ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type() == errorType
	}
	return false
}

// IsServerStatusError checks if an error is a server error with a specific status code
func IsServerStatusError(err error, statusCode int) bool {
	var srvErr *serverError
	if errors.As(err, &srvErr) {
		return srvErr.StatusCode() == statusCode
	}
	return false
}

// StatusCodeOf returns the HTTP status carried by a server error, or 0.
func StatusCodeOf(err error) int {
	var srvErr *serverError
	if errors.As(err, &srvErr) {
		return srvErr.StatusCode()
	}
	return 0
}

// IsSuccessStatus checks if a status code represents success (2xx)
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
