package parking

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid parking configuration")
	// ErrConnection indicates a transport failure, timeout or unexpected status
	ErrConnection = errors.New("parking connection failed")
	// ErrAuth indicates invalid credentials or an unrecoverable session
	ErrAuth = errors.New("parking authentication failed")
	// ErrRateLimited indicates the API answered 429 Too Many Requests
	ErrRateLimited = errors.New("parking rate limit exceeded")
	// ErrParse indicates a response body that does not have the expected shape
	ErrParse = errors.New("parking response could not be parsed")
)

// Error types returned by the client. Callers never see transport-specific
// error types; the original cause is reachable through errors.Unwrap.
type (
	// ConnectionError is a network, timeout or HTTP status failure
	ConnectionError struct {
		Op         string
		StatusCode int // 0 when no response was received
		Err        error
	}

	// AuthError is a login or session failure
	AuthError struct {
		Reason string
		Err    error
	}

	// RateLimitError carries the server's Retry-After hint in seconds.
	// RetryAfter is nil when the header was absent or unparsable.
	RateLimitError struct {
		RetryAfter *int
	}

	// ParseError is a response shape or type violation on a named field
	ParseError struct {
		Field  string
		Reason string
		Err    error
	}
)

func (e *ConnectionError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return "authentication failed"
	}
	return "authentication failed: " + e.Reason
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool { return target == ErrAuth }

func (e *RateLimitError) Error() string {
	if e.RetryAfter != nil {
		return fmt.Sprintf("rate limit exceeded, retry after %ds", *e.RetryAfter)
	}
	return "rate limit exceeded"
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

func (e *ParseError) Error() string {
	if e.Field == "" {
		return "parse error: " + e.Reason
	}
	return fmt.Sprintf("parse error in %s: %s", e.Field, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

func parseErrorf(field, format string, args ...any) *ParseError {
	return &ParseError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
