package prosper

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is() checks.
var (
	// ErrInvalidCredentials is returned by New when the username or password is blank.
	ErrInvalidCredentials = errors.New("prosper: username and password must not be blank")

	// ErrInvalidBaseURL is returned by New when the base URL is not absolute.
	ErrInvalidBaseURL = errors.New("prosper: base URL must be absolute")
)

// StatusError is returned when the API answers with anything other than 200 OK.
// The response body is not decoded.
type StatusError struct {
	StatusCode int
	Method     string
	URL        string
}

func (e *StatusError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("prosper: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("prosper: %s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// DecodeError is returned when a 200 response body cannot be decoded into the
// requested type.
type DecodeError struct {
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("prosper: decode response: %v (body: %s)", e.Err, snippet(e.Body))
}

// Unwrap returns the underlying parser error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// snippet trims long bodies so error strings stay readable.
func snippet(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
