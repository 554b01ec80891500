package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorBody is the structured error payload the backend returns on failures.
// Any of the fields may be empty; the body may be absent entirely when the
// response is not JSON.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RequestError represents a response the server did send, with a non-success
// status. A 401 is additionally reported on the auth bus before this error is
// returned.
type RequestError struct {
	Status     int
	StatusText string
	Body       *ErrorBody
}

func (e *RequestError) Error() string {
	if e.Body != nil && e.Body.Message != "" {
		return fmt.Sprintf("request failed (status %d): %s", e.Status, e.Body.Message)
	}
	return fmt.Sprintf("request failed (status %d %s)", e.Status, e.StatusText)
}

// Message returns the server-provided message, or fallback when the body
// carries none.
func (e *RequestError) Message(fallback string) string {
	if e.Body != nil && e.Body.Message != "" {
		return e.Body.Message
	}
	if e.Body != nil && e.Body.Error != "" {
		return e.Body.Error
	}
	return fallback
}

// ConnectionError represents a request that never produced a response:
// DNS failure, refused connection, timeout. Distinguished from RequestError
// so callers can show a "check your connection" message.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is a server rejection of the current
// session (HTTP 401).
func IsUnauthorized(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status == http.StatusUnauthorized
	}
	return false
}

// IsConnectionError reports whether err means the request never reached the
// server.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// StatusOf returns the HTTP status of err, or 0 when err carries none.
func StatusOf(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status
	}
	return 0
}
