package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse is wrapped when a 2xx body cannot be decoded
var ErrMalformedResponse = errors.New("malformed response")

// Error is a non-2xx response. Message holds the server's "error" field
// when one was sent.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// TransportError means the request never produced a response
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("api: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UserMessage picks the text shown to the user for err: the server's
// message verbatim when present, fallback otherwise.
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsStatus reports whether err is an API error with the given status code
func IsStatus(err error, code int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
