package session

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrClosed is returned by requests made after Close.
var ErrClosed = errors.New("session closed")

// StatusError reports a non-2xx response that survived the retry policy.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsTransient reports whether the status is one the retry policy retries.
func (e *StatusError) IsTransient() bool {
	return retryableStatus(e.StatusCode)
}
