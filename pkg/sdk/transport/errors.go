package transport

import (
	"errors"
	"fmt"
)

// ErrNoBulkEndpoint is returned when every candidate bulk-submission path
// answered 404. The resolver leaves its cache unset so the next flush retries
// discovery from scratch.
var ErrNoBulkEndpoint = errors.New("no trackio bulk endpoint found")

// NotFoundError is a 404 response. During endpoint resolution it means "try
// the next candidate path"; anywhere else it is a plain failure.
type NotFoundError struct {
	Body string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("404 not found: %s", e.Body)
}

// StatusError is any other non-2xx response, carrying the status code and
// response body for diagnostics.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}

// TransportError wraps a connection-level failure (dial error, timeout) from
// the underlying HTTP client.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsNotFound reports whether err classifies as a 404 response.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
