package rest

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnauthorized reports that the server refused the request's
	// credentials. The client fires the unauthorized hook before returning
	// it; callers abort the in-flight operation and never retry.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTransport reports a failure before any response arrived.
	ErrTransport = errors.New("service unavailable")
)

// StatusError reports a non-2xx, non-unauthorized response, carrying the
// server's own error text when the body had one.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("status %d", e.Code)
}
