package orders

import "github.com/pkg/errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrSessionExpired   = errors.New("session expired")
	ErrSubmitInFlight   = errors.New("a submission is already in flight")
	ErrRejected         = errors.New("order rejected")
	ErrUnavailable      = errors.New("order service unavailable")
)

// RejectedError reports a submission the server refused, carrying the
// server's own message. errors.Is(err, ErrRejected) matches it.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return ErrRejected.Error()
	}
	return "order rejected: " + e.Message
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}
