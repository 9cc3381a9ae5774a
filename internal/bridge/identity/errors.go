package identity

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthFailure means the backend rejected the credentials.
	ErrAuthFailure = errors.New("identity: authentication failed")

	// ErrUnavailable covers timeouts, transport errors, 5xx answers and
	// bodies that cannot be decoded.
	ErrUnavailable = errors.New("identity: backend unavailable")

	ErrAccountNotFound = errors.New("identity: account not found")
)

// BackendError keeps the backend's own error message for logging. It
// unwraps to one of the sentinel errors above, which is all callers should
// branch on.
type BackendError struct {
	Status  int
	Message string
	kind    error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%v (status %d: %s)", e.kind, e.Status, e.Message)
}

func (e *BackendError) Unwrap() error { return e.kind }
