package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCapacityConflict   = errors.New("capacity conflict")

	// ErrRetryable means the outcome is unknown and the request may be repeated.
	ErrRetryable = errors.New("temporarily unavailable, retry the request")
)

// CapacityError reports a reservation that did not fit. It is an expected
// outcome, not a fault.
type CapacityError struct {
	Requested int
	Remaining int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough tickets available: requested %d, remaining %d", e.Requested, e.Remaining)
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
