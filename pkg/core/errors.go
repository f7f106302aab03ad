package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrValidation           = errors.New("validation failed")
	ErrDuplicateEmail       = errors.New("user already registered")
	ErrDeletionNotConfirmed = errors.New("deletion not confirmed")
	ErrCorruptData          = errors.New("stored data is corrupt")
	ErrNotFound             = errors.New("not found")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUnauthorized         = errors.New("not authorized")
	ErrReadOnly             = errors.New("store is in read-only mode")
	ErrWatchUnsupported     = errors.New("store does not support watching")
)

// RedirectError is returned by the role gate when the current identity may not
// see a view. To names the route the caller should navigate to.
type RedirectError struct {
	To     string
	Reason string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect to %s: %s", e.To, e.Reason)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match.
func (e *RedirectError) Unwrap() error {
	return ErrUnauthorized
}
