package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the employee, vendor or ledger key does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the requested key is outside the
	// caller's resolved scope.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTransaction wraps database failures during the ledger write. The
	// whole call fails; no partial state persists.
	ErrTransaction = errors.New("ledger transaction failed")
)

// ValidationError rejects malformed input before any transaction opens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
