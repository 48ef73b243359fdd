package portfolio

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("portfolio not found")
	ErrInvalidTransition = errors.New("invalid portfolio status transition")
)

// TypeMismatchError is returned when a portfolio is fetched under the wrong
// variant type. Consumers treat the record as missing; the error carries the
// expected/actual pair for diagnostics.
type TypeMismatchError struct {
	ID       string
	Expected Type
	Actual   Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("portfolio %s: expected type %q, got %q", e.ID, e.Expected, e.Actual)
}
