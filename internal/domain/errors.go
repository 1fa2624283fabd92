package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
)

// LookupFailure means catalog or rule data could not be read. It is fatal for
// the current call and must not be confused with an invalid selection.
type LookupFailure struct {
	Source string
	Err    error
}

func (e *LookupFailure) Error() string {
	return fmt.Sprintf("lookup failure (%s): %v", e.Source, e.Err)
}

func (e *LookupFailure) Unwrap() error { return e.Err }

// SelectionError rejects an order whose selection did not pass validation.
type SelectionError struct {
	Errors []string
}

func (e *SelectionError) Error() string {
	return "invalid selection: " + strings.Join(e.Errors, "; ")
}

// Invalidf wraps ErrInvalid with a message meant for the caller.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
