package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when a measurement lies outside the physical domain
// the correction model accepts.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError names the offending field. It unwraps to ErrInvalidInput.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// NewInvalidInput builds an InvalidInputError with a formatted reason.
func NewInvalidInput(field, format string, args ...any) error {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
