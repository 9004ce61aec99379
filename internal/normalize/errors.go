package normalize

import (
	"errors"
	"fmt"
)

// ErrValidation is the kind shared by every row-level failure.
var ErrValidation = errors.New("validation error")

// Reasons a row can be rejected. A ValidationError matches both ErrValidation
// and one of these with errors.Is.
var (
	ErrMissing        = errors.New("missing value")
	ErrUnparsable     = errors.New("unparsable value")
	ErrNegativeAmount = errors.New("negative amount")
	ErrAmbiguousDate  = errors.New("ambiguous date")
)

// ValidationError describes why a single raw row was excluded.
type ValidationError struct {
	Row    int
	Field  Field
	Value  string
	Reason error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Value == "" {
		return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Reason)
	}
	return fmt.Sprintf("row %d: %s: %s %q", e.Row, e.Field, e.Reason, e.Value)
}

func (e *ValidationError) Unwrap() []error { return []error{ErrValidation, e.Reason} }

func invalid(row int, field Field, value string, reason error) error {
	return &ValidationError{Row: row, Field: field, Value: value, Reason: reason}
}
