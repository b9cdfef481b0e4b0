package types

import "errors"

// Validation reasons reported by ValidationError.
const (
	ReasonMissingField    = "missing field"
	ReasonNonNumericYear  = "non-numeric year"
	ReasonNonNumericPrice = "non-numeric price"
)

// Standard errors. Use errors.Is to match them against wrapped errors.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrPersistence  = errors.New("persistence failure")
	ErrStoreClosed  = errors.New("store is closed")
)

// ValidationError reports the first input rule a submission failed.
// Field names the offending form field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Is reports ErrInvalidInput as a match so callers need not type-assert.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// PersistenceError wraps a failure of the underlying database.
// Op is the store operation that failed (init, insert, list, export).
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is reports ErrPersistence as a match.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
