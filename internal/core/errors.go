package core

import (
	"errors"
	"fmt"
)

// ErrExportEmpty is returned when there is nothing to export.
var ErrExportEmpty = errors.New("no transactions to export")

// ValidationError reports a rejected create-transaction intent. No mutation
// happens when it is returned.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// PersistenceWriteError reports that a mutation could not be saved. The
// in-memory store has already been rolled back when it is returned.
type PersistenceWriteError struct {
	Op  string
	Err error
}

func (e *PersistenceWriteError) Error() string {
	return fmt.Sprintf("persist after %s: %v", e.Op, e.Err)
}

func (e *PersistenceWriteError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistenceWrite reports whether err is a PersistenceWriteError.
func IsPersistenceWrite(err error) bool {
	var pe *PersistenceWriteError
	return errors.As(err, &pe)
}
