package app

import (
	"errors"
	"fmt"

	"github.com/artpar/saasmon/ports"
)

// ErrNotFound is returned when no account (or log parent) matches an id.
// A miss is not a storage fault: callers typically render it as a 404.
var ErrNotFound = ports.ErrNotFound

// ValidationError reports malformed or missing required input. It is the
// client's fault and is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// StorageError reports a failure in the underlying document store. It is
// opaque to the core: surfaced as-is, never swallowed, never retried here.
// Retry policy, if wanted, belongs to the dispatcher.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// storageErr wraps a store failure, letting not-found pass through unchanged.
func storageErr(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return &StorageError{Op: op, Err: err}
}
