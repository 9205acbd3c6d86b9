package store

import (
	"errors"
	"fmt"
)

// ValidationError indicates that caller input was rejected before touching
// the database (for example an empty title).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NotFoundError indicates that the referenced task does not exist.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %d not found", e.ID)
}

// StorageError wraps a failure of the underlying database driver or file.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err (or any error in its chain) is a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFoundError reports whether err (or any error in its chain) is a NotFoundError.
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsStorageError reports whether err (or any error in its chain) is a StorageError.
func IsStorageError(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}

// wrapStorage turns a raw driver error into a StorageError. Errors that are
// already classified pass through unchanged.
func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidationError(err) || IsNotFoundError(err) || IsStorageError(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
