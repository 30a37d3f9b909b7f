// Package apperr defines the error kinds shared by the record packages.
//
// Domain packages declare their own sentinels on top of these kinds, for example
//
//	var ErrStudentNotFound = apperr.New(apperr.ErrNotFound, "student not found")
//
// and add the offending id or key when returning them, so callers can branch with
// errors.Is on either the specific sentinel or the kind.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrDuplicateAttendance = errors.New("duplicate attendance")
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
)

// New returns an error with msg that matches kind under errors.Is.
func New(kind error, msg string) error {
	return &kindError{msg: msg, kind: kind}
}

type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// StorageError wraps a failure returned by the record store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Storage wraps err as a StorageError. A nil err stays nil, and errors that already
// carry a kind are returned untouched.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) || IsKind(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsKind reports whether err is one of the caller-facing kinds.
func IsKind(err error) bool {
	return errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrDuplicateAttendance) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrValidation)
}

// Validation returns an ErrValidation carrying msg.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
