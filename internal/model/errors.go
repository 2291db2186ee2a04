package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotOwner is returned when a user acts on a photo they do not own.
	ErrNotOwner = errors.New("user is not an owner of the photo")
	// ErrHashExists signals a content hash uniqueness conflict on insert.
	// It never leaves the service layer: the ingestion pipeline converts it
	// into the add-owner path.
	ErrHashExists = errors.New("photo with content hash already exists")
	// ErrEmailTaken is returned when registering with an already used email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on failed sign-in or OTP verification.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError rejects bad input before any side effect. Never retryable.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// NewValidationError creates a ValidationError with the given reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// StorageError wraps a failure of the external asset store. Retryable.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("asset storage failed: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a registry write failure.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("registry write failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
