package domain

import (
	"errors"
	"fmt"
)

// ValidationError a required field is missing or malformed. Surfaces as HTTP 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError an id did not match any record. Surfaces as HTTP 404.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// NewNotFoundError builds a NotFoundError.
func NewNotFoundError(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// ConflictError a uniqueness rule was violated. Surfaces as HTTP 409.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// AuthenticationError credentials or session are missing or invalid. HTTP 401.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }

// AuthorizationError the caller's role is too low for the operation, or Door is set and
// lies outside the caller's assigned door. HTTP 403.
type AuthorizationError struct {
	Required Role
	Actual   Role
	Door     string
}

func (e *AuthorizationError) Error() string {
	if e.Door != "" {
		return fmt.Sprintf("not assigned to door %q", e.Door)
	}
	return fmt.Sprintf("role %q required, have %q", e.Required, e.Actual)
}

// StorageError the persistence layer failed. HTTP 500 with a generic message.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err unless it is nil or already a typed domain error.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var nf *NotFoundError
	var ce *ConflictError
	if errors.As(err, &nf) || errors.As(err, &ce) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
