// Package domain defines the core business entities and their validation rules.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// It is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")

	ErrEmptyUsername    = errors.New("username cannot be empty")
	ErrUsernameTooLong  = errors.New("username must be at most 150 characters long")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 10 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters long")
	ErrInvalidTelegram  = errors.New("telegram contact must start with @ and be at most 33 characters long")
	ErrInvalidRole      = errors.New("invalid role")

	ErrEmptyListName  = errors.New("list name cannot be empty")
	ErrEmptyListOwner = errors.New("list owner cannot be empty")
	ErrEmptyTaskName  = errors.New("task name cannot be empty")
	ErrDuplicateTask  = errors.New("task names must be unique within a list")
)

// ValidationError wraps a field-level validation failure so callers can
// report which field was rejected without parsing error strings.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError wrapping the given sentinel.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
