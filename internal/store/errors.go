package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. Entity-specific variants below wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate of
	// a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, including foreign-key violations.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrIdentityNotFound indicates the requested identity does not exist.
	ErrIdentityNotFound = fmt.Errorf("%w: identity", ErrNotFound)

	// ErrListNotFound indicates the requested list does not exist. It is
	// also returned for lists the caller is not allowed to see, so absence
	// and invisibility are indistinguishable.
	ErrListNotFound = fmt.Errorf("%w: list", ErrNotFound)

	// ErrJobNotFound indicates the requested background job does not exist.
	ErrJobNotFound = fmt.Errorf("%w: job", ErrNotFound)

	// ErrUsernameExists indicates an identity with the given username
	// already exists.
	ErrUsernameExists = fmt.Errorf("%w: username", ErrDuplicate)

	// ErrListNameExists indicates the owner already has a list with the
	// given name.
	ErrListNameExists = fmt.Errorf("%w: list name", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
