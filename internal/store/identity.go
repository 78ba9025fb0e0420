package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/Holography7/listkeeper/internal/domain"
)

// IdentityStore defines the interface for identity persistence.
type IdentityStore interface {
	// Create saves a new identity to the store. It handles domain validation
	// and password hashing internally.
	// Returns ErrUsernameExists if the username is already taken.
	Create(ctx context.Context, identity *domain.Identity) error

	// GetByID retrieves an identity by its unique ID.
	// Returns ErrIdentityNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error)

	// GetByUsername retrieves an identity by username.
	// Returns ErrIdentityNotFound if it does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.Identity, error)

	// List returns every identity in the store. Used by the deletion
	// notifier to enumerate notification recipients.
	List(ctx context.Context) ([]*domain.Identity, error)

	// SetExpiryJob records the identity's outstanding expiry-job reference.
	// A nil jobID clears the reference. Also bumps last_seen to now.
	// Returns ErrIdentityNotFound if the identity does not exist.
	SetExpiryJob(ctx context.Context, id uuid.UUID, jobID *uuid.UUID) error

	// Delete removes an identity by ID. Owned lists are removed with it.
	// Returns ErrIdentityNotFound if the identity does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns an IdentityStore bound to the given transaction.
	WithTx(tx *sql.Tx) IdentityStore
}
