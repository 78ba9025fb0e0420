package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/Holography7/listkeeper/internal/domain"
)

// ListStore defines the interface for list persistence. Tasks are stored
// and loaded as part of their owning list.
type ListStore interface {
	// Create saves a new list together with its tasks.
	// Returns ErrListNameExists if the owner already has a list with the
	// same name, and ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, list *domain.List) error

	// GetByID retrieves a list with its tasks.
	// Returns ErrListNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.List, error)

	// FindByOwner returns every list owned by the given identity.
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.List, error)

	// FindAll returns every list in the store. Superuser views only.
	FindAll(ctx context.Context) ([]*domain.List, error)

	// Update replaces the list's name and tasks.
	// Returns ErrListNotFound if the list does not exist and
	// ErrListNameExists on a per-owner name collision.
	Update(ctx context.Context, list *domain.List) error

	// Delete removes a list and its tasks by ID.
	// Returns ErrListNotFound if the list does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a ListStore bound to the given transaction.
	WithTx(tx *sql.Tx) ListStore
}
