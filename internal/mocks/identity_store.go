package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/Holography7/listkeeper/internal/domain"
	"github.com/Holography7/listkeeper/internal/store"
)

// MockIdentityStore implements store.IdentityStore for testing
type MockIdentityStore struct {
	// Function fields for customizable behavior
	CreateFn        func(ctx context.Context, identity *domain.Identity) error
	GetByIDFn       func(ctx context.Context, id uuid.UUID) (*domain.Identity, error)
	GetByUsernameFn func(ctx context.Context, username string) (*domain.Identity, error)
	ListFn          func(ctx context.Context) ([]*domain.Identity, error)
	SetExpiryJobFn  func(ctx context.Context, id uuid.UUID, jobID *uuid.UUID) error
	DeleteFn        func(ctx context.Context, id uuid.UUID) error

	mu sync.Mutex

	// Identities backs the default implementation, keyed by username.
	Identities map[string]*domain.Identity
	// Deleted records IDs passed to Delete, in order.
	Deleted []uuid.UUID
}

// NewMockIdentityStore creates a new mock store with initialized defaults
func NewMockIdentityStore() *MockIdentityStore {
	return &MockIdentityStore{
		Identities: make(map[string]*domain.Identity),
	}
}

// Add seeds the in-memory store, bypassing validation and hashing.
func (m *MockIdentityStore) Add(identity *domain.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Identities[identity.Username] = identity
}

// Create implements the IdentityStore interface
func (m *MockIdentityStore) Create(ctx context.Context, identity *domain.Identity) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, identity)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.Identities[identity.Username]; exists {
		return store.ErrUsernameExists
	}

	m.Identities[identity.Username] = identity
	return nil
}

// GetByID implements the IdentityStore interface
func (m *MockIdentityStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, identity := range m.Identities {
		if identity.ID == id {
			return identity, nil
		}
	}
	return nil, store.ErrIdentityNotFound
}

// GetByUsername implements the IdentityStore interface
func (m *MockIdentityStore) GetByUsername(
	ctx context.Context,
	username string,
) (*domain.Identity, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	identity, ok := m.Identities[username]
	if !ok {
		return nil, store.ErrIdentityNotFound
	}
	return identity, nil
}

// List implements the IdentityStore interface
func (m *MockIdentityStore) List(ctx context.Context) ([]*domain.Identity, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	identities := make([]*domain.Identity, 0, len(m.Identities))
	for _, identity := range m.Identities {
		identities = append(identities, identity)
	}
	return identities, nil
}

// SetExpiryJob implements the IdentityStore interface
func (m *MockIdentityStore) SetExpiryJob(
	ctx context.Context,
	id uuid.UUID,
	jobID *uuid.UUID,
) error {
	if m.SetExpiryJobFn != nil {
		return m.SetExpiryJobFn(ctx, id, jobID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, identity := range m.Identities {
		if identity.ID == id {
			identity.ExpiryJobID = jobID
			return nil
		}
	}
	return store.ErrIdentityNotFound
}

// Delete implements the IdentityStore interface
func (m *MockIdentityStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for username, identity := range m.Identities {
		if identity.ID == id {
			delete(m.Identities, username)
			m.Deleted = append(m.Deleted, id)
			return nil
		}
	}
	return store.ErrIdentityNotFound
}

// WithTx implements the IdentityStore interface; the mock ignores transactions.
func (m *MockIdentityStore) WithTx(tx *sql.Tx) store.IdentityStore {
	return m
}
