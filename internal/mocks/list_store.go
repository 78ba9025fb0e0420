package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/Holography7/listkeeper/internal/domain"
	"github.com/Holography7/listkeeper/internal/store"
)

// MockListStore implements store.ListStore for testing
type MockListStore struct {
	// Function fields for customizable behavior
	CreateFn      func(ctx context.Context, list *domain.List) error
	GetByIDFn     func(ctx context.Context, id uuid.UUID) (*domain.List, error)
	FindByOwnerFn func(ctx context.Context, ownerID uuid.UUID) ([]*domain.List, error)
	FindAllFn     func(ctx context.Context) ([]*domain.List, error)
	UpdateFn      func(ctx context.Context, list *domain.List) error
	DeleteFn      func(ctx context.Context, id uuid.UUID) error

	mu sync.Mutex

	// Lists backs the default implementation, keyed by list ID.
	Lists map[uuid.UUID]*domain.List
}

// NewMockListStore creates a new mock store with initialized defaults
func NewMockListStore() *MockListStore {
	return &MockListStore{
		Lists: make(map[uuid.UUID]*domain.List),
	}
}

// Add seeds the in-memory store.
func (m *MockListStore) Add(list *domain.List) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lists[list.ID] = list
}

// Create implements the ListStore interface
func (m *MockListStore) Create(ctx context.Context, list *domain.List) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, list)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.Lists {
		if existing.OwnerID == list.OwnerID && existing.Name == list.Name {
			return store.ErrListNameExists
		}
	}

	m.Lists[list.ID] = list
	return nil
}

// GetByID implements the ListStore interface
func (m *MockListStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.List, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list, ok := m.Lists[id]
	if !ok {
		return nil, store.ErrListNotFound
	}
	return list, nil
}

// FindByOwner implements the ListStore interface
func (m *MockListStore) FindByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*domain.List, error) {
	if m.FindByOwnerFn != nil {
		return m.FindByOwnerFn(ctx, ownerID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var lists []*domain.List
	for _, list := range m.Lists {
		if list.OwnerID == ownerID {
			lists = append(lists, list)
		}
	}
	return lists, nil
}

// FindAll implements the ListStore interface
func (m *MockListStore) FindAll(ctx context.Context) ([]*domain.List, error) {
	if m.FindAllFn != nil {
		return m.FindAllFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	lists := make([]*domain.List, 0, len(m.Lists))
	for _, list := range m.Lists {
		lists = append(lists, list)
	}
	return lists, nil
}

// Update implements the ListStore interface
func (m *MockListStore) Update(ctx context.Context, list *domain.List) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, list)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Lists[list.ID]; !ok {
		return store.ErrListNotFound
	}
	for id, existing := range m.Lists {
		if id != list.ID && existing.OwnerID == list.OwnerID && existing.Name == list.Name {
			return store.ErrListNameExists
		}
	}

	m.Lists[list.ID] = list
	return nil
}

// Delete implements the ListStore interface
func (m *MockListStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Lists[id]; !ok {
		return store.ErrListNotFound
	}
	delete(m.Lists, id)
	return nil
}

// WithTx implements the ListStore interface; the mock ignores transactions.
func (m *MockListStore) WithTx(tx *sql.Tx) store.ListStore {
	return m
}
