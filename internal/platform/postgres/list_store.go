package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Holography7/listkeeper/internal/domain"
	"github.com/Holography7/listkeeper/internal/platform/logger"
	"github.com/Holography7/listkeeper/internal/store"
)

// ListStore implements store.ListStore using a PostgreSQL database as the
// storage backend. Tasks are written and read together with their list.
type ListStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewListStore creates a new PostgreSQL implementation of the
// store.ListStore interface.
func NewListStore(db store.DBTX, log *slog.Logger) *ListStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &ListStore{
		db:     db,
		logger: log.With(slog.String("component", "list_store")),
	}
}

// Ensure ListStore implements store.ListStore
var _ store.ListStore = (*ListStore)(nil)

// WithTx returns a ListStore bound to the given transaction.
func (s *ListStore) WithTx(tx *sql.Tx) store.ListStore {
	return &ListStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.ListStore.Create.
func (s *ListStore) Create(ctx context.Context, list *domain.List) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := list.Validate(); err != nil {
		log.Warn("list validation failed during create",
			slog.String("error", err.Error()),
			slog.String("list_id", list.ID.String()))
		return err
	}

	query := `
		INSERT INTO lists (id, name, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query, list.ID, list.Name, list.OwnerID, list.CreatedAt, list.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case uniqueViolationCode:
				log.Debug("duplicate list name for owner",
					slog.String("name", list.Name),
					slog.String("owner_id", list.OwnerID.String()))
				return store.ErrListNameExists
			case foreignKeyViolationCode:
				return store.ErrInvalidEntity
			}
		}

		log.Error("failed to create list",
			slog.String("error", err.Error()),
			slog.String("list_id", list.ID.String()))
		return MapError(err)
	}

	if err := s.insertTasks(ctx, list); err != nil {
		return err
	}

	log.Info("list created",
		slog.String("list_id", list.ID.String()),
		slog.String("owner_id", list.OwnerID.String()),
		slog.Int("task_count", len(list.Tasks)))
	return nil
}

// insertTasks writes the list's task rows.
func (s *ListStore) insertTasks(ctx context.Context, list *domain.List) error {
	query := `
		INSERT INTO tasks (id, list_id, name, done, position)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, t := range list.Tasks {
		if _, err := s.db.ExecContext(ctx, query, t.ID, list.ID, t.Name, t.Done, t.Position); err != nil {
			return MapError(err)
		}
	}
	return nil
}

// loadTasks reads the task rows for one list, in position order.
func (s *ListStore) loadTasks(ctx context.Context, listID uuid.UUID) ([]domain.Task, error) {
	query := `
		SELECT id, list_id, name, done, position
		FROM tasks
		WHERE list_id = $1
		ORDER BY position
	`
	rows, err := s.db.QueryContext(ctx, query, listID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	tasks := []domain.Task{}
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.ListID, &t.Name, &t.Done, &t.Position); err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

// GetByID implements store.ListStore.GetByID.
func (s *ListStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.List, error) {
	query := `
		SELECT id, name, owner_id, created_at, updated_at
		FROM lists
		WHERE id = $1
	`

	var list domain.List
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&list.ID,
		&list.Name,
		&list.OwnerID,
		&list.CreatedAt,
		&list.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrListNotFound
		}
		return nil, MapError(err)
	}

	list.Tasks, err = s.loadTasks(ctx, list.ID)
	if err != nil {
		return nil, err
	}

	return &list, nil
}

// queryLists runs a list query and hydrates tasks for each result.
func (s *ListStore) queryLists(ctx context.Context, query string, args ...any) ([]*domain.List, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	lists := []*domain.List{}
	for rows.Next() {
		var list domain.List
		if err := rows.Scan(&list.ID, &list.Name, &list.OwnerID, &list.CreatedAt, &list.UpdatedAt); err != nil {
			return nil, MapError(err)
		}
		lists = append(lists, &list)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	for _, list := range lists {
		if list.Tasks, err = s.loadTasks(ctx, list.ID); err != nil {
			return nil, err
		}
	}

	return lists, nil
}

// FindByOwner implements store.ListStore.FindByOwner.
func (s *ListStore) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.List, error) {
	query := `
		SELECT id, name, owner_id, created_at, updated_at
		FROM lists
		WHERE owner_id = $1
		ORDER BY created_at
	`
	return s.queryLists(ctx, query, ownerID)
}

// FindAll implements store.ListStore.FindAll.
func (s *ListStore) FindAll(ctx context.Context) ([]*domain.List, error) {
	query := `
		SELECT id, name, owner_id, created_at, updated_at
		FROM lists
		ORDER BY created_at
	`
	return s.queryLists(ctx, query)
}

// Update implements store.ListStore.Update. The name is replaced and the
// task set is rewritten wholesale; a list update is treated as a single
// document-style replacement.
func (s *ListStore) Update(ctx context.Context, list *domain.List) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := list.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE lists
		SET name = $2, updated_at = $3
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, list.ID, list.Name, time.Now().UTC())
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrListNameExists
		}
		return MapError(err)
	}
	if err := CheckRowsAffected(result, "list"); err != nil {
		return store.ErrListNotFound
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE list_id = $1`, list.ID); err != nil {
		return MapError(err)
	}
	if err := s.insertTasks(ctx, list); err != nil {
		return err
	}

	log.Info("list updated",
		slog.String("list_id", list.ID.String()),
		slog.Int("task_count", len(list.Tasks)))
	return nil
}

// Delete implements store.ListStore.Delete. Task rows go with the list
// through the FK cascade. A concurrent second delete of the same list
// simply reports not-found.
func (s *ListStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "list"); err != nil {
		return store.ErrListNotFound
	}

	log.Info("list deleted", slog.String("list_id", id.String()))
	return nil
}
