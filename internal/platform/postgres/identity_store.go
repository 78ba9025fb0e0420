package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Holography7/listkeeper/internal/domain"
	"github.com/Holography7/listkeeper/internal/platform/logger"
	"github.com/Holography7/listkeeper/internal/service/auth"
	"github.com/Holography7/listkeeper/internal/store"
)

// IdentityStore implements store.IdentityStore using a PostgreSQL
// database as the storage backend. Passwords are hashed on the way in.
type IdentityStore struct {
	db     store.DBTX
	hasher auth.PasswordHasher
	logger *slog.Logger
}

// NewIdentityStore creates a new PostgreSQL implementation of the
// store.IdentityStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
func NewIdentityStore(db store.DBTX, hasher auth.PasswordHasher, log *slog.Logger) *IdentityStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if hasher == nil {
		panic("hasher cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &IdentityStore{
		db:     db,
		hasher: hasher,
		logger: log.With(slog.String("component", "identity_store")),
	}
}

// Ensure IdentityStore implements store.IdentityStore
var _ store.IdentityStore = (*IdentityStore)(nil)

// WithTx returns an IdentityStore bound to the given transaction.
func (s *IdentityStore) WithTx(tx *sql.Tx) store.IdentityStore {
	return &IdentityStore{
		db:     tx,
		hasher: s.hasher,
		logger: s.logger,
	}
}

// Create implements store.IdentityStore.Create.
// It validates the identity, hashes its plaintext password, and inserts it.
// Returns store.ErrUsernameExists on a username collision.
func (s *IdentityStore) Create(ctx context.Context, identity *domain.Identity) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := identity.Validate(); err != nil {
		log.Warn("identity validation failed during create",
			slog.String("error", err.Error()),
			slog.String("username", identity.Username))
		return err
	}

	if identity.Password != "" {
		hashed, err := s.hasher.Hash(identity.Password)
		if err != nil {
			log.Error("failed to hash password", slog.String("error", err.Error()))
			return fmt.Errorf("failed to hash password: %w", err)
		}
		identity.HashedPassword = hashed
		identity.Password = ""
	}

	query := `
		INSERT INTO identities (id, username, hashed_password, telegram, role, last_seen, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		identity.ID,
		identity.Username,
		identity.HashedPassword,
		identity.Telegram,
		identity.Role,
		identity.LastSeen,
		identity.CreatedAt,
		identity.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			log.Debug("username already taken",
				slog.String("username", identity.Username))
			return store.ErrUsernameExists
		}

		log.Error("failed to create identity",
			slog.String("error", err.Error()),
			slog.String("username", identity.Username))
		return MapError(err)
	}

	log.Info("identity created",
		slog.String("identity_id", identity.ID.String()),
		slog.String("username", identity.Username),
		slog.String("role", string(identity.Role)))
	return nil
}

const identityColumns = `id, username, hashed_password, telegram, role, expiry_job_id, last_seen, created_at, updated_at`

// scanIdentity reads one identity row from the given scanner.
func scanIdentity(row interface{ Scan(dest ...any) error }) (*domain.Identity, error) {
	var identity domain.Identity
	var expiryJobID uuid.NullUUID

	err := row.Scan(
		&identity.ID,
		&identity.Username,
		&identity.HashedPassword,
		&identity.Telegram,
		&identity.Role,
		&expiryJobID,
		&identity.LastSeen,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if expiryJobID.Valid {
		id := expiryJobID.UUID
		identity.ExpiryJobID = &id
	}

	return &identity, nil
}

// GetByID implements store.IdentityStore.GetByID.
func (s *IdentityStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`

	identity, err := scanIdentity(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrIdentityNotFound
		}
		return nil, MapError(err)
	}

	return identity, nil
}

// GetByUsername implements store.IdentityStore.GetByUsername.
func (s *IdentityStore) GetByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE username = $1`

	identity, err := scanIdentity(s.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrIdentityNotFound
		}
		return nil, MapError(err)
	}

	return identity, nil
}

// List implements store.IdentityStore.List.
func (s *IdentityStore) List(ctx context.Context) ([]*domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var identities []*domain.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, MapError(err)
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return identities, nil
}

// SetExpiryJob implements store.IdentityStore.SetExpiryJob.
// Bumping last_seen here keeps the stored horizon consistent with the
// scheduled job without a second write.
func (s *IdentityStore) SetExpiryJob(ctx context.Context, id uuid.UUID, jobID *uuid.UUID) error {
	query := `
		UPDATE identities
		SET expiry_job_id = $2, last_seen = $3, updated_at = $3
		WHERE id = $1
	`

	var value uuid.NullUUID
	if jobID != nil {
		value = uuid.NullUUID{UUID: *jobID, Valid: true}
	}

	result, err := s.db.ExecContext(ctx, query, id, value, time.Now().UTC())
	if err != nil {
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "identity"); err != nil {
		return store.ErrIdentityNotFound
	}

	return nil
}

// Delete implements store.IdentityStore.Delete. Lists owned by the
// identity go with it through the FK cascade.
func (s *IdentityStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM identities WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "identity"); err != nil {
		return store.ErrIdentityNotFound
	}

	log.Info("identity deleted", slog.String("identity_id", id.String()))
	return nil
}
