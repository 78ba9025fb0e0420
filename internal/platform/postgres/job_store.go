package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Holography7/listkeeper/internal/job"
	"github.com/Holography7/listkeeper/internal/store"
)

// JobStore implements job.Store using a PostgreSQL database as the
// storage backend for the delayed-job scheduler.
type JobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewJobStore creates a new PostgreSQL implementation of the job.Store
// interface.
func NewJobStore(db store.DBTX, log *slog.Logger) *JobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &JobStore{
		db:     db,
		logger: log.With(slog.String("component", "job_store")),
	}
}

// Ensure JobStore implements job.Store
var _ job.Store = (*JobStore)(nil)

// SaveJob implements job.Store.SaveJob.
func (s *JobStore) SaveJob(ctx context.Context, j *job.Job) error {
	query := `
		INSERT INTO jobs (id, kind, payload, status, run_at, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		j.ID,
		j.Kind,
		[]byte(j.Payload),
		j.Status,
		j.RunAt,
		j.Error,
		j.CreatedAt,
		j.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}
	return nil
}

// ClaimJob implements job.Store.ClaimJob. The conditional UPDATE makes the
// pending -> processing transition atomic across workers and processes.
func (s *JobStore) ClaimJob(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE jobs
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4
	`
	result, err := s.db.ExecContext(ctx, query, id, job.StatusProcessing, time.Now().UTC(), job.StatusPending)
	if err != nil {
		return false, MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, MapError(err)
	}
	return rows == 1, nil
}

// UpdateJobStatus implements job.Store.UpdateJobStatus.
func (s *JobStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, status job.Status, errMsg string) error {
	query := `
		UPDATE jobs
		SET status = $2, error = $3, updated_at = $4
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, id, status, errMsg, time.Now().UTC())
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, "job"); err != nil {
		return store.ErrJobNotFound
	}
	return nil
}

// CancelJob implements job.Store.CancelJob. Only pending jobs can be
// cancelled; anything else reports false without an error, matching the
// fire-and-forget cancellation contract.
func (s *JobStore) CancelJob(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE jobs
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4
	`
	result, err := s.db.ExecContext(ctx, query, id, job.StatusCancelled, time.Now().UTC(), job.StatusPending)
	if err != nil {
		return false, MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, MapError(err)
	}
	return rows == 1, nil
}

// GetDueJobs implements job.Store.GetDueJobs.
func (s *JobStore) GetDueJobs(ctx context.Context, now time.Time, limit int) ([]*job.Job, error) {
	query := `
		SELECT id, kind, payload, status, run_at, error, created_at, updated_at
		FROM jobs
		WHERE status = $1 AND run_at <= $2
		ORDER BY run_at
		LIMIT $3
	`
	return s.queryJobs(ctx, query, job.StatusPending, now, limit)
}

// GetProcessingJobs implements job.Store.GetProcessingJobs.
func (s *JobStore) GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]*job.Job, error) {
	if olderThan == 0 {
		query := `
			SELECT id, kind, payload, status, run_at, error, created_at, updated_at
			FROM jobs
			WHERE status = $1
		`
		return s.queryJobs(ctx, query, job.StatusProcessing)
	}

	query := `
		SELECT id, kind, payload, status, run_at, error, created_at, updated_at
		FROM jobs
		WHERE status = $1 AND updated_at < $2
	`
	return s.queryJobs(ctx, query, job.StatusProcessing, time.Now().UTC().Add(-olderThan))
}

func (s *JobStore) queryJobs(ctx context.Context, query string, args ...any) ([]*job.Job, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var jobs []*job.Job
	for rows.Next() {
		var j job.Job
		var payload []byte
		if err := rows.Scan(&j.ID, &j.Kind, &payload, &j.Status, &j.RunAt, &j.Error, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, MapError(err)
		}
		j.Payload = payload
		jobs = append(jobs, &j)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return jobs, nil
}
