// Package job provides a persistent delayed-job scheduler: jobs are stored
// in the database, picked up by a worker pool, and survive process
// restarts. Delivery is at-least-once; executors must tolerate duplicate
// firings.
package job

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a job.
type Status string

// Possible job status values.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Job represents a unit of background work, optionally deferred until RunAt.
type Job struct {
	ID        uuid.UUID
	Kind      string
	Payload   json.RawMessage
	Status    Status
	RunAt     time.Time
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a pending job of the given kind, marshalling payload to JSON.
// runAt in the past (or zero) makes the job due immediately.
func New(kind string, payload any, runAt time.Time) (*Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if runAt.IsZero() {
		runAt = now
	}
	return &Job{
		ID:        uuid.New(),
		Kind:      kind,
		Payload:   raw,
		Status:    StatusPending,
		RunAt:     runAt,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ExecutorFunc runs the work for one job kind. The payload is the JSON
// recorded at scheduling time.
type ExecutorFunc func(ctx context.Context, payload json.RawMessage) error

// Scheduler is the capability handed to services that submit background
// work. Tests substitute a capturing fake.
type Scheduler interface {
	// Schedule persists a job of the given kind to fire at runAt.
	// Returns the job's ID for later cancellation.
	Schedule(ctx context.Context, kind string, payload any, runAt time.Time) (uuid.UUID, error)

	// Submit persists a job due immediately.
	Submit(ctx context.Context, kind string, payload any) (uuid.UUID, error)

	// Cancel marks a pending job cancelled so it never fires. Cancelling a
	// job that already fired, is running, or does not exist is not an
	// error: cancellation is fire-and-forget.
	Cancel(ctx context.Context, id uuid.UUID) error
}

// Store defines the persistence interface the runner needs.
type Store interface {
	// SaveJob persists a new job.
	SaveJob(ctx context.Context, j *Job) error

	// ClaimJob atomically moves a pending job to processing.
	// Returns false if the job is no longer pending (already claimed,
	// cancelled, or gone), in which case it must not be executed.
	ClaimJob(ctx context.Context, id uuid.UUID) (bool, error)

	// UpdateJobStatus updates a job's status and error message.
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status Status, errMsg string) error

	// CancelJob marks a pending job cancelled. Returns false if the job
	// was not pending; that is not an error condition.
	CancelJob(ctx context.Context, id uuid.UUID) (bool, error)

	// GetDueJobs returns pending jobs whose run_at is at or before now.
	GetDueJobs(ctx context.Context, now time.Time, limit int) ([]*Job, error)

	// GetProcessingJobs returns jobs stuck in processing longer than
	// olderThan. A zero olderThan returns all processing jobs.
	GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]*Job, error)
}
