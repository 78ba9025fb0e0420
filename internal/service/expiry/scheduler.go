// Package expiry implements inactivity-based account expiry: every
// successful authorization of a regular account pushes a delayed deletion
// job forward, so an account is only removed after going unused for the
// whole inactivity window.
package expiry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Holography7/listkeeper/internal/config"
	"github.com/Holography7/listkeeper/internal/domain"
	"github.com/Holography7/listkeeper/internal/job"
	"github.com/Holography7/listkeeper/internal/platform/logger"
	"github.com/Holography7/listkeeper/internal/platform/metrics"
	"github.com/Holography7/listkeeper/internal/store"
)

// JobKindAccountExpiry is the scheduler job kind for delayed account
// deletion.
const JobKindAccountExpiry = "account_expiry"

// Payload is the account-expiry job payload.
type Payload struct {
	IdentityID uuid.UUID `json:"identity_id"`
	Username   string    `json:"username"`
}

// Scheduler (re)schedules the delayed deletion job for an identity and
// executes the deletion when the job fires.
type Scheduler struct {
	identities store.IdentityStore
	jobs       job.Scheduler
	window     time.Duration
	metrics    metrics.Recorder
	logger     *slog.Logger
}

// NewScheduler creates a Scheduler with the configured inactivity window.
func NewScheduler(
	identities store.IdentityStore,
	jobs job.Scheduler,
	cfg config.ExpiryConfig,
	rec metrics.Recorder,
	log *slog.Logger,
) *Scheduler {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}

	return &Scheduler{
		identities: identities,
		jobs:       jobs,
		window:     time.Duration(cfg.InactivityDays) * 24 * time.Hour,
		metrics:    rec,
		logger:     log.With(slog.String("component", "expiry_scheduler")),
	}
}

// Refresh cancels the identity's previously scheduled deletion job, if
// any, then schedules a new one to fire after the inactivity window and
// records its reference on the identity. Superusers are never expired.
//
// Cancellation is fire-and-forget: a job that already fired or vanished is
// not an error. Two concurrent refreshes for the same identity race on the
// stored reference; last writer wins, and an orphaned job that later fires
// against an already-deleted identity is a harmless no-op.
func (s *Scheduler) Refresh(ctx context.Context, identity *domain.Identity) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if identity.IsSuperuser() {
		return nil
	}

	if identity.ExpiryJobID != nil {
		if err := s.jobs.Cancel(ctx, *identity.ExpiryJobID); err != nil {
			// Swallowed: the job may have fired already.
			log.Debug("failed to cancel previous expiry job",
				slog.String("identity_id", identity.ID.String()),
				slog.String("job_id", identity.ExpiryJobID.String()),
				slog.String("error", err.Error()))
		} else {
			s.metrics.RecordExpiryCancelled()
		}
	}

	fireAt := time.Now().UTC().Add(s.window)
	jobID, err := s.jobs.Schedule(ctx, JobKindAccountExpiry, Payload{
		IdentityID: identity.ID,
		Username:   identity.Username,
	}, fireAt)
	if err != nil {
		return fmt.Errorf("failed to schedule expiry job: %w", err)
	}

	if err := s.identities.SetExpiryJob(ctx, identity.ID, &jobID); err != nil {
		return fmt.Errorf("failed to record expiry job reference: %w", err)
	}
	identity.ExpiryJobID = &jobID

	s.metrics.RecordExpiryScheduled()
	log.Debug("expiry job scheduled",
		slog.String("identity_id", identity.ID.String()),
		slog.String("job_id", jobID.String()),
		slog.Time("fire_at", fireAt))
	return nil
}

// Executor returns the job executor for the account_expiry kind. Firing is
// the deletion signal: there is no re-check of last-seen time. An identity
// that is already gone is a no-op success, which makes duplicate firings
// from the at-least-once scheduler harmless.
func (s *Scheduler) Executor() job.ExecutorFunc {
	return func(ctx context.Context, raw json.RawMessage) error {
		var p Payload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("invalid expiry payload: %w", err)
		}

		err := s.identities.Delete(ctx, p.IdentityID)
		if err != nil {
			if errors.Is(err, store.ErrIdentityNotFound) {
				s.logger.Debug("expiry fired for already-deleted identity",
					slog.String("identity_id", p.IdentityID.String()))
				return nil
			}
			return fmt.Errorf("failed to delete expired identity: %w", err)
		}

		s.metrics.RecordExpiryFired()
		s.logger.Info("identity expired after inactivity window",
			slog.String("identity_id", p.IdentityID.String()),
			slog.String("username", p.Username))
		return nil
	}
}
