package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunnerConfig holds configuration for the job runner.
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers execute jobs.
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory job queue.
	QueueSize int

	// PollInterval defines how often the runner looks for due jobs.
	PollInterval time.Duration

	// StuckJobAge defines how long a job can sit in processing state
	// before it is considered stuck and reset.
	StuckJobAge time.Duration

	// StuckJobCheckInterval defines how often to check for stuck jobs.
	// If zero, defaults to 5 minutes.
	StuckJobCheckInterval time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:           2,
		QueueSize:             100,
		PollInterval:          5 * time.Second,
		StuckJobAge:           30 * time.Minute,
		StuckJobCheckInterval: 5 * time.Minute,
	}
}

// Runner manages background job execution: it polls the store for due
// jobs, dispatches them to a worker pool, and recovers unfinished work on
// startup. It implements Scheduler.
type Runner struct {
	store      Store
	executors  map[string]ExecutorFunc
	jobChan    chan *Job
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     RunnerConfig
	logger     *slog.Logger
}

var _ Scheduler = (*Runner)(nil)

// NewRunner creates a new Runner backed by the given store.
func NewRunner(store Store, config RunnerConfig, logger *slog.Logger) *Runner {
	if config.StuckJobCheckInterval == 0 {
		config.StuckJobCheckInterval = 5 * time.Minute
	}
	if config.PollInterval == 0 {
		config.PollInterval = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		store:      store,
		executors:  make(map[string]ExecutorFunc),
		jobChan:    make(chan *Job, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
	}
}

// Register binds an executor to a job kind. Must be called before Start;
// a due job with no registered executor is marked failed.
func (r *Runner) Register(kind string, fn ExecutorFunc) {
	r.executors[kind] = fn
}

// Schedule implements Scheduler.Schedule.
func (r *Runner) Schedule(ctx context.Context, kind string, payload any, runAt time.Time) (uuid.UUID, error) {
	j, err := New(kind, payload, runAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to build job: %w", err)
	}
	if err := r.store.SaveJob(ctx, j); err != nil {
		return uuid.Nil, fmt.Errorf("failed to save job: %w", err)
	}

	// Jobs due now skip the poller round-trip when the queue has room.
	// The claim step keeps the poller from double-dispatching them.
	if !runAt.After(time.Now()) {
		select {
		case r.jobChan <- j:
		default:
		}
	}

	return j.ID, nil
}

// Submit implements Scheduler.Submit.
func (r *Runner) Submit(ctx context.Context, kind string, payload any) (uuid.UUID, error) {
	return r.Schedule(ctx, kind, payload, time.Time{})
}

// Cancel implements Scheduler.Cancel. Cancelling a job that is running,
// finished, or missing is deliberately not an error.
func (r *Runner) Cancel(ctx context.Context, id uuid.UUID) error {
	cancelled, err := r.store.CancelJob(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to cancel job: %w", err)
	}
	if !cancelled {
		r.logger.Debug("cancel was a no-op, job not pending", "job_id", id)
	}
	return nil
}

// Start recovers unfinished jobs and launches the worker pool, poller, and
// stuck-job monitor.
func (r *Runner) Start() error {
	if err := r.recover(); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.poller()

	r.wg.Add(1)
	go r.stuckJobMonitor()

	return nil
}

// Stop gracefully shuts down the runner, waiting for in-flight jobs.
func (r *Runner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	close(r.jobChan)
}

// recover resets jobs that were mid-flight when the previous process died.
// Processing jobs go back to pending; the poller will pick them up again.
// This is where the at-least-once guarantee comes from.
func (r *Runner) recover() error {
	ctx := context.Background()

	processing, err := r.store.GetProcessingJobs(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing jobs: %w", err)
	}

	r.logger.Info("recovering unfinished jobs", "processing_count", len(processing))

	for _, j := range processing {
		if err := r.store.UpdateJobStatus(ctx, j.ID, StatusPending, "reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing job",
				"job_id", j.ID,
				"job_kind", j.Kind,
				"error", err)
		}
	}

	return nil
}

// worker executes jobs from the queue.
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case j, ok := <-r.jobChan:
			if !ok {
				return
			}
			r.processJob(j, id)
		}
	}
}

// processJob claims and executes a single job, recording the outcome.
func (r *Runner) processJob(j *Job, workerID int) {
	ctx := context.Background()
	log := r.logger.With(
		"job_id", j.ID,
		"job_kind", j.Kind,
		"worker_id", workerID,
	)

	claimed, err := r.store.ClaimJob(ctx, j.ID)
	if err != nil {
		log.Error("failed to claim job", "error", err)
		return
	}
	if !claimed {
		// Cancelled, already picked up elsewhere, or gone.
		log.Debug("job no longer pending, skipping")
		return
	}

	executor, ok := r.executors[j.Kind]
	if !ok {
		log.Error("no executor registered for job kind")
		if err := r.store.UpdateJobStatus(ctx, j.ID, StatusFailed, "no executor for kind "+j.Kind); err != nil {
			log.Error("failed to update job status to failed", "error", err)
		}
		return
	}

	log.Info("processing job")

	if err := executor(r.ctx, j.Payload); err != nil {
		log.Error("job execution failed", "error", err)
		if updateErr := r.store.UpdateJobStatus(ctx, j.ID, StatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to update job status to failed", "error", updateErr)
		}
		return
	}

	log.Info("job completed successfully")
	if err := r.store.UpdateJobStatus(ctx, j.ID, StatusCompleted, ""); err != nil {
		log.Error("failed to update job status to completed", "error", err)
	}
}

// poller periodically moves due jobs from the store into the queue. It is
// the only dispatch path for delayed jobs and the recovery path for
// immediate jobs that missed the channel.
func (r *Runner) poller() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			ctx := context.Background()
			due, err := r.store.GetDueJobs(ctx, time.Now().UTC(), r.config.QueueSize)
			if err != nil {
				r.logger.Error("failed to poll for due jobs", "error", err)
				continue
			}

			for _, j := range due {
				select {
				case r.jobChan <- j:
				default:
					r.logger.Warn("job queue is full, leaving job for next poll",
						"job_id", j.ID,
						"job_kind", j.Kind)
				}
			}
		}
	}
}

// stuckJobMonitor periodically resets jobs that have been in processing
// state for too long, e.g. after a worker wedged on I/O.
func (r *Runner) stuckJobMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckJobCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			ctx := context.Background()

			stuck, err := r.store.GetProcessingJobs(ctx, r.config.StuckJobAge)
			if err != nil {
				r.logger.Error("failed to check for stuck jobs", "error", err)
				continue
			}

			for _, j := range stuck {
				r.logger.Info("resetting stuck job", "job_id", j.ID, "job_kind", j.Kind)
				if err := r.store.UpdateJobStatus(ctx, j.ID, StatusPending,
					"reset after being stuck in processing state"); err != nil {
					r.logger.Error("failed to reset stuck job",
						"job_id", j.ID,
						"job_kind", j.Kind,
						"error", err)
				}
			}
		}
	}
}
