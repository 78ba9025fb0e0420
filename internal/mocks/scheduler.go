package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ScheduledCall records one Schedule or Submit invocation.
type ScheduledCall struct {
	ID      uuid.UUID
	Kind    string
	Payload any
	RunAt   time.Time
}

// MockScheduler implements job.Scheduler for testing. It records every call
// and never runs anything.
type MockScheduler struct {
	// Function fields for customizable behavior
	ScheduleFn func(ctx context.Context, kind string, payload any, runAt time.Time) (uuid.UUID, error)
	SubmitFn   func(ctx context.Context, kind string, payload any) (uuid.UUID, error)
	CancelFn   func(ctx context.Context, id uuid.UUID) error

	// Errors returned by the default implementations
	ScheduleErr error
	SubmitErr   error
	CancelErr   error

	mu sync.Mutex

	// Scheduled records Schedule calls; Submitted records Submit calls.
	Scheduled []ScheduledCall
	Submitted []ScheduledCall
	Cancelled []uuid.UUID
}

// Schedule implements the job.Scheduler interface
func (m *MockScheduler) Schedule(
	ctx context.Context,
	kind string,
	payload any,
	runAt time.Time,
) (uuid.UUID, error) {
	if m.ScheduleFn != nil {
		return m.ScheduleFn(ctx, kind, payload, runAt)
	}
	if m.ScheduleErr != nil {
		return uuid.Nil, m.ScheduleErr
	}

	id := uuid.New()
	m.mu.Lock()
	m.Scheduled = append(m.Scheduled, ScheduledCall{ID: id, Kind: kind, Payload: payload, RunAt: runAt})
	m.mu.Unlock()
	return id, nil
}

// Submit implements the job.Scheduler interface
func (m *MockScheduler) Submit(ctx context.Context, kind string, payload any) (uuid.UUID, error) {
	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, kind, payload)
	}
	if m.SubmitErr != nil {
		return uuid.Nil, m.SubmitErr
	}

	id := uuid.New()
	m.mu.Lock()
	m.Submitted = append(m.Submitted, ScheduledCall{ID: id, Kind: kind, Payload: payload})
	m.mu.Unlock()
	return id, nil
}

// Cancel implements the job.Scheduler interface
func (m *MockScheduler) Cancel(ctx context.Context, id uuid.UUID) error {
	if m.CancelFn != nil {
		return m.CancelFn(ctx, id)
	}
	if m.CancelErr != nil {
		return m.CancelErr
	}

	m.mu.Lock()
	m.Cancelled = append(m.Cancelled, id)
	m.mu.Unlock()
	return nil
}

// SubmittedOfKind returns the Submit calls matching kind.
func (m *MockScheduler) SubmittedOfKind(kind string) []ScheduledCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	var calls []ScheduledCall
	for _, c := range m.Submitted {
		if c.Kind == kind {
			calls = append(calls, c)
		}
	}
	return calls
}
