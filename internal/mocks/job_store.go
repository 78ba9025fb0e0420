package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Holography7/listkeeper/internal/job"
	"github.com/Holography7/listkeeper/internal/store"
)

// MockJobStore implements job.Store in memory for runner tests.
type MockJobStore struct {
	mu   sync.Mutex
	Jobs map[uuid.UUID]*job.Job

	// Errors returned by the corresponding methods when set
	SaveErr  error
	ClaimErr error
}

// NewMockJobStore creates a new mock job store.
func NewMockJobStore() *MockJobStore {
	return &MockJobStore{
		Jobs: make(map[uuid.UUID]*job.Job),
	}
}

// SaveJob implements the job.Store interface
func (m *MockJobStore) SaveJob(ctx context.Context, j *job.Job) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *j
	m.Jobs[j.ID] = &copied
	return nil
}

// ClaimJob implements the job.Store interface
func (m *MockJobStore) ClaimJob(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.ClaimErr != nil {
		return false, m.ClaimErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.Jobs[id]
	if !ok || j.Status != job.StatusPending {
		return false, nil
	}
	j.Status = job.StatusProcessing
	j.UpdatedAt = time.Now().UTC()
	return true, nil
}

// UpdateJobStatus implements the job.Store interface
func (m *MockJobStore) UpdateJobStatus(
	ctx context.Context,
	id uuid.UUID,
	status job.Status,
	errMsg string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.Jobs[id]
	if !ok {
		return store.ErrJobNotFound
	}
	j.Status = status
	j.Error = errMsg
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// CancelJob implements the job.Store interface
func (m *MockJobStore) CancelJob(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.Jobs[id]
	if !ok || j.Status != job.StatusPending {
		return false, nil
	}
	j.Status = job.StatusCancelled
	j.UpdatedAt = time.Now().UTC()
	return true, nil
}

// GetDueJobs implements the job.Store interface
func (m *MockJobStore) GetDueJobs(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []*job.Job
	for _, j := range m.Jobs {
		if j.Status == job.StatusPending && !j.RunAt.After(now) {
			copied := *j
			due = append(due, &copied)
			if limit > 0 && len(due) >= limit {
				break
			}
		}
	}
	return due, nil
}

// GetProcessingJobs implements the job.Store interface
func (m *MockJobStore) GetProcessingJobs(
	ctx context.Context,
	olderThan time.Duration,
) ([]*job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	var processing []*job.Job
	for _, j := range m.Jobs {
		if j.Status != job.StatusProcessing {
			continue
		}
		if olderThan == 0 || j.UpdatedAt.Before(cutoff) {
			copied := *j
			processing = append(processing, &copied)
		}
	}
	return processing, nil
}

// StatusOf returns the current status of a stored job.
func (m *MockJobStore) StatusOf(id uuid.UUID) (job.Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.Jobs[id]
	if !ok {
		return "", false
	}
	return j.Status, true
}
