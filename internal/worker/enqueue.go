package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DukeRupert/careerlift/internal/repository"
	"github.com/google/uuid"
)

// Job type constants. These must match the JobHandler.Type() values.
const (
	JobTypeArchiveHistory = "archive_history"
)

// Priority constants for job scheduling
const (
	PriorityLow    = 0
	PriorityNormal = 10
	PriorityHigh   = 20
)

// ArchiveHistoryPayload is the payload for history archive jobs.
type ArchiveHistoryPayload struct {
	HistoryID uuid.UUID `json:"history_id"`
	UserID    uuid.UUID `json:"user_id"`
}

// JobStore inserts rows into the jobs table.
type JobStore interface {
	EnqueueJob(ctx context.Context, arg repository.EnqueueJobParams) (repository.Job, error)
}

// EnqueueOption is a functional option for customizing job enqueue parameters.
type EnqueueOption func(*repository.EnqueueJobParams)

// WithPriority sets the job priority.
func WithPriority(priority int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.Priority = priority
	}
}

// WithMaxAttempts sets the maximum number of retry attempts.
func WithMaxAttempts(attempts int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.MaxAttempts = attempts
	}
}

// WithDelay schedules the job to run after a delay.
func WithDelay(delay time.Duration) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.ScheduledAt = time.Now().Add(delay)
	}
}

// EnqueueJob marshals payload and inserts a pending job.
func EnqueueJob(
	ctx context.Context,
	store JobStore,
	jobType string,
	payload interface{},
	opts ...EnqueueOption,
) (repository.Job, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return repository.Job{}, fmt.Errorf("marshal payload: %w", err)
	}

	params := repository.EnqueueJobParams{
		JobType:     jobType,
		Payload:     payloadJSON,
		Priority:    PriorityNormal,
		MaxAttempts: 3,
		ScheduledAt: time.Now(),
	}
	for _, opt := range opts {
		opt(&params)
	}

	job, err := store.EnqueueJob(ctx, params)
	if err != nil {
		return repository.Job{}, fmt.Errorf("enqueue job: %w", err)
	}

	return job, nil
}

// Enqueuer schedules the application's background jobs.
type Enqueuer struct {
	store JobStore
	opts  []EnqueueOption
}

// NewEnqueuer creates an Enqueuer. opts apply to every job it schedules.
func NewEnqueuer(store JobStore, opts ...EnqueueOption) *Enqueuer {
	return &Enqueuer{store: store, opts: opts}
}

// EnqueueArchiveHistory schedules the copy of one history row to object
// storage. Archiving is housekeeping, so it runs at low priority.
func (e *Enqueuer) EnqueueArchiveHistory(ctx context.Context, historyID, userID uuid.UUID) (repository.Job, error) {
	opts := append([]EnqueueOption{WithPriority(PriorityLow), WithMaxAttempts(5)}, e.opts...)
	return EnqueueJob(ctx, e.store, JobTypeArchiveHistory, ArchiveHistoryPayload{
		HistoryID: historyID,
		UserID:    userID,
	}, opts...)
}
