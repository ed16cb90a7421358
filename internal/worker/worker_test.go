package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DukeRupert/careerlift/internal/repository"
	"github.com/google/uuid"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"concurrency too low", func(c *Config) { c.Concurrency = 0 }, true},
		{"concurrency too high", func(c *Config) { c.Concurrency = 101 }, true},
		{"poll interval too short", func(c *Config) { c.PollInterval = 500 * time.Millisecond }, true},
		{"job timeout too short", func(c *Config) { c.JobTimeout = 0 }, true},
		{"stale threshold below job timeout", func(c *Config) {
			c.JobTimeout = 10 * time.Minute
			c.StaleJobThreshold = 5 * time.Minute
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "permanent error",
			err:  NewPermanentError(context.Canceled),
			want: true,
		},
		{
			name: "regular error",
			err:  context.Canceled,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPermanent(tt.err); got != tt.want {
				t.Errorf("IsPermanent() = %v, want %v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Job execution
// =============================================================================

type fakeStatusStore struct {
	completed []uuid.UUID
	failed    []repository.UpdateJobFailedParams
}

func (f *fakeStatusStore) UpdateJobCompleted(ctx context.Context, id uuid.UUID) error {
	f.completed = append(f.completed, id)
	return nil
}

func (f *fakeStatusStore) UpdateJobFailed(ctx context.Context, arg repository.UpdateJobFailedParams) error {
	f.failed = append(f.failed, arg)
	return nil
}

type funcHandler struct {
	jobType string
	fn      func(ctx context.Context, payload []byte) error
}

func (h funcHandler) Type() string { return h.jobType }

func (h funcHandler) Handle(ctx context.Context, payload []byte) error { return h.fn(ctx, payload) }

func newTestWorker(t *testing.T) (*Worker, *fakeStatusStore) {
	t.Helper()
	store := &fakeStatusStore{}
	return &Worker{
		status:   store,
		handlers: make(map[string]JobHandler),
		config:   DefaultConfig(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		stopCh:   make(chan struct{}),
	}, store
}

func TestRunJob_Success(t *testing.T) {
	w, store := newTestWorker(t)

	var got ArchiveHistoryPayload
	w.Register(funcHandler{jobType: JobTypeArchiveHistory, fn: func(ctx context.Context, payload []byte) error {
		return json.Unmarshal(payload, &got)
	}})

	historyID, userID := uuid.New(), uuid.New()
	payload, _ := json.Marshal(ArchiveHistoryPayload{HistoryID: historyID, UserID: userID})
	job := repository.Job{ID: uuid.New(), JobType: JobTypeArchiveHistory, Payload: payload, MaxAttempts: 3}

	if err := w.runJob(context.Background(), job, w.logger); err != nil {
		t.Fatalf("runJob() error = %v", err)
	}
	if got.HistoryID != historyID || got.UserID != userID {
		t.Errorf("handler received %+v", got)
	}
	if len(store.completed) != 1 || store.completed[0] != job.ID {
		t.Errorf("job should be marked completed, got %v", store.completed)
	}
	if len(store.failed) != 0 {
		t.Errorf("job should not be marked failed")
	}
}

func TestRunJob_Failures(t *testing.T) {
	tests := []struct {
		name          string
		jobType       string
		err           error
		wantPermanent bool
	}{
		{"transient error retries", JobTypeArchiveHistory, errors.New("storage timeout"), false},
		{"permanent error stops", JobTypeArchiveHistory, NewPermanentError(errors.New("history row gone")), true},
		{"unknown job type is permanent", "render_pdf", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, store := newTestWorker(t)
			w.Register(funcHandler{jobType: JobTypeArchiveHistory, fn: func(ctx context.Context, payload []byte) error {
				return tt.err
			}})

			job := repository.Job{ID: uuid.New(), JobType: tt.jobType, Payload: []byte(`{}`), MaxAttempts: 3}
			if err := w.runJob(context.Background(), job, w.logger); err == nil {
				t.Fatal("runJob() should return the job error")
			}

			if len(store.completed) != 0 {
				t.Errorf("failed job should not be marked completed")
			}
			if len(store.failed) != 1 {
				t.Fatalf("expected one failure update, got %d", len(store.failed))
			}
			if store.failed[0].Permanent != tt.wantPermanent {
				t.Errorf("Permanent = %v, want %v", store.failed[0].Permanent, tt.wantPermanent)
			}
			if !store.failed[0].ErrorMessage.Valid {
				t.Errorf("error message should be recorded")
			}
		})
	}
}

func TestExecuteJob_AppliesTimeout(t *testing.T) {
	w, _ := newTestWorker(t)
	w.config.JobTimeout = 10 * time.Millisecond
	w.Register(funcHandler{jobType: JobTypeArchiveHistory, fn: func(ctx context.Context, payload []byte) error {
		<-ctx.Done()
		return ctx.Err()
	}})

	err := w.executeJob(context.Background(), repository.Job{JobType: JobTypeArchiveHistory})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

// =============================================================================
// Enqueue
// =============================================================================

type fakeJobStore struct {
	params repository.EnqueueJobParams
	err    error
}

func (f *fakeJobStore) EnqueueJob(ctx context.Context, arg repository.EnqueueJobParams) (repository.Job, error) {
	f.params = arg
	if f.err != nil {
		return repository.Job{}, f.err
	}
	return repository.Job{ID: uuid.New(), JobType: arg.JobType, Payload: arg.Payload}, nil
}

func TestEnqueuer_ArchiveHistory(t *testing.T) {
	store := &fakeJobStore{}
	historyID, userID := uuid.New(), uuid.New()

	job, err := NewEnqueuer(store).EnqueueArchiveHistory(context.Background(), historyID, userID)
	if err != nil {
		t.Fatalf("EnqueueArchiveHistory() error = %v", err)
	}
	if job.JobType != JobTypeArchiveHistory {
		t.Errorf("unexpected job type %q", job.JobType)
	}
	if store.params.Priority != PriorityLow || store.params.MaxAttempts != 5 {
		t.Errorf("unexpected priority/attempts: %d/%d", store.params.Priority, store.params.MaxAttempts)
	}

	var payload ArchiveHistoryPayload
	if err := json.Unmarshal(store.params.Payload, &payload); err != nil {
		t.Fatalf("payload should be JSON: %v", err)
	}
	if payload.HistoryID != historyID || payload.UserID != userID {
		t.Errorf("unexpected payload %+v", payload)
	}
}

func TestEnqueuer_OptionsOverrideDefaults(t *testing.T) {
	store := &fakeJobStore{}

	_, err := NewEnqueuer(store, WithMaxAttempts(1)).EnqueueArchiveHistory(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("EnqueueArchiveHistory() error = %v", err)
	}
	if store.params.MaxAttempts != 1 {
		t.Errorf("MaxAttempts = %d, want 1", store.params.MaxAttempts)
	}
}

func TestEnqueueJob_StoreError(t *testing.T) {
	store := &fakeJobStore{err: errors.New("connection refused")}

	if _, err := EnqueueJob(context.Background(), store, JobTypeArchiveHistory, struct{}{}); err == nil {
		t.Error("expected store error")
	}
}
