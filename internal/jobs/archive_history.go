// Package jobs contains the background job handlers run by the worker.
package jobs

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DukeRupert/careerlift/internal/repository"
	"github.com/DukeRupert/careerlift/internal/storage"
	"github.com/DukeRupert/careerlift/internal/worker"
	"github.com/google/uuid"
)

// maxArchiveBytes bounds one archived document.
const maxArchiveBytes = 1 << 20

// HistoryReader loads a single history row.
type HistoryReader interface {
	GetQueryHistory(ctx context.Context, arg repository.GetQueryHistoryParams) (repository.CareerQueryHistory, error)
}

// ArchiveHistoryHandler copies a query history row to object storage.
type ArchiveHistoryHandler struct {
	history HistoryReader
	storage storage.Storage
	logger  *slog.Logger
}

// NewArchiveHistoryHandler creates a new handler for history archive jobs.
func NewArchiveHistoryHandler(history HistoryReader, store storage.Storage, logger *slog.Logger) *ArchiveHistoryHandler {
	return &ArchiveHistoryHandler{
		history: history,
		storage: store,
		logger:  logger,
	}
}

// Type returns the job type identifier.
func (h *ArchiveHistoryHandler) Type() string {
	return worker.JobTypeArchiveHistory
}

// ArchivedHistory is the document written for each history row.
type ArchivedHistory struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	QueryType     string          `json:"query_type"`
	InputSummary  string          `json:"input_summary"`
	ModelResponse json.RawMessage `json:"model_response"`
	CreatedAt     time.Time       `json:"created_at"`
	ArchivedAt    time.Time       `json:"archived_at"`
}

// Handle writes users/{user_id}/history/{history_id}.json. The write
// overwrites, so a retried job converges on the same object.
func (h *ArchiveHistoryHandler) Handle(ctx context.Context, payload []byte) error {
	var p worker.ArchiveHistoryPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.NewPermanentError(fmt.Errorf("invalid payload: %w", err))
	}
	if p.HistoryID == uuid.Nil || p.UserID == uuid.Nil {
		return worker.NewPermanentError(fmt.Errorf("payload missing history_id or user_id"))
	}

	row, err := h.history.GetQueryHistory(ctx, repository.GetQueryHistoryParams{
		ID:     p.HistoryID,
		UserID: p.UserID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worker.NewPermanentError(fmt.Errorf("history entry not found: %s", p.HistoryID))
		}
		return fmt.Errorf("fetch history entry: %w", err)
	}

	modelResponse := row.ModelResponse
	if len(modelResponse) == 0 {
		modelResponse = json.RawMessage("null")
	}

	doc, err := json.Marshal(ArchivedHistory{
		ID:            row.ID,
		UserID:        row.UserID,
		QueryType:     row.QueryType,
		InputSummary:  row.InputSummary,
		ModelResponse: modelResponse,
		CreatedAt:     row.CreatedAt.UTC(),
		ArchivedAt:    time.Now().UTC(),
	})
	if err != nil {
		return worker.NewPermanentError(fmt.Errorf("encode archive: %w", err))
	}

	key := storage.HistoryArchiveKey(row.UserID, row.ID)
	opts := storage.JSONOptions(true)
	opts.MaxSize = maxArchiveBytes
	opts.Metadata = map[string]string{"query-type": row.QueryType}

	if err := h.storage.Put(ctx, key, bytes.NewReader(doc), opts); err != nil {
		if storage.IsPermanent(err) {
			return worker.NewPermanentError(fmt.Errorf("archive history: %w", err))
		}
		return fmt.Errorf("archive history: %w", err)
	}

	h.logger.Info("Archived history entry",
		"history_id", row.ID,
		"user_id", row.UserID,
		"key", key,
		"size", len(doc),
	)
	return nil
}
