package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/DukeRupert/careerlift/internal/repository"
	"github.com/google/uuid"
)

// History listing bounds.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// HistoryService reads a user's past guidance queries.
type HistoryService interface {
	// List returns the most recent entries, newest first, and the total
	// number of entries the user has.
	List(ctx context.Context, userID uuid.UUID, limit int) ([]domain.HistoryEntry, int64, error)

	// Get returns one entry owned by the user.
	Get(ctx context.Context, id, userID uuid.UUID) (*domain.HistoryEntry, error)
}

// HistoryStore is the subset of repository.Queries the history service needs.
type HistoryStore interface {
	ListQueryHistoryByUser(ctx context.Context, arg repository.ListQueryHistoryByUserParams) ([]repository.CareerQueryHistory, error)
	CountQueryHistoryByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	GetQueryHistory(ctx context.Context, arg repository.GetQueryHistoryParams) (repository.CareerQueryHistory, error)
}

type historyService struct {
	store  HistoryStore
	logger *slog.Logger
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(store HistoryStore, logger *slog.Logger) HistoryService {
	return &historyService{
		store:  store,
		logger: logger,
	}
}

// ClampHistoryLimit applies the default to non-positive limits and caps
// large ones.
func ClampHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}

func (s *historyService) List(ctx context.Context, userID uuid.UUID, limit int) ([]domain.HistoryEntry, int64, error) {
	const op = "history.list"

	rows, err := s.store.ListQueryHistoryByUser(ctx, repository.ListQueryHistoryByUserParams{
		UserID: userID,
		Limit:  int32(ClampHistoryLimit(limit)),
	})
	if err != nil {
		s.logger.Error("failed to list query history", "error", err, "op", op, "user_id", userID)
		return nil, 0, domain.Unavailable(err, op, "Failed to list history")
	}

	total, err := s.store.CountQueryHistoryByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to count query history", "error", err, "op", op, "user_id", userID)
		return nil, 0, domain.Unavailable(err, op, "Failed to list history")
	}

	entries := make([]domain.HistoryEntry, len(rows))
	for i, row := range rows {
		entries[i] = repoHistoryToDomain(row)
	}
	return entries, total, nil
}

func (s *historyService) Get(ctx context.Context, id, userID uuid.UUID) (*domain.HistoryEntry, error) {
	const op = "history.get"

	row, err := s.store.GetQueryHistory(ctx, repository.GetQueryHistoryParams{ID: id, UserID: userID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "history entry", id.String())
		}
		s.logger.Error("failed to get query history", "error", err, "op", op, "history_id", id)
		return nil, domain.Unavailable(err, op, "Failed to retrieve history entry")
	}

	entry := repoHistoryToDomain(row)
	return &entry, nil
}
