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

const (
	DefaultGoalLimit = 50
	MaxGoalLimit     = 200

	goalAchievementTitle = "Goal achieved"
	goalAchievementIcon  = "target"
)

// GoalService manages the user's career goals.
type GoalService interface {
	// List returns goals newest first. Completed goals are skipped unless
	// includeCompleted is set.
	List(ctx context.Context, userID uuid.UUID, includeCompleted bool, limit int) ([]domain.Goal, error)
	Create(ctx context.Context, userID uuid.UUID, text string) (*domain.Goal, error)
	// Complete marks the goal done and records an achievement the first
	// time. Completing a finished goal returns it unchanged.
	Complete(ctx context.Context, id, userID uuid.UUID) (*domain.Goal, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// GoalStore is the subset of repository.Store the service needs.
type GoalStore interface {
	ListCareerGoalsByUser(ctx context.Context, arg repository.ListCareerGoalsByUserParams) ([]repository.CareerGoal, error)
	CreateCareerGoal(ctx context.Context, arg repository.CreateCareerGoalParams) (repository.CareerGoal, error)
	CompleteGoal(ctx context.Context, arg repository.CompleteGoalParams) (repository.CareerGoal, bool, error)
	DeleteCareerGoal(ctx context.Context, arg repository.DeleteCareerGoalParams) (int64, error)
}

type goalService struct {
	store  GoalStore
	logger *slog.Logger
}

// NewGoalService creates a new GoalService.
func NewGoalService(store GoalStore, logger *slog.Logger) GoalService {
	return &goalService{
		store:  store,
		logger: logger,
	}
}

// ClampGoalLimit applies the default and upper bound to a requested page size.
func ClampGoalLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultGoalLimit
	case limit > MaxGoalLimit:
		return MaxGoalLimit
	}
	return limit
}

func (s *goalService) List(ctx context.Context, userID uuid.UUID, includeCompleted bool, limit int) ([]domain.Goal, error) {
	const op = "goal.list"

	rows, err := s.store.ListCareerGoalsByUser(ctx, repository.ListCareerGoalsByUserParams{
		UserID:           userID,
		IncludeCompleted: includeCompleted,
		RowLimit:         int32(ClampGoalLimit(limit)),
	})
	if err != nil {
		s.logger.Error("failed to list goals", "error", err, "op", op, "user_id", userID)
		return nil, domain.Unavailable(err, op, "Failed to list goals")
	}
	return repoGoalsToDomain(rows), nil
}

func (s *goalService) Create(ctx context.Context, userID uuid.UUID, text string) (*domain.Goal, error) {
	const op = "goal.create"

	text, err := domain.NormalizeGoal(op, text)
	if err != nil {
		return nil, err
	}

	row, err := s.store.CreateCareerGoal(ctx, repository.CreateCareerGoalParams{UserID: userID, Goal: text})
	if err != nil {
		s.logger.Error("failed to create goal", "error", err, "op", op, "user_id", userID)
		return nil, domain.Unavailable(err, op, "Failed to create goal")
	}

	goal := repoGoalToDomain(row)
	s.logger.Info("goal created", "goal_id", goal.ID, "user_id", userID)
	return &goal, nil
}

func (s *goalService) Complete(ctx context.Context, id, userID uuid.UUID) (*domain.Goal, error) {
	const op = "goal.complete"

	row, completedNow, err := s.store.CompleteGoal(ctx, repository.CompleteGoalParams{
		ID:     id,
		UserID: userID,
		Title:  goalAchievementTitle,
		Icon:   toNullString(goalAchievementIcon),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound(op, "goal", id.String())
	}
	if err != nil {
		s.logger.Error("failed to complete goal", "error", err, "op", op, "goal_id", id)
		return nil, domain.Unavailable(err, op, "Failed to complete goal")
	}

	if completedNow {
		s.logger.Info("goal completed", "goal_id", id, "user_id", userID)
	}
	goal := repoGoalToDomain(row)
	return &goal, nil
}

func (s *goalService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	const op = "goal.delete"

	n, err := s.store.DeleteCareerGoal(ctx, repository.DeleteCareerGoalParams{ID: id, UserID: userID})
	if err != nil {
		s.logger.Error("failed to delete goal", "error", err, "op", op, "goal_id", id)
		return domain.Unavailable(err, op, "Failed to delete goal")
	}
	if n == 0 {
		return domain.NotFound(op, "goal", id.String())
	}
	return nil
}
