package service

import (
	"context"
	"log/slog"

	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/DukeRupert/careerlift/internal/repository"
	"github.com/google/uuid"
)

const (
	dashboardTopSkills = 5
	dashboardOpenGoals = 3
)

// DashboardService aggregates the progress overview.
type DashboardService interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.DashboardStats, error)
}

// DashboardStore is the subset of repository.Queries the service needs.
type DashboardStore interface {
	GetDashboardCounts(ctx context.Context, userID uuid.UUID) (repository.GetDashboardCountsRow, error)
	ListTopSkillsByUser(ctx context.Context, arg repository.ListTopSkillsByUserParams) ([]repository.Skill, error)
	ListCareerGoalsByUser(ctx context.Context, arg repository.ListCareerGoalsByUserParams) ([]repository.CareerGoal, error)
}

type dashboardService struct {
	store  DashboardStore
	logger *slog.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(store DashboardStore, logger *slog.Logger) DashboardService {
	return &dashboardService{
		store:  store,
		logger: logger,
	}
}

func (s *dashboardService) Get(ctx context.Context, userID uuid.UUID) (*domain.DashboardStats, error) {
	const op = "dashboard.get"

	counts, err := s.store.GetDashboardCounts(ctx, userID)
	if err != nil {
		s.logger.Error("failed to count dashboard stats", "error", err, "op", op, "user_id", userID)
		return nil, domain.Unavailable(err, op, "Failed to load dashboard")
	}

	skills, err := s.store.ListTopSkillsByUser(ctx, repository.ListTopSkillsByUserParams{
		UserID: userID,
		Limit:  dashboardTopSkills,
	})
	if err != nil {
		s.logger.Error("failed to list top skills", "error", err, "op", op, "user_id", userID)
		return nil, domain.Unavailable(err, op, "Failed to load dashboard")
	}

	goals, err := s.store.ListCareerGoalsByUser(ctx, repository.ListCareerGoalsByUserParams{
		UserID:   userID,
		RowLimit: dashboardOpenGoals,
	})
	if err != nil {
		s.logger.Error("failed to list open goals", "error", err, "op", op, "user_id", userID)
		return nil, domain.Unavailable(err, op, "Failed to load dashboard")
	}

	return &domain.DashboardStats{
		CareerQueries:  counts.CareerQueries,
		SavedCareers:   counts.SavedCareers,
		Achievements:   counts.Achievements,
		SkillsAssessed: counts.SkillsAssessed,
		TopSkills:      repoSkillsToDomain(skills),
		OpenGoals:      repoGoalsToDomain(goals),
	}, nil
}
