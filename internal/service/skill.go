package service

import (
	"context"
	"log/slog"

	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/DukeRupert/careerlift/internal/repository"
	"github.com/google/uuid"
)

// SkillService manages the user's skill self-assessment.
type SkillService interface {
	List(ctx context.Context, userID uuid.UUID) ([]domain.Skill, error)
	// Replace swaps the whole assessment. An empty list clears it.
	Replace(ctx context.Context, userID uuid.UUID, ratings []domain.SkillRating) ([]domain.Skill, error)
}

// SkillStore is the subset of repository.Store the service needs.
type SkillStore interface {
	ListSkillsByUser(ctx context.Context, userID uuid.UUID) ([]repository.Skill, error)
	ReplaceSkills(ctx context.Context, arg repository.InsertSkillsParams) ([]repository.Skill, error)
}

type skillService struct {
	store  SkillStore
	logger *slog.Logger
}

// NewSkillService creates a new SkillService.
func NewSkillService(store SkillStore, logger *slog.Logger) SkillService {
	return &skillService{
		store:  store,
		logger: logger,
	}
}

func (s *skillService) List(ctx context.Context, userID uuid.UUID) ([]domain.Skill, error) {
	const op = "skill.list"

	rows, err := s.store.ListSkillsByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list skills", "error", err, "op", op, "user_id", userID)
		return nil, domain.Unavailable(err, op, "Failed to list skills")
	}
	return repoSkillsToDomain(rows), nil
}

func (s *skillService) Replace(ctx context.Context, userID uuid.UUID, ratings []domain.SkillRating) ([]domain.Skill, error) {
	const op = "skill.replace"

	ratings, err := domain.ValidateSkillRatings(op, ratings)
	if err != nil {
		return nil, err
	}

	arg := repository.InsertSkillsParams{
		UserID:     userID,
		Categories: make([]string, len(ratings)),
		SkillNames: make([]string, len(ratings)),
		Ratings:    make([]int32, len(ratings)),
	}
	for i, r := range ratings {
		arg.Categories[i] = r.Category
		arg.SkillNames[i] = r.Name
		arg.Ratings[i] = int32(r.Rating)
	}

	rows, err := s.store.ReplaceSkills(ctx, arg)
	if err != nil {
		s.logger.Error("failed to replace skills", "error", err, "op", op, "user_id", userID)
		return nil, domain.Unavailable(err, op, "Failed to save skills")
	}

	s.logger.Info("skills assessed", "user_id", userID, "count", len(rows))
	return repoSkillsToDomain(rows), nil
}
