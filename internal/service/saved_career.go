package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/DukeRupert/careerlift/internal/repository"
	"github.com/google/uuid"
)

const maxSavedCareerTitleLength = 200

// SavedCareerService manages careers a user bookmarked from guidance results.
type SavedCareerService interface {
	List(ctx context.Context, userID uuid.UUID) ([]domain.SavedCareer, error)
	Save(ctx context.Context, userID uuid.UUID, title string, content json.RawMessage) (*domain.SavedCareer, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// SavedCareerStore is the subset of repository.Queries the service needs.
type SavedCareerStore interface {
	ListSavedCareersByUser(ctx context.Context, userID uuid.UUID) ([]repository.SavedCareer, error)
	CreateSavedCareer(ctx context.Context, arg repository.CreateSavedCareerParams) (repository.SavedCareer, error)
	DeleteSavedCareer(ctx context.Context, arg repository.DeleteSavedCareerParams) (int64, error)
}

type savedCareerService struct {
	store  SavedCareerStore
	logger *slog.Logger
}

// NewSavedCareerService creates a new SavedCareerService.
func NewSavedCareerService(store SavedCareerStore, logger *slog.Logger) SavedCareerService {
	return &savedCareerService{
		store:  store,
		logger: logger,
	}
}

func (s *savedCareerService) List(ctx context.Context, userID uuid.UUID) ([]domain.SavedCareer, error) {
	const op = "saved_career.list"

	rows, err := s.store.ListSavedCareersByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list saved careers", "error", err, "op", op, "user_id", userID)
		return nil, domain.Unavailable(err, op, "Failed to list saved careers")
	}

	careers := make([]domain.SavedCareer, len(rows))
	for i, row := range rows {
		careers[i] = repoSavedCareerToDomain(row)
	}
	return careers, nil
}

func (s *savedCareerService) Save(ctx context.Context, userID uuid.UUID, title string, content json.RawMessage) (*domain.SavedCareer, error) {
	const op = "saved_career.save"

	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return nil, domain.NewValidationError(op, "title", "is required")
	case utf8.RuneCountInString(title) > maxSavedCareerTitleLength:
		return nil, domain.NewValidationError(op, "title", "is too long")
	}
	if len(content) > 0 && !json.Valid(content) {
		return nil, domain.NewValidationError(op, "content", "must be valid JSON")
	}

	row, err := s.store.CreateSavedCareer(ctx, repository.CreateSavedCareerParams{
		UserID:  userID,
		Title:   title,
		Content: toNullRawMessage(content),
	})
	if err != nil {
		s.logger.Error("failed to save career", "error", err, "op", op, "user_id", userID)
		return nil, domain.Unavailable(err, op, "Failed to save career")
	}

	career := repoSavedCareerToDomain(row)
	s.logger.Info("career saved", "saved_career_id", career.ID, "user_id", userID)
	return &career, nil
}

func (s *savedCareerService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	const op = "saved_career.delete"

	n, err := s.store.DeleteSavedCareer(ctx, repository.DeleteSavedCareerParams{ID: id, UserID: userID})
	if err != nil {
		s.logger.Error("failed to delete saved career", "error", err, "op", op, "saved_career_id", id)
		return domain.Unavailable(err, op, "Failed to delete saved career")
	}
	if n == 0 {
		return domain.NotFound(op, "saved career", id.String())
	}
	return nil
}
