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

// ProfileService reads and edits the career profile of a user.
type ProfileService interface {
	// Get returns the caller's profile.
	Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)

	// Upsert creates the profile row on first use and updates the editable
	// fields afterwards. Plan and usage counters are left untouched.
	Upsert(ctx context.Context, params domain.UpsertProfileParams) (*domain.Profile, error)
}

// ProfileStore is the subset of repository.Queries the profile service needs.
type ProfileStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (repository.Profile, error)
	UpsertProfile(ctx context.Context, arg repository.UpsertProfileParams) (repository.Profile, error)
}

type profileService struct {
	store  ProfileStore
	logger *slog.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(store ProfileStore, logger *slog.Logger) ProfileService {
	return &profileService{
		store:  store,
		logger: logger,
	}
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	const op = "profile.get"

	row, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "profile", userID.String())
		}
		s.logger.Error("failed to get profile", "error", err, "op", op, "user_id", userID)
		return nil, domain.Unavailable(err, op, "Failed to retrieve profile")
	}

	profile := repoProfileToDomain(row)
	return &profile, nil
}

func (s *profileService) Upsert(ctx context.Context, params domain.UpsertProfileParams) (*domain.Profile, error) {
	const op = "profile.upsert"

	params.Normalize()
	if err := params.Validate(op); err != nil {
		return nil, err
	}

	row, err := s.store.UpsertProfile(ctx, repository.UpsertProfileParams{
		ID:              params.UserID,
		Email:           toNullString(params.Email),
		FullName:        toNullString(params.FullName),
		Education:       toNullString(params.Education),
		ExperienceLevel: toNullString(params.ExperienceLevel),
		Location:        toNullString(params.Location),
		Interests:       params.Interests,
		Goals:           params.Goals,
	})
	if err != nil {
		s.logger.Error("failed to upsert profile", "error", err, "op", op, "user_id", params.UserID)
		return nil, domain.Unavailable(err, op, "Failed to save profile")
	}

	profile := repoProfileToDomain(row)
	s.logger.Info("profile saved", "user_id", profile.ID, "plan", profile.Plan)
	return &profile, nil
}
