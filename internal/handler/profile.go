package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/DukeRupert/careerlift/internal/service"
)

// ProfileHandler serves the caller's career profile.
type ProfileHandler struct {
	profiles service.ProfileService
	logger   *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// RegisterRoutes registers the profile routes.
func (h *ProfileHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("GET /api/v1/profile", requireUser(http.HandlerFunc(h.Get)))
	mux.Handle("PUT /api/v1/profile", requireUser(http.HandlerFunc(h.Put)))
}

// ProfileResponse is the JSON shape of a profile.
type ProfileResponse struct {
	ID              string   `json:"id"`
	Email           string   `json:"email"`
	FullName        string   `json:"fullName"`
	Education       string   `json:"education"`
	ExperienceLevel string   `json:"experienceLevel"`
	Location        string   `json:"location"`
	Interests       []string `json:"interests"`
	Goals           []string `json:"goals"`
	Plan            string   `json:"plan"`
	QueriesToday    int      `json:"queriesToday"`
	HasBilling      bool     `json:"hasBilling"`
	UpdatedAt       string   `json:"updatedAt"`
}

// ProfileRequest is the body of PUT /api/v1/profile.
type ProfileRequest struct {
	FullName        string   `json:"fullName"`
	Education       string   `json:"education"`
	ExperienceLevel string   `json:"experienceLevel"`
	Location        string   `json:"location"`
	Interests       []string `json:"interests"`
	Goals           []string `json:"goals"`
}

func toProfileResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:              p.ID.String(),
		Email:           p.Email,
		FullName:        p.FullName,
		Education:       p.Education,
		ExperienceLevel: p.ExperienceLevel,
		Location:        p.Location,
		Interests:       nonNil(p.Interests),
		Goals:           nonNil(p.Goals),
		Plan:            string(p.Plan),
		QueriesToday:    p.QueriesToday,
		HasBilling:      p.StripeCustomerID != "",
		UpdatedAt:       p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Get returns the caller's profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handler.profile.get"

	principal, err := principalFrom(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	profile, err := h.profiles.Get(r.Context(), principal.UserID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// Put creates or updates the caller's profile. The email always comes from
// the verified token.
func (h *ProfileHandler) Put(w http.ResponseWriter, r *http.Request) {
	const op = "handler.profile.put"

	principal, err := principalFrom(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req ProfileRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	profile, err := h.profiles.Upsert(r.Context(), domain.UpsertProfileParams{
		UserID:          principal.UserID,
		Email:           principal.Email,
		FullName:        req.FullName,
		Education:       req.Education,
		ExperienceLevel: req.ExperienceLevel,
		Location:        req.Location,
		Interests:       req.Interests,
		Goals:           req.Goals,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}
