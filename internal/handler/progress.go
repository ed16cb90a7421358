package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/DukeRupert/careerlift/internal/service"
)

// ProgressHandler serves the skill assessment, career goals and dashboard.
type ProgressHandler struct {
	skills    service.SkillService
	goals     service.GoalService
	dashboard service.DashboardService
	logger    *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(skills service.SkillService, goals service.GoalService, dashboard service.DashboardService, logger *slog.Logger) *ProgressHandler {
	return &ProgressHandler{
		skills:    skills,
		goals:     goals,
		dashboard: dashboard,
		logger:    logger,
	}
}

// RegisterRoutes registers the progress routes.
//
// Routes:
//   - GET    /api/v1/skills                -> ListSkills
//   - PUT    /api/v1/skills                -> ReplaceSkills
//   - GET    /api/v1/goals                 -> ListGoals
//   - POST   /api/v1/goals                 -> CreateGoal
//   - POST   /api/v1/goals/{id}/complete   -> CompleteGoal
//   - DELETE /api/v1/goals/{id}            -> DeleteGoal
//   - GET    /api/v1/dashboard             -> Dashboard
func (h *ProgressHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("GET /api/v1/skills", requireUser(http.HandlerFunc(h.ListSkills)))
	mux.Handle("PUT /api/v1/skills", requireUser(http.HandlerFunc(h.ReplaceSkills)))
	mux.Handle("GET /api/v1/goals", requireUser(http.HandlerFunc(h.ListGoals)))
	mux.Handle("POST /api/v1/goals", requireUser(http.HandlerFunc(h.CreateGoal)))
	mux.Handle("POST /api/v1/goals/{id}/complete", requireUser(http.HandlerFunc(h.CompleteGoal)))
	mux.Handle("DELETE /api/v1/goals/{id}", requireUser(http.HandlerFunc(h.DeleteGoal)))
	mux.Handle("GET /api/v1/dashboard", requireUser(http.HandlerFunc(h.Dashboard)))
}

// SkillResponse is the JSON shape of one assessed skill.
type SkillResponse struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Name      string `json:"skill_name"`
	Rating    int    `json:"rating"`
	CreatedAt string `json:"created_at"`
}

// SkillRatingRequest is one entry of PUT /api/v1/skills.
type SkillRatingRequest struct {
	Category string `json:"category"`
	Name     string `json:"skill_name"`
	Rating   int    `json:"rating"`
}

// ReplaceSkillsRequest is the body of PUT /api/v1/skills.
type ReplaceSkillsRequest struct {
	Skills []SkillRatingRequest `json:"skills"`
}

// GoalResponse is the JSON shape of a career goal.
type GoalResponse struct {
	ID          string  `json:"id"`
	Goal        string  `json:"goal"`
	Completed   bool    `json:"completed"`
	CompletedAt *string `json:"completed_at"`
	CreatedAt   string  `json:"created_at"`
}

// CreateGoalRequest is the body of POST /api/v1/goals.
type CreateGoalRequest struct {
	Goal string `json:"goal"`
}

// DashboardResponse is the body of GET /api/v1/dashboard.
type DashboardResponse struct {
	CareerQueries  int64           `json:"career_queries"`
	SavedCareers   int64           `json:"saved_careers"`
	Achievements   int64           `json:"achievements"`
	SkillsAssessed int64           `json:"skills_assessed"`
	TopSkills      []SkillResponse `json:"top_skills"`
	OpenGoals      []GoalResponse  `json:"open_goals"`
}

func toSkillResponses(skills []domain.Skill) []SkillResponse {
	resp := make([]SkillResponse, 0, len(skills))
	for _, s := range skills {
		resp = append(resp, SkillResponse{
			ID:        s.ID.String(),
			Category:  s.Category,
			Name:      s.Name,
			Rating:    s.Rating,
			CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp
}

func toGoalResponse(g domain.Goal) GoalResponse {
	resp := GoalResponse{
		ID:        g.ID.String(),
		Goal:      g.Text,
		Completed: g.Completed,
		CreatedAt: g.CreatedAt.UTC().Format(time.RFC3339),
	}
	if g.CompletedAt != nil {
		at := g.CompletedAt.UTC().Format(time.RFC3339)
		resp.CompletedAt = &at
	}
	return resp
}

func toGoalResponses(goals []domain.Goal) []GoalResponse {
	resp := make([]GoalResponse, 0, len(goals))
	for _, g := range goals {
		resp = append(resp, toGoalResponse(g))
	}
	return resp
}

// ListSkills returns the caller's current assessment.
func (h *ProgressHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	const op = "handler.skill.list"

	principal, err := principalFrom(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	skills, err := h.skills.List(r.Context(), principal.UserID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"skills":     toSkillResponses(skills),
		"categories": domain.SkillCategories,
	})
}

// ReplaceSkills stores a full assessment in place of the previous one.
func (h *ProgressHandler) ReplaceSkills(w http.ResponseWriter, r *http.Request) {
	const op = "handler.skill.replace"

	principal, err := principalFrom(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req ReplaceSkillsRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	ratings := make([]domain.SkillRating, len(req.Skills))
	for i, s := range req.Skills {
		ratings[i] = domain.SkillRating{Category: s.Category, Name: s.Name, Rating: s.Rating}
	}

	skills, err := h.skills.Replace(r.Context(), principal.UserID, ratings)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"skills": toSkillResponses(skills)})
}

// ListGoals returns the caller's goals. Only open goals are listed unless
// status=all is given.
func (h *ProgressHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	const op = "handler.goal.list"

	principal, err := principalFrom(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var includeCompleted bool
	switch status := r.URL.Query().Get("status"); status {
	case "", "open":
	case "all":
		includeCompleted = true
	default:
		ErrorResponse(w, r, h.logger, domain.NewValidationError(op, "status", "must be open or all"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	goals, err := h.goals.List(r.Context(), principal.UserID, includeCompleted, limit)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"goals": toGoalResponses(goals)})
}

// CreateGoal adds an open goal.
func (h *ProgressHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	const op = "handler.goal.create"

	principal, err := principalFrom(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req CreateGoalRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	goal, err := h.goals.Create(r.Context(), principal.UserID, req.Goal)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toGoalResponse(*goal))
}

// CompleteGoal marks a goal owned by the caller as done.
func (h *ProgressHandler) CompleteGoal(w http.ResponseWriter, r *http.Request) {
	const op = "handler.goal.complete"

	principal, err := principalFrom(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	id, err := pathUUID(r, "id", op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	goal, err := h.goals.Complete(r.Context(), id, principal.UserID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toGoalResponse(*goal))
}

// DeleteGoal removes a goal owned by the caller.
func (h *ProgressHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	const op = "handler.goal.delete"

	principal, err := principalFrom(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	id, err := pathUUID(r, "id", op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.goals.Delete(r.Context(), id, principal.UserID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Dashboard returns the caller's progress overview.
func (h *ProgressHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	const op = "handler.dashboard.get"

	principal, err := principalFrom(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	stats, err := h.dashboard.Get(r.Context(), principal.UserID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, DashboardResponse{
		CareerQueries:  stats.CareerQueries,
		SavedCareers:   stats.SavedCareers,
		Achievements:   stats.Achievements,
		SkillsAssessed: stats.SkillsAssessed,
		TopSkills:      toSkillResponses(stats.TopSkills),
		OpenGoals:      toGoalResponses(stats.OpenGoals),
	})
}
