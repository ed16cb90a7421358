package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/google/uuid"
)

type fakeSkillService struct {
	skills   []domain.Skill
	replaced []domain.SkillRating
	err      error
}

func (f *fakeSkillService) List(ctx context.Context, userID uuid.UUID) ([]domain.Skill, error) {
	return f.skills, f.err
}

func (f *fakeSkillService) Replace(ctx context.Context, userID uuid.UUID, ratings []domain.SkillRating) ([]domain.Skill, error) {
	f.replaced = ratings
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Skill, len(ratings))
	for i, r := range ratings {
		out[i] = domain.Skill{ID: uuid.New(), UserID: userID, Category: r.Category, Name: r.Name, Rating: r.Rating, CreatedAt: time.Now()}
	}
	return out, nil
}

type fakeGoalService struct {
	goals            []domain.Goal
	includeCompleted bool
	created          string
	completed        uuid.UUID
	deleted          uuid.UUID
	err              error
}

func (f *fakeGoalService) List(ctx context.Context, userID uuid.UUID, includeCompleted bool, limit int) ([]domain.Goal, error) {
	f.includeCompleted = includeCompleted
	return f.goals, f.err
}

func (f *fakeGoalService) Create(ctx context.Context, userID uuid.UUID, text string) (*domain.Goal, error) {
	f.created = text
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Goal{ID: uuid.New(), UserID: userID, Text: text, CreatedAt: time.Now()}, nil
}

func (f *fakeGoalService) Complete(ctx context.Context, id, userID uuid.UUID) (*domain.Goal, error) {
	f.completed = id
	if f.err != nil {
		return nil, f.err
	}
	at := time.Date(2025, 3, 14, 15, 30, 0, 0, time.UTC)
	return &domain.Goal{ID: id, UserID: userID, Text: "Done", Completed: true, CompletedAt: &at, CreatedAt: at}, nil
}

func (f *fakeGoalService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	f.deleted = id
	return f.err
}

type fakeDashboardService struct {
	stats *domain.DashboardStats
	err   error
}

func (f *fakeDashboardService) Get(ctx context.Context, userID uuid.UUID) (*domain.DashboardStats, error) {
	return f.stats, f.err
}

func newProgressMux(skills *fakeSkillService, goals *fakeGoalService, dash *fakeDashboardService) *http.ServeMux {
	mux := http.NewServeMux()
	NewProgressHandler(skills, goals, dash, discardLogger()).RegisterRoutes(mux, passThrough)
	return mux
}

// =============================================================================
// Skills
// =============================================================================

func TestSkills_List(t *testing.T) {
	skills := &fakeSkillService{skills: []domain.Skill{{ID: uuid.New(), Category: "Technical", Name: "Go", Rating: 8}}}
	rec := httptest.NewRecorder()
	newProgressMux(skills, &fakeGoalService{}, &fakeDashboardService{}).ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/skills", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Skills     []SkillResponse `json:"skills"`
		Categories []string        `json:"categories"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Skills) != 1 || resp.Skills[0].Name != "Go" || resp.Skills[0].Rating != 8 {
		t.Errorf("unexpected skills %+v", resp.Skills)
	}
	if len(resp.Categories) != 4 {
		t.Errorf("expected 4 categories, got %v", resp.Categories)
	}
}

func TestSkills_Replace(t *testing.T) {
	skills := &fakeSkillService{}
	body := `{"skills":[{"category":"Technical","skill_name":"SQL","rating":7},{"category":"Soft","skill_name":"Mentoring","rating":9}]}`
	rec := httptest.NewRecorder()
	newProgressMux(skills, &fakeGoalService{}, &fakeDashboardService{}).ServeHTTP(rec, authedRequest(http.MethodPut, "/api/v1/skills", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(skills.replaced) != 2 || skills.replaced[1].Name != "Mentoring" || skills.replaced[1].Rating != 9 {
		t.Errorf("unexpected ratings %+v", skills.replaced)
	}
}

func TestSkills_ReplaceErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"validation", `{"skills":[{"category":"Magic","skill_name":"x","rating":5}]}`,
			domain.NewValidationError("skill.replace", "skills[0].category", "must be one of Technical, Soft, Creative, Business"), http.StatusBadRequest},
		{"bad json", `{"skills":`, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newProgressMux(&fakeSkillService{err: tt.err}, &fakeGoalService{}, &fakeDashboardService{}).ServeHTTP(rec,
				authedRequest(http.MethodPut, "/api/v1/skills", tt.body))

			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

// =============================================================================
// Goals
// =============================================================================

func TestGoals_ListStatusFilter(t *testing.T) {
	tests := []struct {
		query   string
		status  int
		include bool
	}{
		{"", http.StatusOK, false},
		{"?status=open", http.StatusOK, false},
		{"?status=all", http.StatusOK, true},
		{"?status=done", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			goals := &fakeGoalService{goals: []domain.Goal{{ID: uuid.New(), Text: "Learn Go"}}}
			rec := httptest.NewRecorder()
			newProgressMux(&fakeSkillService{}, goals, &fakeDashboardService{}).ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/goals"+tt.query, ""))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if goals.includeCompleted != tt.include {
				t.Errorf("includeCompleted = %v, want %v", goals.includeCompleted, tt.include)
			}
		})
	}
}

func TestGoals_Create(t *testing.T) {
	goals := &fakeGoalService{}
	rec := httptest.NewRecorder()
	newProgressMux(&fakeSkillService{}, goals, &fakeDashboardService{}).ServeHTTP(rec,
		authedRequest(http.MethodPost, "/api/v1/goals", `{"goal":"Finish the AWS course"}`))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp GoalResponse
	decodeBody(t, rec, &resp)
	if resp.Goal != "Finish the AWS course" || resp.Completed || resp.CompletedAt != nil {
		t.Errorf("unexpected goal %+v", resp)
	}
}

func TestGoals_Complete(t *testing.T) {
	id := uuid.New()
	goals := &fakeGoalService{}
	rec := httptest.NewRecorder()
	newProgressMux(&fakeSkillService{}, goals, &fakeDashboardService{}).ServeHTTP(rec,
		authedRequest(http.MethodPost, "/api/v1/goals/"+id.String()+"/complete", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if goals.completed != id {
		t.Errorf("completed %s, want %s", goals.completed, id)
	}
	var resp GoalResponse
	decodeBody(t, rec, &resp)
	if !resp.Completed || resp.CompletedAt == nil || *resp.CompletedAt != "2025-03-14T15:30:00Z" {
		t.Errorf("unexpected goal %+v", resp)
	}
}

func TestGoals_CompleteAndDeleteErrors(t *testing.T) {
	id := uuid.New()
	notFound := domain.NotFound("goal.complete", "goal", id.String())

	tests := []struct {
		name   string
		method string
		path   string
		err    error
		status int
	}{
		{"complete not owned", http.MethodPost, "/api/v1/goals/" + id.String() + "/complete", notFound, http.StatusNotFound},
		{"complete bad id", http.MethodPost, "/api/v1/goals/nope/complete", nil, http.StatusBadRequest},
		{"delete ok", http.MethodDelete, "/api/v1/goals/" + id.String(), nil, http.StatusNoContent},
		{"delete not owned", http.MethodDelete, "/api/v1/goals/" + id.String(), notFound, http.StatusNotFound},
		{"delete bad id", http.MethodDelete, "/api/v1/goals/nope", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newProgressMux(&fakeSkillService{}, &fakeGoalService{err: tt.err}, &fakeDashboardService{}).ServeHTTP(rec,
				authedRequest(tt.method, tt.path, ""))

			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

// =============================================================================
// Dashboard
// =============================================================================

func TestDashboard_Get(t *testing.T) {
	dash := &fakeDashboardService{stats: &domain.DashboardStats{
		CareerQueries:  12,
		SavedCareers:   3,
		Achievements:   1,
		SkillsAssessed: 6,
		TopSkills:      []domain.Skill{{ID: uuid.New(), Category: "Technical", Name: "Go", Rating: 9}},
	}}
	rec := httptest.NewRecorder()
	newProgressMux(&fakeSkillService{}, &fakeGoalService{}, dash).ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/dashboard", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp DashboardResponse
	decodeBody(t, rec, &resp)
	if resp.CareerQueries != 12 || resp.SavedCareers != 3 || resp.Achievements != 1 || resp.SkillsAssessed != 6 {
		t.Errorf("unexpected counts %+v", resp)
	}
	if len(resp.TopSkills) != 1 || resp.OpenGoals == nil {
		t.Errorf("lists should be present, got %+v", resp)
	}
}

func TestDashboard_Unavailable(t *testing.T) {
	dash := &fakeDashboardService{err: domain.Unavailable(context.DeadlineExceeded, "dashboard.get", "Failed to load dashboard")}
	rec := httptest.NewRecorder()
	newProgressMux(&fakeSkillService{}, &fakeGoalService{}, dash).ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/dashboard", ""))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}
