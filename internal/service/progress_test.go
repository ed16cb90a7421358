package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/DukeRupert/careerlift/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Skills
// =============================================================================

type fakeSkillStore struct {
	rows     []repository.Skill
	replaced *repository.InsertSkillsParams
	err      error
}

func (f *fakeSkillStore) ListSkillsByUser(ctx context.Context, userID uuid.UUID) ([]repository.Skill, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []repository.Skill{}
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSkillStore) ReplaceSkills(ctx context.Context, arg repository.InsertSkillsParams) ([]repository.Skill, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.replaced = &arg

	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.UserID != arg.UserID {
			kept = append(kept, r)
		}
	}
	f.rows = kept

	out := []repository.Skill{}
	for i := range arg.Categories {
		row := repository.Skill{
			ID:        uuid.New(),
			UserID:    arg.UserID,
			Category:  arg.Categories[i],
			SkillName: arg.SkillNames[i],
			Rating:    arg.Ratings[i],
			CreatedAt: testNow,
		}
		f.rows = append(f.rows, row)
		out = append(out, row)
	}
	return out, nil
}

func TestSkillService_ReplaceSwapsWholeAssessment(t *testing.T) {
	userID := uuid.New()
	other := repository.Skill{ID: uuid.New(), UserID: uuid.New(), Category: "Soft", SkillName: "Listening", Rating: 9}
	store := &fakeSkillStore{rows: []repository.Skill{
		{ID: uuid.New(), UserID: userID, Category: "Technical", SkillName: "COBOL", Rating: 2},
		other,
	}}
	svc := NewSkillService(store, testLogger())

	skills, err := svc.Replace(context.Background(), userID, []domain.SkillRating{
		{Category: " technical ", Name: " Go ", Rating: 8},
		{Category: "BUSINESS", Name: "Negotiation", Rating: 5},
	})
	require.NoError(t, err)
	require.Len(t, skills, 2)
	assert.Equal(t, "Technical", skills[0].Category)
	assert.Equal(t, "Go", skills[0].Name)
	assert.Equal(t, 8, skills[0].Rating)
	assert.Equal(t, "Business", skills[1].Category)

	listed, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, listed, 2, "previous assessment should be gone")

	otherSkills, err := svc.List(context.Background(), other.UserID)
	require.NoError(t, err)
	assert.Len(t, otherSkills, 1, "other users are untouched")
}

func TestSkillService_ReplaceWithEmptyListClears(t *testing.T) {
	userID := uuid.New()
	store := &fakeSkillStore{rows: []repository.Skill{{ID: uuid.New(), UserID: userID, Category: "Creative", SkillName: "Design", Rating: 6}}}
	svc := NewSkillService(store, testLogger())

	skills, err := svc.Replace(context.Background(), userID, nil)
	require.NoError(t, err)
	assert.Empty(t, skills)
	require.NotNil(t, store.replaced)
	assert.Empty(t, store.replaced.Categories)
}

func TestSkillService_ReplaceValidation(t *testing.T) {
	tests := []struct {
		name    string
		ratings []domain.SkillRating
		field   string
	}{
		{"unknown category", []domain.SkillRating{{Category: "Magic", Name: "Wands", Rating: 5}}, "skills[0].category"},
		{"blank name", []domain.SkillRating{{Category: "Soft", Name: "  ", Rating: 5}}, "skills[0].skill_name"},
		{"long name", []domain.SkillRating{{Category: "Soft", Name: strings.Repeat("a", domain.MaxSkillNameLength+1), Rating: 5}}, "skills[0].skill_name"},
		{"rating too low", []domain.SkillRating{{Category: "Soft", Name: "Empathy", Rating: 0}}, "skills[0].rating"},
		{"rating too high", []domain.SkillRating{{Category: "Soft", Name: "Empathy", Rating: 11}}, "skills[0].rating"},
		{"duplicate", []domain.SkillRating{
			{Category: "Technical", Name: "SQL", Rating: 7},
			{Category: "technical", Name: "sql", Rating: 3},
		}, "skills[1].skill_name"},
		{"too many", make([]domain.SkillRating, domain.MaxSkillsPerUser+1), "skills"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeSkillStore{}
			svc := NewSkillService(store, testLogger())

			_, err := svc.Replace(context.Background(), uuid.New(), tt.ratings)

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Contains(t, verr.Fields, tt.field)
			assert.Nil(t, store.replaced, "store must not be called")
		})
	}
}

func TestSkillService_SameNameInDifferentCategories(t *testing.T) {
	svc := NewSkillService(&fakeSkillStore{}, testLogger())

	skills, err := svc.Replace(context.Background(), uuid.New(), []domain.SkillRating{
		{Category: "Technical", Name: "Writing", Rating: 6},
		{Category: "Creative", Name: "Writing", Rating: 9},
	})
	require.NoError(t, err)
	assert.Len(t, skills, 2)
}

func TestSkillService_StoreFailure(t *testing.T) {
	svc := NewSkillService(&fakeSkillStore{err: errors.New("connection refused")}, testLogger())

	_, err := svc.List(context.Background(), uuid.New())
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))

	_, err = svc.Replace(context.Background(), uuid.New(), []domain.SkillRating{{Category: "Soft", Name: "Empathy", Rating: 7}})
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
}

// =============================================================================
// Goals
// =============================================================================

type fakeGoalStore struct {
	rows         []repository.CareerGoal
	achievements []repository.CreateAchievementParams
	lastList     repository.ListCareerGoalsByUserParams
	err          error
}

func (f *fakeGoalStore) ListCareerGoalsByUser(ctx context.Context, arg repository.ListCareerGoalsByUserParams) ([]repository.CareerGoal, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastList = arg
	out := []repository.CareerGoal{}
	for i := len(f.rows) - 1; i >= 0; i-- {
		r := f.rows[i]
		if r.UserID != arg.UserID || (r.Completed && !arg.IncludeCompleted) {
			continue
		}
		if int32(len(out)) == arg.RowLimit {
			break
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeGoalStore) CreateCareerGoal(ctx context.Context, arg repository.CreateCareerGoalParams) (repository.CareerGoal, error) {
	if f.err != nil {
		return repository.CareerGoal{}, f.err
	}
	row := repository.CareerGoal{ID: uuid.New(), UserID: arg.UserID, Goal: arg.Goal, CreatedAt: testNow}
	f.rows = append(f.rows, row)
	return row, nil
}

func (f *fakeGoalStore) CompleteGoal(ctx context.Context, arg repository.CompleteGoalParams) (repository.CareerGoal, bool, error) {
	if f.err != nil {
		return repository.CareerGoal{}, false, f.err
	}
	for i, r := range f.rows {
		if r.ID != arg.ID || r.UserID != arg.UserID {
			continue
		}
		if r.Completed {
			return r, false, nil
		}
		f.rows[i].Completed = true
		f.rows[i].CompletedAt = sql.NullTime{Time: testNow, Valid: true}
		f.achievements = append(f.achievements, repository.CreateAchievementParams{
			UserID:      r.UserID,
			Title:       arg.Title,
			Description: sql.NullString{String: r.Goal, Valid: true},
			Icon:        arg.Icon,
		})
		return f.rows[i], true, nil
	}
	return repository.CareerGoal{}, false, sql.ErrNoRows
}

func (f *fakeGoalStore) DeleteCareerGoal(ctx context.Context, arg repository.DeleteCareerGoalParams) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	for i, r := range f.rows {
		if r.ID == arg.ID && r.UserID == arg.UserID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func TestClampGoalLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultGoalLimit},
		{-1, DefaultGoalLimit},
		{3, 3},
		{MaxGoalLimit, MaxGoalLimit},
		{MaxGoalLimit + 1, MaxGoalLimit},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampGoalLimit(tt.in), "ClampGoalLimit(%d)", tt.in)
	}
}

func TestGoalService_CreateAndList(t *testing.T) {
	userID := uuid.New()
	store := &fakeGoalStore{}
	svc := NewGoalService(store, testLogger())

	first, err := svc.Create(context.Background(), userID, "  Finish a SQL course ")
	require.NoError(t, err)
	assert.Equal(t, "Finish a SQL course", first.Text)
	assert.False(t, first.Completed)

	_, err = svc.Create(context.Background(), userID, "Build a portfolio")
	require.NoError(t, err)

	goals, err := svc.List(context.Background(), userID, false, 0)
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, "Build a portfolio", goals[0].Text, "newest first")
	assert.Equal(t, int32(DefaultGoalLimit), store.lastList.RowLimit)
}

func TestGoalService_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"blank", "   "},
		{"too long", strings.Repeat("x", domain.MaxGoalLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeGoalStore{}
			_, err := NewGoalService(store, testLogger()).Create(context.Background(), uuid.New(), tt.text)

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, "goal")
			assert.Empty(t, store.rows)
		})
	}
}

func TestGoalService_CompleteRecordsAchievementOnce(t *testing.T) {
	userID := uuid.New()
	store := &fakeGoalStore{}
	svc := NewGoalService(store, testLogger())

	goal, err := svc.Create(context.Background(), userID, "Get certified")
	require.NoError(t, err)

	done, err := svc.Complete(context.Background(), goal.ID, userID)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, testNow, *done.CompletedAt)

	again, err := svc.Complete(context.Background(), goal.ID, userID)
	require.NoError(t, err)
	assert.True(t, again.Completed)

	require.Len(t, store.achievements, 1)
	assert.Equal(t, "Goal achieved", store.achievements[0].Title)
	assert.Equal(t, "Get certified", store.achievements[0].Description.String)

	open, err := svc.List(context.Background(), userID, false, 0)
	require.NoError(t, err)
	assert.Empty(t, open)

	all, err := svc.List(context.Background(), userID, true, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGoalService_OwnershipIsEnforced(t *testing.T) {
	owner := uuid.New()
	store := &fakeGoalStore{}
	svc := NewGoalService(store, testLogger())

	goal, err := svc.Create(context.Background(), owner, "Learn Go")
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), goal.ID, uuid.New())
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))

	err = svc.Delete(context.Background(), goal.ID, uuid.New())
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))

	require.NoError(t, svc.Delete(context.Background(), goal.ID, owner))
	assert.Empty(t, store.rows)
}

func TestGoalService_StoreFailure(t *testing.T) {
	svc := NewGoalService(&fakeGoalStore{err: errors.New("connection refused")}, testLogger())
	ctx := context.Background()

	_, err := svc.List(ctx, uuid.New(), true, 10)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))

	_, err = svc.Create(ctx, uuid.New(), "Something")
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))

	_, err = svc.Complete(ctx, uuid.New(), uuid.New())
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))

	err = svc.Delete(ctx, uuid.New(), uuid.New())
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
}

// =============================================================================
// Dashboard
// =============================================================================

type fakeDashboardStore struct {
	counts    repository.GetDashboardCountsRow
	skills    []repository.Skill
	goals     []repository.CareerGoal
	skillArgs repository.ListTopSkillsByUserParams
	goalArgs  repository.ListCareerGoalsByUserParams
	countErr  error
}

func (f *fakeDashboardStore) GetDashboardCounts(ctx context.Context, userID uuid.UUID) (repository.GetDashboardCountsRow, error) {
	return f.counts, f.countErr
}

func (f *fakeDashboardStore) ListTopSkillsByUser(ctx context.Context, arg repository.ListTopSkillsByUserParams) ([]repository.Skill, error) {
	f.skillArgs = arg
	return f.skills, nil
}

func (f *fakeDashboardStore) ListCareerGoalsByUser(ctx context.Context, arg repository.ListCareerGoalsByUserParams) ([]repository.CareerGoal, error) {
	f.goalArgs = arg
	return f.goals, nil
}

func TestDashboardService_Get(t *testing.T) {
	userID := uuid.New()
	store := &fakeDashboardStore{
		counts: repository.GetDashboardCountsRow{CareerQueries: 12, SavedCareers: 3, Achievements: 2, SkillsAssessed: 7},
		skills: []repository.Skill{{ID: uuid.New(), UserID: userID, Category: "Technical", SkillName: "Go", Rating: 9}},
		goals:  []repository.CareerGoal{{ID: uuid.New(), UserID: userID, Goal: "Ship a side project"}},
	}
	svc := NewDashboardService(store, testLogger())

	stats, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, int64(12), stats.CareerQueries)
	assert.Equal(t, int64(3), stats.SavedCareers)
	assert.Equal(t, int64(2), stats.Achievements)
	assert.Equal(t, int64(7), stats.SkillsAssessed)
	require.Len(t, stats.TopSkills, 1)
	assert.Equal(t, "Go", stats.TopSkills[0].Name)
	require.Len(t, stats.OpenGoals, 1)

	assert.Equal(t, int32(5), store.skillArgs.Limit)
	assert.Equal(t, int32(3), store.goalArgs.RowLimit)
	assert.False(t, store.goalArgs.IncludeCompleted, "only open goals are shown")
}

func TestDashboardService_StoreFailure(t *testing.T) {
	svc := NewDashboardService(&fakeDashboardStore{countErr: errors.New("timeout")}, testLogger())

	_, err := svc.Get(context.Background(), uuid.New())
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
}
