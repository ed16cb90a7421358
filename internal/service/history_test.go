package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/DukeRupert/careerlift/internal/repository"
	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistoryStore struct {
	rows      []repository.CareerQueryHistory
	lastLimit int32
	err       error
}

func (f *fakeHistoryStore) ListQueryHistoryByUser(ctx context.Context, arg repository.ListQueryHistoryByUserParams) ([]repository.CareerQueryHistory, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastLimit = arg.Limit
	var out []repository.CareerQueryHistory
	for _, r := range f.rows {
		if r.UserID == arg.UserID && int32(len(out)) < arg.Limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeHistoryStore) CountQueryHistoryByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, r := range f.rows {
		if r.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeHistoryStore) GetQueryHistory(ctx context.Context, arg repository.GetQueryHistoryParams) (repository.CareerQueryHistory, error) {
	for _, r := range f.rows {
		if r.ID == arg.ID && r.UserID == arg.UserID {
			return r, nil
		}
	}
	return repository.CareerQueryHistory{}, sql.ErrNoRows
}

func TestClampHistoryLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 20},
		{-3, 20},
		{1, 1},
		{25, 25},
		{100, 100},
		{MaxHistoryLimit + 1, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampHistoryLimit(tt.in), "limit %d", tt.in)
	}
}

func TestHistoryService_List(t *testing.T) {
	userID, otherID := uuid.New(), uuid.New()
	store := &fakeHistoryStore{}
	for i := 0; i < 30; i++ {
		store.rows = append(store.rows, repository.CareerQueryHistory{
			ID: uuid.New(), UserID: userID, QueryType: "roadmap", ModelResponse: json.RawMessage(`{"roadmap":[]}`),
		})
	}
	store.rows = append(store.rows, repository.CareerQueryHistory{ID: uuid.New(), UserID: otherID, QueryType: "basic"})

	svc := NewHistoryService(store, testLogger())

	entries, total, err := svc.List(context.Background(), userID, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 20)
	assert.Equal(t, int64(30), total)
	assert.Equal(t, domain.QueryKindRoadmap, entries[0].Kind)

	_, _, err = svc.List(context.Background(), userID, 1000)
	require.NoError(t, err)
	assert.Equal(t, int32(MaxHistoryLimit), store.lastLimit)

	store.err = errors.New("timeout")
	_, _, err = svc.List(context.Background(), userID, 5)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
}

func TestHistoryService_GetChecksOwnership(t *testing.T) {
	userID := uuid.New()
	row := repository.CareerQueryHistory{ID: uuid.New(), UserID: userID, QueryType: "basic"}
	svc := NewHistoryService(&fakeHistoryStore{rows: []repository.CareerQueryHistory{row}}, testLogger())

	entry, err := svc.Get(context.Background(), row.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, row.ID, entry.ID)

	_, err = svc.Get(context.Background(), row.ID, uuid.New())
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

type fakeSavedCareerStore struct {
	rows []repository.SavedCareer
}

func (f *fakeSavedCareerStore) ListSavedCareersByUser(ctx context.Context, userID uuid.UUID) ([]repository.SavedCareer, error) {
	var out []repository.SavedCareer
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSavedCareerStore) CreateSavedCareer(ctx context.Context, arg repository.CreateSavedCareerParams) (repository.SavedCareer, error) {
	row := repository.SavedCareer{ID: uuid.New(), UserID: arg.UserID, Title: arg.Title, Content: arg.Content, SavedAt: testNow}
	f.rows = append(f.rows, row)
	return row, nil
}

func (f *fakeSavedCareerStore) DeleteSavedCareer(ctx context.Context, arg repository.DeleteSavedCareerParams) (int64, error) {
	for i, r := range f.rows {
		if r.ID == arg.ID && r.UserID == arg.UserID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func TestSavedCareerService(t *testing.T) {
	store := &fakeSavedCareerStore{}
	svc := NewSavedCareerService(store, testLogger())
	userID := uuid.New()
	ctx := context.Background()

	saved, err := svc.Save(ctx, userID, " Data Analyst ", json.RawMessage(`{"fitScore": 88}`))
	require.NoError(t, err)
	assert.Equal(t, "Data Analyst", saved.Title)
	assert.JSONEq(t, `{"fitScore": 88}`, string(saved.Content))

	bare, err := svc.Save(ctx, userID, "Nurse", nil)
	require.NoError(t, err)
	assert.Nil(t, bare.Content)
	assert.Equal(t, pqtype.NullRawMessage{}, store.rows[1].Content)

	_, err = svc.Save(ctx, userID, "", nil)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	_, err = svc.Save(ctx, userID, "Broken", json.RawMessage(`{nope`))
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	careers, err := svc.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, careers, 2)

	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(svc.Delete(ctx, saved.ID, uuid.New())))
	require.NoError(t, svc.Delete(ctx, saved.ID, userID))
	careers, err = svc.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, careers, 1)
}
