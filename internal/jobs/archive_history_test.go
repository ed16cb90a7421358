package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DukeRupert/careerlift/internal/repository"
	"github.com/DukeRupert/careerlift/internal/storage"
	"github.com/DukeRupert/careerlift/internal/worker"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistoryReader struct {
	row repository.CareerQueryHistory
	err error
}

func (f *fakeHistoryReader) GetQueryHistory(ctx context.Context, arg repository.GetQueryHistoryParams) (repository.CareerQueryHistory, error) {
	if f.err != nil {
		return repository.CareerQueryHistory{}, f.err
	}
	if arg.ID != f.row.ID || arg.UserID != f.row.UserID {
		return repository.CareerQueryHistory{}, sql.ErrNoRows
	}
	return f.row, nil
}

func setupArchive(t *testing.T) (*ArchiveHistoryHandler, *fakeHistoryReader, *storage.LocalStorage) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()}, logger)
	require.NoError(t, err)

	reader := &fakeHistoryReader{row: repository.CareerQueryHistory{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		QueryType:     "basic",
		InputSummary:  "Nurse with 5 years ICU experience",
		ModelResponse: json.RawMessage(`{"careers":[{"title":"Nurse Educator"}]}`),
		CreatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}}

	return NewArchiveHistoryHandler(reader, store, logger), reader, store
}

func payloadFor(t *testing.T, historyID, userID uuid.UUID) []byte {
	t.Helper()
	b, err := json.Marshal(worker.ArchiveHistoryPayload{HistoryID: historyID, UserID: userID})
	require.NoError(t, err)
	return b
}

func TestArchiveHistory_WritesDocument(t *testing.T) {
	h, reader, store := setupArchive(t)
	row := reader.row
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, payloadFor(t, row.ID, row.UserID)))

	rc, _, err := store.Get(ctx, storage.HistoryArchiveKey(row.UserID, row.ID))
	require.NoError(t, err)
	defer rc.Close()

	var doc ArchivedHistory
	require.NoError(t, json.NewDecoder(rc).Decode(&doc))
	assert.Equal(t, row.ID, doc.ID)
	assert.Equal(t, "basic", doc.QueryType)
	assert.JSONEq(t, `{"careers":[{"title":"Nurse Educator"}]}`, string(doc.ModelResponse))
	assert.False(t, doc.ArchivedAt.IsZero())
}

func TestArchiveHistory_RetryOverwrites(t *testing.T) {
	h, reader, _ := setupArchive(t)
	payload := payloadFor(t, reader.row.ID, reader.row.UserID)

	require.NoError(t, h.Handle(context.Background(), payload))
	assert.NoError(t, h.Handle(context.Background(), payload))
}

func TestArchiveHistory_PermanentFailures(t *testing.T) {
	h, reader, _ := setupArchive(t)

	tests := []struct {
		name    string
		payload []byte
	}{
		{"not json", []byte(`not json`)},
		{"missing ids", []byte(`{}`)},
		{"row gone", payloadFor(t, uuid.New(), reader.row.UserID)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Handle(context.Background(), tt.payload)
			require.Error(t, err)
			assert.True(t, worker.IsPermanent(err))
		})
	}
}

func TestArchiveHistory_StoreErrorRetries(t *testing.T) {
	h, reader, _ := setupArchive(t)
	reader.err = errors.New("connection refused")

	err := h.Handle(context.Background(), payloadFor(t, reader.row.ID, reader.row.UserID))
	require.Error(t, err)
	assert.False(t, worker.IsPermanent(err))
}

func TestArchiveHistory_Type(t *testing.T) {
	h, _, _ := setupArchive(t)
	assert.Equal(t, worker.JobTypeArchiveHistory, h.Type())
}
