package groq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DukeRupert/careerlift/internal/ai"
	"github.com/DukeRupert/careerlift/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsageStore struct {
	calls []repository.CreateAIUsageParams
	err   error
}

func (f *fakeUsageStore) CreateAIUsage(ctx context.Context, arg repository.CreateAIUsageParams) (repository.AiUsage, error) {
	f.calls = append(f.calls, arg)
	return repository.AiUsage{}, f.err
}

func newTestProvider(t *testing.T, url string, retries int, usage ai.UsageStore) *Provider {
	t.Helper()
	p, err := New(Config{
		APIKey:  "gsk_test",
		BaseURL: url,
		ProviderConfig: ai.ProviderConfig{
			MaxRetries:     retries,
			RetryBaseDelay: time.Millisecond,
			RequestTimeout: 2 * time.Second,
		},
	}, usage, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return p
}

func testRequest() ai.CompletionRequest {
	return ai.CompletionRequest{
		System:      "system prompt",
		User:        "user prompt",
		Temperature: ai.DefaultTemperature,
		MaxTokens:   ai.DefaultMaxTokens,
		JSONOutput:  true,
		UserID:      uuid.New(),
		QueryType:   "basic",
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{}, nil, slog.Default())
	assert.Error(t, err)
}

func TestComplete_Success(t *testing.T) {
	var got apiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer gsk_test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"model": "llama-3.3-70b-versatile",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"careers\": []}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 40, "total_tokens": 160}
		}`))
	}))
	defer srv.Close()

	usage := &fakeUsageStore{}
	p := newTestProvider(t, srv.URL, 1, usage)
	req := testRequest()

	completion, err := p.Complete(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, `{"careers": []}`, completion.Content)
	assert.Equal(t, DisplayModel, completion.Model)
	assert.Equal(t, 120, completion.Usage.InputTokens)
	assert.Equal(t, 40, completion.Usage.OutputTokens)

	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, 0.7, got.Temperature)
	assert.Equal(t, 4000, got.MaxTokens)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user prompt", got.Messages[1].Content)

	require.Len(t, usage.calls, 1)
	assert.Equal(t, req.UserID, usage.calls[0].UserID)
	assert.Equal(t, int32(120), usage.calls[0].InputTokens)
	assert.Equal(t, "basic", usage.calls[0].QueryType)
}

func TestComplete_HTTPErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, ai.EAIUnauthorized},
		{"rate limited", http.StatusTooManyRequests, ai.EAIRateLimit},
		{"server error", http.StatusInternalServerError, ai.EAIUnavailable},
		{"bad request", http.StatusBadRequest, ai.EAIBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error": {"message": "nope", "type": "invalid_request_error"}}`))
			}))
			defer srv.Close()

			usage := &fakeUsageStore{}
			p := newTestProvider(t, srv.URL, 1, usage)

			_, err := p.Complete(context.Background(), testRequest())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, usage.calls)
		})
	}
}

func TestComplete_RetriesTransientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "{\"roadmap\": []}"}}]}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL, 3, nil)

	completion, err := p.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, `{"roadmap": []}`, completion.Content)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestComplete_DoesNotRetryPermanentErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL, 3, nil)

	_, err := p.Complete(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestComplete_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": [], "usage": {"prompt_tokens": 10}}`))
	}))
	defer srv.Close()

	usage := &fakeUsageStore{}
	p := newTestProvider(t, srv.URL, 1, usage)

	_, err := p.Complete(context.Background(), testRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.EAIEmptyResponse)
	assert.Len(t, usage.calls, 1, "a response body was returned, so usage is still recorded")
}

func TestComplete_CallerCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL, 3, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := p.Complete(ctx, testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
