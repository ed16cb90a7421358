package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DukeRupert/careerlift/internal/metrics"
	"github.com/DukeRupert/careerlift/internal/repository"
	"github.com/google/uuid"
)

// CompletionProvider defines the interface for the LLM completion gateway
type CompletionProvider interface {
	// Complete sends one system+user exchange and returns the raw model text
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)

	// Name identifies the provider in responses, logs and metrics (e.g. "Groq")
	Name() string
}

// CompletionRequest contains parameters for a single completion
type CompletionRequest struct {
	System      string    // Instruction template for the query kind
	User        string    // Profile text plus optional additional context
	Temperature float64   // Sampling temperature
	MaxTokens   int       // Upper bound on generated tokens
	JSONOutput  bool      // Ask the provider to constrain output to a JSON object
	UserID      uuid.UUID // User ID for tracking
	QueryType   string    // Query kind for tracking
}

// Completion is the provider's answer before any shape validation
type Completion struct {
	Content string    // Raw text of the first choice
	Model   string    // Model identifier to report to callers
	Usage   UsageInfo // Token usage information
}

// UsageInfo tracks API usage for monitoring
type UsageInfo struct {
	Model        string        // AI model used
	InputTokens  int           // Tokens in the request
	OutputTokens int           // Tokens in the response
	Duration     time.Duration // Request duration
}

// Defaults used by the guidance service for every query kind
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 4000
)

// ProviderConfig contains common configuration for AI providers
type ProviderConfig struct {
	MaxRetries     int           // Maximum attempts for transient errors
	RetryBaseDelay time.Duration // Base delay for exponential backoff
	RequestTimeout time.Duration // Timeout for individual requests
}

// Error codes for AI provider operations
var (
	// EAIRateLimit indicates the API rate limit has been exceeded
	EAIRateLimit = errors.New("ai provider rate limit exceeded")

	// EAITimeout indicates the request timed out
	EAITimeout = errors.New("ai request timed out")

	// EAIUnavailable indicates the AI service is temporarily unavailable
	EAIUnavailable = errors.New("ai service temporarily unavailable")

	// EAIUnauthorized indicates invalid API credentials
	EAIUnauthorized = errors.New("ai provider authentication failed")

	// EAIBadRequest indicates the provider rejected the request
	EAIBadRequest = errors.New("ai provider rejected the request")

	// EAIEmptyResponse indicates a 2xx response without any content
	EAIEmptyResponse = errors.New("ai provider returned no content")
)

// IsRetryable returns true if the error is a transient error that can be retried
func IsRetryable(err error) bool {
	return errors.Is(err, EAIRateLimit) ||
		errors.Is(err, EAITimeout) ||
		errors.Is(err, EAIUnavailable)
}

// WrapError wraps an error with context about the AI operation
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("ai %s: %w", operation, err)
}

// Backoff returns the delay before the given retry attempt (1-based):
// base * 2^(attempt-1).
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base * time.Duration(1<<(attempt-1))
}

// WithRetry runs attempt until it succeeds, returns a non-retryable error,
// or MaxRetries attempts have been made. It waits with exponential
// backoff between attempts and stops early if ctx is done.
func WithRetry(ctx context.Context, cfg ProviderConfig, logger *slog.Logger, attempt func(ctx context.Context) error) error {
	maxAttempts := cfg.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for n := 1; n <= maxAttempts; n++ {
		err := attempt(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) || n >= maxAttempts {
			break
		}

		delay := Backoff(cfg.RetryBaseDelay, n)
		logger.Info("Retrying AI request", "attempt", n, "delay", delay, "error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// UsageStore records token usage per call.
type UsageStore interface {
	CreateAIUsage(ctx context.Context, arg repository.CreateAIUsageParams) (repository.AiUsage, error)
}

// TrackUsage records usage in the database and in metrics. A nil store
// only updates metrics. Failures are logged, never returned.
func TrackUsage(ctx context.Context, store UsageStore, logger *slog.Logger, req CompletionRequest, usage UsageInfo) {
	metrics.AITokens(usage.InputTokens, usage.OutputTokens)
	if store == nil || req.UserID == uuid.Nil {
		return
	}
	_, err := store.CreateAIUsage(ctx, repository.CreateAIUsageParams{
		UserID:       req.UserID,
		Model:        usage.Model,
		InputTokens:  int32(usage.InputTokens),
		OutputTokens: int32(usage.OutputTokens),
		QueryType:    req.QueryType,
	})
	if err != nil {
		logger.Error("Failed to track AI usage", "user_id", req.UserID, "error", err)
	}
}
