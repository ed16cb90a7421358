// Package service contains the business logic layer.
//
// This file implements the guidance flow: quota check, prompt assembly,
// the completion call, output validation and history bookkeeping.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/DukeRupert/careerlift/internal/ai"
	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/DukeRupert/careerlift/internal/metrics"
	"github.com/DukeRupert/careerlift/internal/repository"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// GuidanceService produces AI career guidance for a user.
type GuidanceService interface {
	// Generate meters the request against the daily quota, calls the
	// completion gateway and records the validated answer in the history.
	Generate(ctx context.Context, req domain.GuidanceRequest) (*domain.GuidanceResult, error)
}

// HistoryWriter appends rows to the query history.
type HistoryWriter interface {
	CreateQueryHistory(ctx context.Context, arg repository.CreateQueryHistoryParams) (repository.CareerQueryHistory, error)
}

// ArchiveEnqueuer schedules the background copy of a history row.
type ArchiveEnqueuer interface {
	EnqueueArchiveHistory(ctx context.Context, historyID, userID uuid.UUID) (repository.Job, error)
}

// GuidanceServiceConfig holds optional behaviour switches.
type GuidanceServiceConfig struct {
	// RefundOnGatewayFailure returns the consumed quota unit when the
	// gateway fails. Malformed output and caller cancellation never refund.
	RefundOnGatewayFailure bool
}

// =============================================================================
// Implementation
// =============================================================================

type guidanceService struct {
	quota    QuotaService
	provider ai.CompletionProvider
	history  HistoryWriter
	archiver ArchiveEnqueuer
	config   GuidanceServiceConfig
	logger   *slog.Logger
}

// NewGuidanceService creates a new GuidanceService. archiver may be nil,
// in which case history rows are not archived.
func NewGuidanceService(
	quota QuotaService,
	provider ai.CompletionProvider,
	history HistoryWriter,
	archiver ArchiveEnqueuer,
	config GuidanceServiceConfig,
	logger *slog.Logger,
) GuidanceService {
	return &guidanceService{
		quota:    quota,
		provider: provider,
		history:  history,
		archiver: archiver,
		config:   config,
		logger:   logger,
	}
}

// Generate implements GuidanceService.
func (s *guidanceService) Generate(ctx context.Context, req domain.GuidanceRequest) (*domain.GuidanceResult, error) {
	const op = "guidance.generate"

	if err := req.Validate(op); err != nil {
		metrics.GuidanceRequests.WithLabelValues("invalid", "rejected").Inc()
		return nil, err
	}
	kind := req.Kind.String()

	prompt, err := ai.BuildPrompt(req.Kind, req.ProfileText, req.ExtraContext)
	if err != nil {
		metrics.GuidanceRequests.WithLabelValues(kind, "rejected").Inc()
		return nil, domain.Invalid(op, err.Error())
	}

	decision, err := s.quota.CheckAndConsume(ctx, req.UserID)
	if err != nil {
		metrics.GuidanceRequests.WithLabelValues(kind, domain.ErrorCode(err)).Inc()
		return nil, err
	}

	logger := s.logger.With("op", op, "user_id", req.UserID, "plan", decision.Plan, "query_type", kind)
	logger.Info("Processing guidance request", "input", domain.InputSummary(req.ProfileText))

	completion, err := s.provider.Complete(ctx, ai.CompletionRequest{
		System:      prompt.System,
		User:        prompt.User,
		Temperature: ai.DefaultTemperature,
		MaxTokens:   ai.DefaultMaxTokens,
		JSONOutput:  true,
		UserID:      req.UserID,
		QueryType:   kind,
	})
	if err != nil {
		if errors.Is(err, ai.ErrMalformedOutput) || errors.Is(err, ai.EAIEmptyResponse) {
			logger.Error("Completion gateway returned malformed output", "error", err)
			metrics.GuidanceRequests.WithLabelValues(kind, domain.EMALFORMED).Inc()
			return nil, domain.Malformed(err, op, "invalid AI response format")
		}
		logger.Error("Completion gateway failed", "error", err)
		s.maybeRefund(ctx, logger, req.UserID, decision)
		metrics.GuidanceRequests.WithLabelValues(kind, domain.EGATEWAY).Inc()
		return nil, domain.Gateway(err, op, "AI service error")
	}

	payload, err := ai.ParseGuidance(req.Kind, completion.Content)
	if err != nil {
		logger.Error("Failed to parse model output", "error", err, "content_length", len(completion.Content))
		metrics.GuidanceRequests.WithLabelValues(kind, domain.EMALFORMED).Inc()
		return nil, domain.Malformed(err, op, "invalid AI response format")
	}

	result := &domain.GuidanceResult{
		Kind:             req.Kind,
		Payload:          payload,
		Model:            completion.Model,
		Provider:         s.provider.Name(),
		QueriesRemaining: decision.Remaining,
		Plan:             decision.Plan,
	}

	// History and archive failures never fail a request that already
	// consumed quota and produced an answer.
	row, err := s.history.CreateQueryHistory(ctx, repository.CreateQueryHistoryParams{
		UserID:        req.UserID,
		QueryType:     kind,
		InputSummary:  domain.InputSummary(req.ProfileText),
		ModelResponse: payload,
	})
	if err != nil {
		logger.Error("Failed to write query history", "error", err)
		metrics.HistoryWrites.WithLabelValues("failed").Inc()
	} else {
		metrics.HistoryWrites.WithLabelValues("success").Inc()
		id := row.ID
		result.HistoryID = &id
		s.enqueueArchive(ctx, logger, row)
	}

	metrics.GuidanceRequests.WithLabelValues(kind, "success").Inc()
	logger.Info("Guidance generated", "remaining", decision.Remaining)
	return result, nil
}

// maybeRefund returns the consumed unit when configured to, unless the
// caller went away.
func (s *guidanceService) maybeRefund(ctx context.Context, logger *slog.Logger, userID uuid.UUID, decision *domain.QuotaDecision) {
	if !s.config.RefundOnGatewayFailure || ctx.Err() != nil {
		return
	}
	if err := s.quota.Refund(ctx, userID, decision); err != nil {
		logger.Error("Failed to refund quota", "error", err)
	}
}

func (s *guidanceService) enqueueArchive(ctx context.Context, logger *slog.Logger, row repository.CareerQueryHistory) {
	if s.archiver == nil {
		return
	}
	if _, err := s.archiver.EnqueueArchiveHistory(ctx, row.ID, row.UserID); err != nil {
		logger.Error("Failed to enqueue history archive", "history_id", row.ID, "error", err)
	}
}
