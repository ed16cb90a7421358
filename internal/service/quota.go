// Package service contains the business logic layer.
//
// This file implements the daily query quota: a read-check-increment cycle
// on the caller's profile row with a reset on UTC day rollover.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/DukeRupert/careerlift/internal/metrics"
	"github.com/DukeRupert/careerlift/internal/repository"
	"github.com/google/uuid"
)

// maxQuotaAttempts bounds how often a lost conditional update is re-read
// and re-decided before the call is denied.
const maxQuotaAttempts = 3

var errQuotaContention = errors.New("quota row changed concurrently on every attempt")

// =============================================================================
// Interface Definition
// =============================================================================

// QuotaService decides whether a user may issue another AI query today.
type QuotaService interface {
	// CheckAndConsume loads the user's quota record, applies the daily reset
	// and consumes one unit if the plan ceiling allows it. A denied call
	// returns a decision with Allowed=false together with the reason.
	CheckAndConsume(ctx context.Context, userID uuid.UUID) (*domain.QuotaDecision, error)

	// Usage reports the current quota without writing.
	Usage(ctx context.Context, userID uuid.UUID) (*domain.QuotaDecision, error)

	// Refund returns one unit consumed by decision, provided the counter
	// still belongs to the same period.
	Refund(ctx context.Context, userID uuid.UUID, decision *domain.QuotaDecision) error
}

// QuotaStore is the subset of repository.Queries the quota service needs.
type QuotaStore interface {
	GetQuotaRecord(ctx context.Context, id uuid.UUID) (repository.GetQuotaRecordRow, error)
	ConsumeQuota(ctx context.Context, arg repository.ConsumeQuotaParams) (int32, error)
	ResetQuota(ctx context.Context, arg repository.ResetQuotaParams) (int32, error)
	RefundQuota(ctx context.Context, arg repository.RefundQuotaParams) (int64, error)
}

// =============================================================================
// Implementation
// =============================================================================

type quotaService struct {
	store  QuotaStore
	limits domain.PlanLimits
	logger *slog.Logger
	now    func() time.Time
}

// NewQuotaService creates a new QuotaService.
func NewQuotaService(store QuotaStore, limits domain.PlanLimits, logger *slog.Logger) QuotaService {
	if limits == nil {
		limits = domain.DefaultPlanLimits
	}
	return &quotaService{
		store:  store,
		limits: limits,
		logger: logger,
		now:    time.Now,
	}
}

// CheckAndConsume implements QuotaService.
func (s *quotaService) CheckAndConsume(ctx context.Context, userID uuid.UUID) (*domain.QuotaDecision, error) {
	const op = "quota.check_and_consume"

	for attempt := 1; attempt <= maxQuotaAttempts; attempt++ {
		decision, retry, err := s.tryConsume(ctx, op, userID)
		if !retry {
			s.observe(decision, err)
			return decision, err
		}
		s.logger.Debug("Quota update lost a race, re-reading",
			"op", op,
			"user_id", userID,
			"attempt", attempt,
		)
	}

	err := domain.Unavailable(errQuotaContention, op, "failed to update quota")
	decision := &domain.QuotaDecision{Allowed: false}
	s.observe(decision, err)
	s.logger.Error("Quota update exhausted attempts", "op", op, "user_id", userID)
	return decision, err
}

// tryConsume runs one read-decide-write pass. retry is true when a
// conditional update matched no row because another request changed it.
func (s *quotaService) tryConsume(ctx context.Context, op string, userID uuid.UUID) (*domain.QuotaDecision, bool, error) {
	denied := &domain.QuotaDecision{Allowed: false}

	row, err := s.store.GetQuotaRecord(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return denied, false, domain.QuotaRecordNotFound(op, userID)
		}
		s.logger.Error("Failed to load quota record", "op", op, "user_id", userID, "error", err)
		return denied, false, domain.Unavailable(err, op, "failed to load quota record")
	}

	record := toQuotaRecord(row)
	plan, limit := s.limits.Limit(record.Plan)
	now := s.now().UTC()

	denied.Plan = plan
	denied.Limit = limit

	if record.NeedsReset(now) {
		next := int32(0)
		if limit > 0 {
			next = 1
		}
		used, err := s.store.ResetQuota(ctx, repository.ResetQuotaParams{
			QueriesToday:  next,
			ResetAt:       now,
			ID:            userID,
			PreviousReset: row.LastQueryReset,
		})
		if errors.Is(err, sql.ErrNoRows) {
			return nil, true, nil
		}
		if err != nil {
			s.logger.Error("Failed to reset quota", "op", op, "user_id", userID, "error", err)
			return denied, false, domain.Unavailable(err, op, "failed to reset quota")
		}
		if next == 0 {
			denied.Period = now
			return denied, false, domain.QuotaExceeded(op, plan, 0, limit)
		}
		s.logger.Debug("Daily quota reset", "op", op, "user_id", userID, "plan", plan)
		return &domain.QuotaDecision{
			Allowed:   true,
			Remaining: domain.Remaining(limit, int(used)),
			Limit:     limit,
			Used:      int(used),
			Plan:      plan,
			Period:    now,
		}, false, nil
	}

	used := record.EffectiveUsage(now)
	period := *record.LastReset
	if used >= limit {
		s.logger.Info("Daily quota exceeded",
			"op", op,
			"user_id", userID,
			"plan", plan,
			"used", used,
			"limit", limit,
		)
		denied.Used = used
		denied.Period = period
		return denied, false, domain.QuotaExceeded(op, plan, used, limit)
	}

	after, err := s.store.ConsumeQuota(ctx, repository.ConsumeQuotaParams{
		ID:             userID,
		QueryLimit:     int32(limit),
		LastQueryReset: row.LastQueryReset,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, true, nil
	}
	if err != nil {
		s.logger.Error("Failed to consume quota", "op", op, "user_id", userID, "error", err)
		return denied, false, domain.Unavailable(err, op, "failed to consume quota")
	}

	return &domain.QuotaDecision{
		Allowed:   true,
		Remaining: domain.Remaining(limit, int(after)),
		Limit:     limit,
		Used:      int(after),
		Plan:      plan,
		Period:    period,
	}, false, nil
}

// Usage implements QuotaService.
func (s *quotaService) Usage(ctx context.Context, userID uuid.UUID) (*domain.QuotaDecision, error) {
	const op = "quota.usage"

	row, err := s.store.GetQuotaRecord(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.QuotaRecordNotFound(op, userID)
		}
		return nil, domain.Unavailable(err, op, "failed to load quota record")
	}

	record := toQuotaRecord(row)
	plan, limit := s.limits.Limit(record.Plan)
	now := s.now().UTC()
	used := record.EffectiveUsage(now)

	decision := &domain.QuotaDecision{
		Allowed:   used < limit,
		Remaining: domain.Remaining(limit, used),
		Limit:     limit,
		Used:      used,
		Plan:      plan,
	}
	if !record.NeedsReset(now) {
		decision.Period = *record.LastReset
	}
	return decision, nil
}

// Refund implements QuotaService.
func (s *quotaService) Refund(ctx context.Context, userID uuid.UUID, decision *domain.QuotaDecision) error {
	const op = "quota.refund"

	if decision == nil || !decision.Allowed || decision.Period.IsZero() {
		return nil
	}
	if !domain.SameUTCDay(decision.Period, s.now()) {
		return nil
	}

	n, err := s.store.RefundQuota(ctx, repository.RefundQuotaParams{
		ID:             userID,
		LastQueryReset: sql.NullTime{Time: decision.Period, Valid: true},
	})
	if err != nil {
		return domain.Unavailable(err, op, "failed to refund quota")
	}
	if n > 0 {
		metrics.QuotaRefunds.WithLabelValues(string(decision.Plan)).Inc()
		s.logger.Info("Refunded quota after gateway failure", "op", op, "user_id", userID, "plan", decision.Plan)
	}
	return nil
}

func (s *quotaService) observe(decision *domain.QuotaDecision, err error) {
	plan := "unknown"
	if decision != nil && decision.Plan != "" {
		plan = string(decision.Plan)
	}

	outcome := "allowed"
	switch domain.ErrorCode(err) {
	case "":
	case domain.ERATELIMIT:
		outcome = "denied"
	case domain.EUNAUTHORIZED:
		outcome = "not_found"
	default:
		outcome = "error"
	}
	metrics.QuotaDecisions.WithLabelValues(plan, outcome).Inc()
}

func toQuotaRecord(row repository.GetQuotaRecordRow) domain.QuotaRecord {
	record := domain.QuotaRecord{
		UserID:           row.ID,
		Plan:             domain.Plan(row.SubscriptionPlan),
		QueriesUsedToday: int(row.QueriesToday),
	}
	if row.LastQueryReset.Valid {
		t := row.LastQueryReset.Time
		record.LastReset = &t
	}
	return record
}
