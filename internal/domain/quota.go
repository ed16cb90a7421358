// Package domain contains core business types and interfaces.
//
// This file defines subscription plans, their daily query ceilings and the
// per-user quota record the quota service meters against.
package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Plan is a named subscription tier controlling the daily request ceiling.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
	PlanPro     Plan = "pro"
)

// Valid reports whether the plan is one of the known tiers.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanPremium, PlanPro:
		return true
	default:
		return false
	}
}

// DisplayName returns the plan name as shown to users ("Free", "Pro").
func (p Plan) DisplayName() string {
	return cases.Title(language.English).String(string(p))
}

// String returns the string representation of the plan.
func (p Plan) String() string {
	return string(p)
}

// PlanLimits maps each plan to its daily query ceiling.
type PlanLimits map[Plan]int

// DefaultPlanLimits is the product policy used when no overrides are configured.
var DefaultPlanLimits = PlanLimits{
	PlanFree:    5,
	PlanPremium: 50,
	PlanPro:     10000,
}

// Limit returns the ceiling for a plan. Unknown plans resolve to the most
// restrictive configured ceiling, never to a larger one.
func (l PlanLimits) Limit(plan Plan) (Plan, int) {
	if limit, ok := l[plan]; ok && plan.Valid() {
		return plan, limit
	}
	return l.mostRestrictive()
}

func (l PlanLimits) mostRestrictive() (Plan, int) {
	plan, limit := PlanFree, l[PlanFree]
	for p, n := range l {
		if n < limit {
			plan, limit = p, n
		}
	}
	return plan, limit
}

// Validate checks that every plan has a positive ceiling and that Free is
// the most restrictive tier.
func (l PlanLimits) Validate() error {
	for _, p := range []Plan{PlanFree, PlanPremium, PlanPro} {
		n, ok := l[p]
		if !ok {
			return fmt.Errorf("missing daily limit for plan %q", p)
		}
		if n < 1 {
			return fmt.Errorf("daily limit for plan %q must be at least 1, got %d", p, n)
		}
	}
	if l[PlanFree] > l[PlanPremium] || l[PlanFree] > l[PlanPro] {
		return fmt.Errorf("free plan limit (%d) must not exceed paid plan limits", l[PlanFree])
	}
	return nil
}

// QuotaRecord is the per-user usage row metered by the quota service.
type QuotaRecord struct {
	UserID           uuid.UUID
	Plan             Plan
	QueriesUsedToday int
	LastReset        *time.Time // nil when the counter has never been reset
}

// NeedsReset reports whether the record's counter belongs to an earlier
// UTC calendar day than now.
func (r *QuotaRecord) NeedsReset(now time.Time) bool {
	if r.LastReset == nil {
		return true
	}
	return !SameUTCDay(*r.LastReset, now)
}

// EffectiveUsage returns the usage that applies at now, treating a stale
// counter as zero.
func (r *QuotaRecord) EffectiveUsage(now time.Time) int {
	if r.NeedsReset(now) {
		return 0
	}
	if r.QueriesUsedToday < 0 {
		return 0
	}
	return r.QueriesUsedToday
}

// SameUTCDay reports whether a and b fall on the same calendar day in UTC.
func SameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// StartOfUTCDay returns midnight UTC of the day containing t.
func StartOfUTCDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextUTCMidnight returns the instant the daily counter of t's day resets.
func NextUTCMidnight(t time.Time) time.Time {
	return StartOfUTCDay(t).AddDate(0, 0, 1)
}

// QuotaDecision is the outcome of a check-and-consume call.
type QuotaDecision struct {
	Allowed   bool
	Remaining int
	Limit     int
	Used      int
	Plan      Plan
	Period    time.Time // last_query_reset the counter is keyed on; zero if unknown
}

// Remaining computes limit - used clamped at zero.
func Remaining(limit, used int) int {
	if used >= limit {
		return 0
	}
	return limit - used
}

// ErrRecordNotFound indicates no quota record exists for the user.
var ErrRecordNotFound = errors.New("quota record not found")

// QuotaExceededError carries what a caller needs to build an upgrade prompt.
type QuotaExceededError struct {
	Plan  Plan
	Limit int
	Used  int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily quota exceeded: %d/%d on %s plan", e.Used, e.Limit, e.Plan)
}

// UpgradeMessage is the user-facing text shown when the quota is exhausted.
func (e *QuotaExceededError) UpgradeMessage() string {
	switch e.Plan {
	case PlanFree:
		return fmt.Sprintf("You've used all %d of your %s plan queries for today. Upgrade to Premium for more daily queries.",
			e.Limit, e.Plan.DisplayName())
	case PlanPremium:
		return fmt.Sprintf("You've used all %d of your %s plan queries for today. Upgrade to Pro for unlimited daily queries.",
			e.Limit, e.Plan.DisplayName())
	default:
		return fmt.Sprintf("You've reached today's limit of %d queries. Your quota resets at midnight UTC.", e.Limit)
	}
}

// QuotaExceeded creates a rate limit error for an exhausted daily quota.
func QuotaExceeded(op string, plan Plan, used, limit int) *Error {
	qe := &QuotaExceededError{Plan: plan, Limit: limit, Used: used}
	return &Error{
		Code:    ERATELIMIT,
		Op:      op,
		Message: "Daily query limit reached",
		Err:     qe,
	}
}

// QuotaRecordNotFound creates the authentication-equivalent error returned
// when a caller has no profile row to meter against.
func QuotaRecordNotFound(op string, userID uuid.UUID) *Error {
	return &Error{
		Code:    EUNAUTHORIZED,
		Op:      op,
		Message: "No profile found for this account",
		Err:     fmt.Errorf("user %s: %w", userID, ErrRecordNotFound),
	}
}
