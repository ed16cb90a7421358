package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/DukeRupert/careerlift/internal/billing"
	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/DukeRupert/careerlift/internal/metrics"
	"github.com/DukeRupert/careerlift/internal/repository"
	"github.com/google/uuid"
)

// SubscriptionService keeps the subscription plan on a profile in sync with
// billing. It is the only writer of subscription_plan.
type SubscriptionService interface {
	// Checkout returns a hosted checkout URL for upgrading to plan,
	// creating the billing customer on first use.
	Checkout(ctx context.Context, userID uuid.UUID, plan domain.Plan, successURL, cancelURL string) (string, error)

	// Portal returns a billing portal URL for a user with a billing customer.
	Portal(ctx context.Context, userID uuid.UUID, returnURL string) (string, error)

	// LinkCustomer records the billing customer of a user.
	LinkCustomer(ctx context.Context, userID uuid.UUID, customerID string) error

	// ApplyPlan sets the plan of the profile owned by a billing customer.
	ApplyPlan(ctx context.Context, customerID string, plan domain.Plan) error
}

// SubscriptionStore is the subset of repository.Queries the subscription
// service needs.
type SubscriptionStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (repository.Profile, error)
	SetStripeCustomerID(ctx context.Context, arg repository.SetStripeCustomerIDParams) error
	UpdateSubscriptionPlanByCustomer(ctx context.Context, arg repository.UpdateSubscriptionPlanByCustomerParams) (int64, error)
}

type subscriptionService struct {
	store   SubscriptionStore
	billing billing.Service
	logger  *slog.Logger
}

// NewSubscriptionService creates a new SubscriptionService. billingService
// may be nil when Stripe is not configured; Checkout and Portal then fail.
func NewSubscriptionService(store SubscriptionStore, billingService billing.Service, logger *slog.Logger) SubscriptionService {
	return &subscriptionService{
		store:   store,
		billing: billingService,
		logger:  logger,
	}
}

func (s *subscriptionService) Checkout(ctx context.Context, userID uuid.UUID, plan domain.Plan, successURL, cancelURL string) (string, error) {
	const op = "subscription.checkout"

	if s.billing == nil {
		return "", domain.Errorf(domain.ENOTIMPL, op, "Billing is not configured")
	}
	if plan != domain.PlanPremium && plan != domain.PlanPro {
		return "", domain.NewValidationError(op, "plan", "must be premium or pro")
	}

	profile, err := s.getProfile(ctx, op, userID)
	if err != nil {
		return "", err
	}

	customerID := fromNullString(profile.StripeCustomerID)
	if customerID == "" {
		customerID, err = s.billing.CreateCustomer(fromNullString(profile.Email), userID.String())
		if err != nil {
			s.logger.Error("failed to create billing customer", "error", err, "op", op, "user_id", userID)
			return "", domain.Internal(err, op, "Failed to start checkout")
		}
		if err := s.LinkCustomer(ctx, userID, customerID); err != nil {
			return "", err
		}
	}

	url, err := s.billing.CreateCheckoutSession(customerID, userID.String(), plan, successURL, cancelURL)
	if err != nil {
		s.logger.Error("failed to create checkout session", "error", err, "op", op, "user_id", userID)
		return "", domain.Internal(err, op, "Failed to start checkout")
	}
	return url, nil
}

func (s *subscriptionService) Portal(ctx context.Context, userID uuid.UUID, returnURL string) (string, error) {
	const op = "subscription.portal"

	if s.billing == nil {
		return "", domain.Errorf(domain.ENOTIMPL, op, "Billing is not configured")
	}

	profile, err := s.getProfile(ctx, op, userID)
	if err != nil {
		return "", err
	}
	customerID := fromNullString(profile.StripeCustomerID)
	if customerID == "" {
		return "", domain.Errorf(domain.ENOTFOUND, op, "No billing account found")
	}

	url, err := s.billing.CreatePortalSession(customerID, returnURL)
	if err != nil {
		s.logger.Error("failed to create portal session", "error", err, "op", op, "user_id", userID)
		return "", domain.Internal(err, op, "Failed to open billing portal")
	}
	return url, nil
}

func (s *subscriptionService) LinkCustomer(ctx context.Context, userID uuid.UUID, customerID string) error {
	const op = "subscription.link_customer"

	err := s.store.SetStripeCustomerID(ctx, repository.SetStripeCustomerIDParams{
		ID:               userID,
		StripeCustomerID: toNullString(customerID),
	})
	if err != nil {
		s.logger.Error("failed to link billing customer", "error", err, "op", op, "user_id", userID)
		return domain.Unavailable(err, op, "Failed to link billing customer")
	}
	s.logger.Info("billing customer linked", "user_id", userID, "customer_id", customerID)
	return nil
}

func (s *subscriptionService) ApplyPlan(ctx context.Context, customerID string, plan domain.Plan) error {
	const op = "subscription.apply_plan"

	if !plan.Valid() {
		return domain.Invalid(op, "unknown plan")
	}

	n, err := s.store.UpdateSubscriptionPlanByCustomer(ctx, repository.UpdateSubscriptionPlanByCustomerParams{
		StripeCustomerID: toNullString(customerID),
		SubscriptionPlan: string(plan),
	})
	if err != nil {
		s.logger.Error("failed to update plan", "error", err, "op", op, "customer_id", customerID)
		return domain.Unavailable(err, op, "Failed to update plan")
	}
	if n == 0 {
		return domain.NotFound(op, "billing customer", customerID)
	}

	metrics.PlanChanges.WithLabelValues(string(plan)).Inc()
	s.logger.Info("subscription plan updated", "customer_id", customerID, "plan", plan)
	return nil
}

func (s *subscriptionService) getProfile(ctx context.Context, op string, userID uuid.UUID) (repository.Profile, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.Profile{}, domain.NotFound(op, "profile", userID.String())
		}
		s.logger.Error("failed to get profile", "error", err, "op", op, "user_id", userID)
		return repository.Profile{}, domain.Unavailable(err, op, "Failed to retrieve profile")
	}
	return profile, nil
}
