// Package billing provides Stripe billing integration for subscription plans.
package billing

import (
	"fmt"

	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/stripe/stripe-go/v79"
	billingportalsession "github.com/stripe/stripe-go/v79/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/webhook"
)

// Service defines the interface for billing operations.
type Service interface {
	// CreateCustomer creates a new Stripe customer tagged with the user ID.
	CreateCustomer(email, userID string) (string, error)

	// CreateCheckoutSession creates a Stripe Checkout session for subscribing
	// to plan. Returns the checkout URL to redirect the user to.
	CreateCheckoutSession(customerID, userID string, plan domain.Plan, successURL, cancelURL string) (string, error)

	// CreatePortalSession creates a Stripe Customer Portal session.
	// Returns the portal URL to redirect the user to.
	CreatePortalSession(customerID, returnURL string) (string, error)

	// VerifyWebhookSignature verifies the Stripe webhook signature and returns the event.
	VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error)

	// PlanForSubscription returns the plan a subscription entitles its
	// customer to. Ended or unpaid subscriptions resolve to Free.
	PlanForSubscription(sub *stripe.Subscription) domain.Plan
}

// PriceConfig holds the Stripe price IDs for each paid plan. The first ID
// of each list is used for new checkouts.
type PriceConfig struct {
	PremiumPriceIDs []string
	ProPriceIDs     []string
}

// stripeService is the concrete implementation of Service.
type stripeService struct {
	webhookSecret string
	prices        PriceConfig
	priceToPlan   map[string]domain.Plan
}

// NewStripeService creates a new Stripe billing service.
//
// The secretKey is used to authenticate Stripe API calls.
// The webhookSecret is used to verify incoming webhook signatures.
func NewStripeService(secretKey, webhookSecret string, prices PriceConfig) Service {
	stripe.Key = secretKey

	return &stripeService{
		webhookSecret: webhookSecret,
		prices:        prices,
		priceToPlan:   priceMap(prices),
	}
}

func priceMap(prices PriceConfig) map[string]domain.Plan {
	m := make(map[string]domain.Plan)
	for _, id := range prices.PremiumPriceIDs {
		if id != "" {
			m[id] = domain.PlanPremium
		}
	}
	for _, id := range prices.ProPriceIDs {
		if id != "" {
			m[id] = domain.PlanPro
		}
	}
	return m
}

func (s *stripeService) CreateCustomer(email, userID string) (string, error) {
	params := &stripe.CustomerParams{}
	if email != "" {
		params.Email = stripe.String(email)
	}
	params.AddMetadata("user_id", userID)

	c, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create customer: %w", err)
	}
	return c.ID, nil
}

func (s *stripeService) CreateCheckoutSession(customerID, userID string, plan domain.Plan, successURL, cancelURL string) (string, error) {
	priceID := s.priceForPlan(plan)
	if priceID == "" {
		return "", fmt.Errorf("no stripe price configured for plan %q", plan)
	}

	params := &stripe.CheckoutSessionParams{
		Customer:          stripe.String(customerID),
		ClientReferenceID: stripe.String(userID),
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create checkout session: %w", err)
	}
	return sess.URL, nil
}

func (s *stripeService) CreatePortalSession(customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	sess, err := billingportalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create portal session: %w", err)
	}
	return sess.URL, nil
}

func (s *stripeService) VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("stripe webhook signature verification failed: %w", err)
	}
	return event, nil
}

func (s *stripeService) PlanForSubscription(sub *stripe.Subscription) domain.Plan {
	return planForSubscription(s.priceToPlan, sub)
}

func (s *stripeService) priceForPlan(plan domain.Plan) string {
	var ids []string
	switch plan {
	case domain.PlanPremium:
		ids = s.prices.PremiumPriceIDs
	case domain.PlanPro:
		ids = s.prices.ProPriceIDs
	}
	for _, id := range ids {
		if id != "" {
			return id
		}
	}
	return ""
}

// planForSubscription picks the highest plan among the subscription's
// items. Unknown prices contribute nothing.
func planForSubscription(priceToPlan map[string]domain.Plan, sub *stripe.Subscription) domain.Plan {
	if sub == nil {
		return domain.PlanFree
	}
	switch sub.Status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing, stripe.SubscriptionStatusPastDue:
	default:
		return domain.PlanFree
	}
	if sub.Items == nil {
		return domain.PlanFree
	}

	plan := domain.PlanFree
	for _, item := range sub.Items.Data {
		if item == nil || item.Price == nil {
			continue
		}
		switch priceToPlan[item.Price.ID] {
		case domain.PlanPro:
			return domain.PlanPro
		case domain.PlanPremium:
			plan = domain.PlanPremium
		}
	}
	return plan
}
