// This file implements the Stripe webhook that keeps profile plans in sync
// with subscriptions.
//
// Route:
//   - POST /webhooks/stripe -> HandleStripeWebhook
//
// The route is public. Requests are authenticated by the Stripe signature.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/DukeRupert/careerlift/internal/billing"
	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/DukeRupert/careerlift/internal/service"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
)

// maxWebhookBytes bounds webhook payloads.
const maxWebhookBytes = 65536

// WebhookHandler handles incoming webhook events from Stripe.
type WebhookHandler struct {
	billing       billing.Service
	subscriptions service.SubscriptionService
	logger        *slog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
// billingService may be nil when Stripe is not configured.
func NewWebhookHandler(billingService billing.Service, subscriptions service.SubscriptionService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		billing:       billingService,
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// RegisterRoutes registers webhook routes on the provided mux.
func (h *WebhookHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /webhooks/stripe", h.HandleStripeWebhook)
}

// HandleStripeWebhook verifies and dispatches a Stripe event. Store
// failures answer 500 so Stripe retries the delivery; everything else is
// acknowledged.
func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	if h.billing == nil {
		h.logger.Warn("stripe webhook received but billing is not configured")
		w.WriteHeader(http.StatusOK)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	event, err := h.billing.VerifyWebhookSignature(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("webhook signature verification failed", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	h.logger.Info("stripe webhook received", "type", event.Type, "id", event.ID)

	// Acknowledged events are not replayed, so finish even if the sender
	// hangs up.
	ctx := context.WithoutCancel(r.Context())

	switch event.Type {
	case "checkout.session.completed":
		err = h.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.created", "customer.subscription.updated":
		err = h.handleSubscriptionChanged(ctx, event)
	case "customer.subscription.deleted":
		err = h.handleSubscriptionDeleted(ctx, event)
	default:
		h.logger.Debug("unhandled webhook event type", "type", event.Type)
	}

	if err != nil && domain.ErrorCode(err) == domain.EUNAVAILABLE {
		h.logger.Error("webhook processing failed", "error", err, "type", event.Type, "id", event.ID)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if err != nil {
		h.logger.Warn("webhook event ignored", "error", err, "type", event.Type, "id", event.ID)
	}

	w.WriteHeader(http.StatusOK)
}

// handleCheckoutCompleted links the customer to the user named in the
// session's client reference. The plan follows with the subscription event.
func (h *WebhookHandler) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return domain.Invalid("webhook.checkout_completed", "unparseable checkout session")
	}

	if session.Customer == nil || session.ClientReferenceID == "" {
		h.logger.Warn("checkout session missing customer or reference", "session_id", session.ID)
		return nil
	}

	userID, err := uuid.Parse(session.ClientReferenceID)
	if err != nil {
		return domain.Invalid("webhook.checkout_completed", "client reference is not a user ID")
	}

	return h.subscriptions.LinkCustomer(ctx, userID, session.Customer.ID)
}

func (h *WebhookHandler) handleSubscriptionChanged(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return domain.Invalid("webhook.subscription_changed", "unparseable subscription")
	}
	if sub.Customer == nil {
		h.logger.Warn("subscription event missing customer", "subscription_id", sub.ID)
		return nil
	}

	plan := h.billing.PlanForSubscription(&sub)
	h.logger.Info("subscription changed",
		"customer_id", sub.Customer.ID, "subscription_id", sub.ID, "status", sub.Status, "plan", plan)

	return h.subscriptions.ApplyPlan(ctx, sub.Customer.ID, plan)
}

func (h *WebhookHandler) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return domain.Invalid("webhook.subscription_deleted", "unparseable subscription")
	}
	if sub.Customer == nil {
		h.logger.Warn("subscription deleted event missing customer", "subscription_id", sub.ID)
		return nil
	}

	h.logger.Info("subscription deleted", "customer_id", sub.Customer.ID, "subscription_id", sub.ID)
	return h.subscriptions.ApplyPlan(ctx, sub.Customer.ID, domain.PlanFree)
}
