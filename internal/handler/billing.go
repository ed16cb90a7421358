// This file implements plan upgrades backed by Stripe.
//
// Routes handled:
//   - POST /api/v1/billing/checkout -> CreateCheckout
//   - POST /api/v1/billing/portal   -> OpenPortal
package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/DukeRupert/careerlift/internal/service"
)

// BillingHandler hands out hosted checkout and portal URLs. The client
// redirects the browser; plan changes arrive later through the webhook.
type BillingHandler struct {
	subscriptions service.SubscriptionService
	appURL        string
	logger        *slog.Logger
}

// NewBillingHandler creates a new BillingHandler. appURL is the frontend
// origin Stripe sends the user back to.
func NewBillingHandler(subscriptions service.SubscriptionService, appURL string, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		subscriptions: subscriptions,
		appURL:        strings.TrimRight(appURL, "/"),
		logger:        logger,
	}
}

// RegisterRoutes registers billing routes on the provided mux.
func (h *BillingHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("POST /api/v1/billing/checkout", requireUser(http.HandlerFunc(h.CreateCheckout)))
	mux.Handle("POST /api/v1/billing/portal", requireUser(http.HandlerFunc(h.OpenPortal)))
}

// CheckoutRequest is the body of POST /api/v1/billing/checkout.
type CheckoutRequest struct {
	Plan string `json:"plan"`
}

// RedirectResponse carries a hosted Stripe URL.
type RedirectResponse struct {
	URL string `json:"url"`
}

// CreateCheckout starts a checkout session for a paid plan.
func (h *BillingHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	const op = "handler.billing.checkout"

	principal, err := principalFrom(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req CheckoutRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	successURL := h.appURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}"
	cancelURL := h.appURL + "/pricing"

	url, err := h.subscriptions.Checkout(r.Context(), principal.UserID,
		domain.Plan(strings.ToLower(strings.TrimSpace(req.Plan))), successURL, cancelURL)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, RedirectResponse{URL: url})
}

// OpenPortal starts a customer portal session for managing the subscription.
func (h *BillingHandler) OpenPortal(w http.ResponseWriter, r *http.Request) {
	const op = "handler.billing.portal"

	principal, err := principalFrom(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	url, err := h.subscriptions.Portal(r.Context(), principal.UserID, h.appURL+"/profile")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, RedirectResponse{URL: url})
}
