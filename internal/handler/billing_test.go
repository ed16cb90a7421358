package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
)

type fakeSubscriptionService struct {
	checkoutPlan    domain.Plan
	checkoutSuccess string
	checkoutCancel  string
	portalReturn    string
	linkedUser      uuid.UUID
	linkedCustomer  string
	appliedCustomer string
	appliedPlan     domain.Plan
	err             error
}

func (f *fakeSubscriptionService) Checkout(ctx context.Context, userID uuid.UUID, plan domain.Plan, successURL, cancelURL string) (string, error) {
	f.checkoutPlan = plan
	f.checkoutSuccess = successURL
	f.checkoutCancel = cancelURL
	if f.err != nil {
		return "", f.err
	}
	return "https://checkout.stripe.com/c/pay/cs_test", nil
}

func (f *fakeSubscriptionService) Portal(ctx context.Context, userID uuid.UUID, returnURL string) (string, error) {
	f.portalReturn = returnURL
	if f.err != nil {
		return "", f.err
	}
	return "https://billing.stripe.com/p/session/test", nil
}

func (f *fakeSubscriptionService) LinkCustomer(ctx context.Context, userID uuid.UUID, customerID string) error {
	f.linkedUser = userID
	f.linkedCustomer = customerID
	return f.err
}

func (f *fakeSubscriptionService) ApplyPlan(ctx context.Context, customerID string, plan domain.Plan) error {
	f.appliedCustomer = customerID
	f.appliedPlan = plan
	return f.err
}

// =============================================================================
// Checkout and portal
// =============================================================================

func newBillingMux(subs *fakeSubscriptionService) *http.ServeMux {
	mux := http.NewServeMux()
	NewBillingHandler(subs, "https://app.careerlift.io/", discardLogger()).RegisterRoutes(mux, passThrough)
	return mux
}

func TestBilling_Checkout(t *testing.T) {
	subs := &fakeSubscriptionService{}
	rec := httptest.NewRecorder()
	newBillingMux(subs).ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/billing/checkout", `{"plan":" Premium "}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp RedirectResponse
	decodeBody(t, rec, &resp)
	if !strings.HasPrefix(resp.URL, "https://checkout.stripe.com/") {
		t.Errorf("unexpected url %q", resp.URL)
	}
	if subs.checkoutPlan != domain.PlanPremium {
		t.Errorf("plan = %q, want premium", subs.checkoutPlan)
	}
	if subs.checkoutSuccess != "https://app.careerlift.io/billing/success?session_id={CHECKOUT_SESSION_ID}" {
		t.Errorf("success url = %q", subs.checkoutSuccess)
	}
	if subs.checkoutCancel != "https://app.careerlift.io/pricing" {
		t.Errorf("cancel url = %q", subs.checkoutCancel)
	}
}

func TestBilling_CheckoutErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"bad plan", domain.NewValidationError("subscription.checkout", "plan", "must be premium or pro"), http.StatusBadRequest},
		{"stripe down", domain.Gateway(errors.New("api error"), "subscription.checkout", "Billing provider error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newBillingMux(&fakeSubscriptionService{err: tt.err}).ServeHTTP(rec,
				authedRequest(http.MethodPost, "/api/v1/billing/checkout", `{"plan":"gold"}`))

			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestBilling_Portal(t *testing.T) {
	subs := &fakeSubscriptionService{}
	rec := httptest.NewRecorder()
	newBillingMux(subs).ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/billing/portal", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if subs.portalReturn != "https://app.careerlift.io/profile" {
		t.Errorf("return url = %q", subs.portalReturn)
	}
}

// =============================================================================
// Webhook
// =============================================================================

type fakeBilling struct {
	event     stripe.Event
	verifyErr error
	plan      domain.Plan
}

func (f *fakeBilling) CreateCustomer(email, userID string) (string, error) { return "cus_test", nil }

func (f *fakeBilling) CreateCheckoutSession(customerID, userID string, plan domain.Plan, successURL, cancelURL string) (string, error) {
	return "", nil
}

func (f *fakeBilling) CreatePortalSession(customerID, returnURL string) (string, error) {
	return "", nil
}

func (f *fakeBilling) VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error) {
	if f.verifyErr != nil {
		return stripe.Event{}, f.verifyErr
	}
	return f.event, nil
}

func (f *fakeBilling) PlanForSubscription(sub *stripe.Subscription) domain.Plan { return f.plan }

func stripeEvent(eventType, raw string) stripe.Event {
	return stripe.Event{
		ID:   "evt_test",
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: []byte(raw)},
	}
}

func postWebhook(h *WebhookHandler) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_CheckoutCompletedLinksCustomer(t *testing.T) {
	subs := &fakeSubscriptionService{}
	b := &fakeBilling{event: stripeEvent("checkout.session.completed",
		`{"id":"cs_test","client_reference_id":"`+testUserID.String()+`","customer":"cus_42"}`)}

	rec := postWebhook(NewWebhookHandler(b, subs, discardLogger()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if subs.linkedUser != testUserID || subs.linkedCustomer != "cus_42" {
		t.Errorf("linked %s to %q", subs.linkedUser, subs.linkedCustomer)
	}
}

func TestWebhook_SubscriptionEventsApplyPlan(t *testing.T) {
	tests := []struct {
		eventType string
		resolved  domain.Plan
		want      domain.Plan
	}{
		{"customer.subscription.created", domain.PlanPremium, domain.PlanPremium},
		{"customer.subscription.updated", domain.PlanPro, domain.PlanPro},
		{"customer.subscription.deleted", domain.PlanPro, domain.PlanFree},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			subs := &fakeSubscriptionService{}
			b := &fakeBilling{
				event: stripeEvent(tt.eventType, `{"id":"sub_1","status":"active","customer":"cus_42"}`),
				plan:  tt.resolved,
			}

			rec := postWebhook(NewWebhookHandler(b, subs, discardLogger()))

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if subs.appliedCustomer != "cus_42" || subs.appliedPlan != tt.want {
				t.Errorf("applied %q to %q, want %q", subs.appliedPlan, subs.appliedCustomer, tt.want)
			}
		})
	}
}

func TestWebhook_Responses(t *testing.T) {
	subEvent := stripeEvent("customer.subscription.updated", `{"id":"sub_1","customer":"cus_42"}`)

	tests := []struct {
		name    string
		billing *fakeBilling
		subErr  error
		status  int
	}{
		{"bad signature", &fakeBilling{verifyErr: errors.New("no signatures found")}, nil, http.StatusBadRequest},
		{"store unavailable", &fakeBilling{event: subEvent, plan: domain.PlanPro},
			domain.Unavailable(errors.New("conn refused"), "subscription.apply_plan", "Database unavailable"), http.StatusInternalServerError},
		{"unknown customer", &fakeBilling{event: subEvent, plan: domain.PlanPro},
			domain.NotFound("subscription.apply_plan", "billing customer", "cus_42"), http.StatusOK},
		{"unhandled type", &fakeBilling{event: stripeEvent("invoice.paid", `{}`)}, nil, http.StatusOK},
		{"bad client reference", &fakeBilling{event: stripeEvent("checkout.session.completed",
			`{"id":"cs_test","client_reference_id":"nope","customer":"cus_42"}`)}, nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postWebhook(NewWebhookHandler(tt.billing, &fakeSubscriptionService{err: tt.subErr}, discardLogger()))
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestWebhook_BillingDisabled(t *testing.T) {
	subs := &fakeSubscriptionService{}
	rec := postWebhook(NewWebhookHandler(nil, subs, discardLogger()))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if subs.appliedCustomer != "" || subs.linkedCustomer != "" {
		t.Error("nothing should be applied without billing")
	}
}
