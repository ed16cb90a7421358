package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrapeHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("careerlift_quota_decisions_total 3"))
	})
}

func TestMetricsAuthMiddleware(t *testing.T) {
	wrapped := NewMetricsAuthMiddleware("prom", "scrape-secret").Handler(scrapeHandler())

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"valid", func(r *http.Request) { r.SetBasicAuth("prom", "scrape-secret") }, http.StatusOK},
		{"no credentials", func(r *http.Request) {}, http.StatusUnauthorized},
		{"wrong user", func(r *http.Request) { r.SetBasicAuth("admin", "scrape-secret") }, http.StatusUnauthorized},
		{"wrong password", func(r *http.Request) { r.SetBasicAuth("prom", "scrape") }, http.StatusUnauthorized},
		{"empty pair", func(r *http.Request) { r.SetBasicAuth("", "") }, http.StatusUnauthorized},
		{"bearer scheme", func(r *http.Request) { r.Header.Set("Authorization", "Bearer scrape-secret") }, http.StatusUnauthorized},
		{"bad base64", func(r *http.Request) { r.Header.Set("Authorization", "Basic %%%") }, http.StatusUnauthorized},
		{"trailing junk", func(r *http.Request) {
			raw := base64.StdEncoding.EncodeToString([]byte("prom:scrape-secret\r\nX-Injected: 1"))
			r.Header.Set("Authorization", "Basic "+raw)
		}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if tt.status == http.StatusUnauthorized {
				if !strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), `Basic realm="metrics"`) {
					t.Errorf("unexpected challenge %q", rec.Header().Get("WWW-Authenticate"))
				}
				if strings.Contains(rec.Body.String(), "careerlift_") {
					t.Error("metrics must not leak on 401")
				}
			}
		})
	}
}

func TestMetricsAuthMiddleware_OpenWithoutCredentials(t *testing.T) {
	wrapped := NewMetricsAuthMiddleware("", "").Handler(scrapeHandler())

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsAuthMiddleware_PasswordOnly(t *testing.T) {
	wrapped := NewMetricsAuthMiddleware("", "token").Handler(scrapeHandler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("", "token")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
