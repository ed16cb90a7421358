// Package middleware contains HTTP middleware for the careerlift API.
//
// Middleware functions follow the standard Go pattern of wrapping http.Handler.
// They are designed to be composed using a middleware stack approach.
package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/DukeRupert/careerlift/internal/auth"
	"github.com/DukeRupert/careerlift/internal/handler"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// =============================================================================
// Bearer Token Authentication
// =============================================================================

// tokenLeeway tolerates small clock differences with the token issuer.
const tokenLeeway = 30 * time.Second

// Claims are the JWT claims issued by the identity provider. The subject
// is the user ID.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies HS256 bearer tokens signed with a shared secret.
type AuthMiddleware struct {
	secret   []byte
	audience string
	logger   *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware. audience may be empty to
// skip the aud check.
func NewAuthMiddleware(secret, audience string, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		secret:   []byte(secret),
		audience: audience,
		logger:   logger,
	}
}

// RequireUser rejects requests without a valid bearer token and stores the
// verified principal in the request context.
//
// Flow:
//
//	Request -> RequireUser -> Handler
//	           |
//	           +-> Read Authorization header
//	           +-> Verify signature, expiry and subject
//	           +-> 401 on any failure
//	           +-> auth.SetPrincipal and call next handler
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}

		principal, err := m.Verify(token)
		if err != nil {
			m.logger.Info("bearer token rejected", "error", err, "path", r.URL.Path)
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}

		ctx := auth.SetPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Verify parses and validates a token and returns its principal.
func (m *AuthMiddleware) Verify(token string) (*auth.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(tokenLeeway),
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("token subject is not a user id: %w", err)
	}

	return &auth.Principal{UserID: userID, Email: claims.Email}, nil
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// =============================================================================
// Middleware Stack Helpers
// =============================================================================

// Stack composes multiple middleware functions into a single middleware.
//
// Middleware is applied in the order provided, meaning the first middleware
// in the slice is the outermost (runs first on request, last on response).
//
// Example:
//
//	stack := Stack(loggingMw, authMw.RequireUser)
//	mux.Handle("GET /api/v1/quota", stack(quotaHandler))
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

var _ func(http.Handler) http.Handler = (&AuthMiddleware{}).RequireUser
