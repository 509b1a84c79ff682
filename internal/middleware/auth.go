package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/adminbank/backend/internal/logger"
	"github.com/adminbank/backend/internal/models"
	"github.com/adminbank/backend/internal/services"
	"go.uber.org/zap"
)

type contextKey struct{}

var claimsKey = contextKey{}

// SessionResolver turns a bearer token into session claims.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*services.SessionClaims, error)
}

// Claims returns the session attached by Authenticated.
func Claims(ctx context.Context) (*services.SessionClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*services.SessionClaims)
	return claims, ok && claims != nil
}

// WithClaims attaches session claims to ctx.
func WithClaims(ctx context.Context, claims *services.SessionClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Authenticated reads the session from the cookie, falling back to an
// Authorization: Bearer header.
func Authenticated(resolver SessionResolver, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractToken(r, cookieName)
			if !ok {
				services.SendErrorResponse(w, "Authentication required", http.StatusUnauthorized, nil)
				return
			}

			claims, err := resolver.ResolveSession(r.Context(), token)
			if err != nil {
				if errors.Is(err, services.ErrInvalidSession) {
					services.SendErrorResponse(w, "Invalid or expired session", http.StatusUnauthorized, nil)
					return
				}
				logger.Log.Error("session resolution failed", zap.Error(err))
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func extractToken(r *http.Request, cookieName string) (string, bool) {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value, true
	}

	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
		return parts[1], true
	}
	return "", false
}

// RequireRole rejects sessions whose role is not role. It must run after
// Authenticated.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := Claims(r.Context())
			if !ok || claims.Role != role {
				services.SendErrorResponse(w, "User is not authorized to perform this action.", http.StatusForbidden, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
