// Package middleware provides HTTP middlewares for authentication,
// logging, rate limiting, and metrics.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/divya01062005/Ayurtrace/internal/service"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// TokenParser validates a bearer token and returns its claims.
type TokenParser interface {
	ParseToken(token string) (*service.Claims, error)
}

// BearerAuth enforces a valid bearer token on the wrapped routes and
// stores the parsed claims in the request context.
func BearerAuth(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, `{"error":"authorization required"}`, http.StatusUnauthorized)
				return
			}
			claims, err := parser.ParseToken(token)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts the authenticated claims stored by
// BearerAuth. Returns nil if the request was not authenticated.
func ClaimsFromContext(ctx context.Context) *service.Claims {
	claims, _ := ctx.Value(claimsKey).(*service.Claims)
	return claims
}

// RequireRole rejects authenticated requests whose token carries a
// different role.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil || !allowed[claims.Role] {
				http.Error(w, `{"error":"forbidden for this role"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
