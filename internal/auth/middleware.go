package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/adityarw/portal-auth/internal/models"
	pkghttp "github.com/adityarw/portal-auth/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key for storing token claims in context
	UserContextKey contextKey = "user"
	// TokenContextKey is the key for storing the raw bearer token in context
	TokenContextKey contextKey = "token"
)

// RevocationChecker reports whether a token ID has been revoked
type RevocationChecker interface {
	IsRevoked(jti string) bool
}

// Middleware validates bearer tokens and injects claims into the request
// context. The revocation checker may be nil, in which case only the
// signature and embedded expiry decide validity.
func Middleware(tm *TokenManager, revocations RevocationChecker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := BearerToken(r)
			if !ok {
				pkghttp.WriteUnauthorized(w, "Token not found")
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				pkghttp.WriteUnauthorized(w, userFacingTokenError(err))
				return
			}

			// Refresh tokens are only accepted by /auth/refresh
			if claims.Type != models.TokenTypeAccess {
				pkghttp.WriteUnauthorized(w, "Invalid or expired token")
				return
			}

			if revocations != nil && claims.ID != "" && revocations.IsRevoked(claims.ID) {
				pkghttp.WriteUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			ctx = context.WithValue(ctx, TokenContextKey, tokenString)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from the Authorization header
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}

	return parts[1], true
}

// GetUserFromContext extracts token claims from the request context
func GetUserFromContext(r *http.Request) *models.TokenClaims {
	claims, ok := r.Context().Value(UserContextKey).(*models.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

// GetTokenFromContext extracts the raw bearer token from the request context
func GetTokenFromContext(r *http.Request) string {
	token, ok := r.Context().Value(TokenContextKey).(string)
	if !ok {
		return ""
	}
	return token
}

// userFacingTokenError maps token validation errors to the message shown to
// the caller. Causes beyond expired vs malformed are never distinguished.
func userFacingTokenError(err error) string {
	switch {
	case errors.Is(err, models.ErrTokenExpired):
		return "Token has expired"
	case errors.Is(err, models.ErrTokenMalformed):
		return "Invalid token format"
	default:
		return "Invalid or expired token"
	}
}
