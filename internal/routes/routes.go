package routes

import (
	"fmt"
	"net/http"

	"github.com/adityarw/portal-auth/internal/auth"
	"github.com/adityarw/portal-auth/internal/handlers"
	"github.com/adityarw/portal-auth/internal/middleware"
	pkghttp "github.com/adityarw/portal-auth/pkg/http"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	tokenManager *auth.TokenManager,
	revocations auth.RevocationChecker,
	rateLimit middleware.RateLimitConfig,
) {
	// Wrong method on a known path gets the same envelope as every failure
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		pkghttp.WriteMethodNotAllowed(w, fmt.Sprintf("Method %s not allowed", r.Method))
	})

	apiLimit := middleware.RateLimitByIP(rateLimit)

	// Public routes. The strict login limiter lives inside the auth service;
	// the general per-IP limiter still applies here.
	router.With(apiLimit).Post("/auth/login", authHandler.Login)
	router.With(apiLimit).Post("/auth/refresh", authHandler.Refresh)
	router.With(apiLimit).Get("/auth/verify", authHandler.Verify)

	// Logout is deliberately public: it must succeed for an already-expired
	// session so the client can always clear its cookies.
	router.With(apiLimit).Post("/auth/logout", authHandler.Logout)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager, revocations))
		r.Use(apiLimit)

		r.Get("/auth/attempts", authHandler.Attempts)
	})
}
