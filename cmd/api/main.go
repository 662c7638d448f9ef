package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adityarw/portal-auth/internal/auth"
	"github.com/adityarw/portal-auth/internal/background"
	"github.com/adityarw/portal-auth/internal/config"
	"github.com/adityarw/portal-auth/internal/handlers"
	middlewareCustom "github.com/adityarw/portal-auth/internal/middleware"
	"github.com/adityarw/portal-auth/internal/routes"
	"github.com/adityarw/portal-auth/internal/services"
	"github.com/adityarw/portal-auth/internal/store"
	pkghttp "github.com/adityarw/portal-auth/pkg/http"
	pkglogger "github.com/adityarw/portal-auth/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	if cfg.Server.Env != "production" && cfg.Auth.JWTSecret == config.DefaultJWTSecret {
		logger.Warn("using the default JWT secret; override JWT_SECRET before deploying")
	}

	// In-memory state stores. All of this is lost on restart.
	attemptStore := store.NewAttemptStore(cfg.RateLimit.LoginMaxAttempts, cfg.RateLimit.LoginWindow)
	revocationStore := store.NewRevocationStore()

	// Token manager
	tokenManager := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)

	// Credential verifier for the single configured pair
	verifier := services.NewCredentialVerifier(cfg.Auth.Username, cfg.Auth.Password, cfg.Auth.PasswordHash)

	auditLogger := pkglogger.NewAuditLogger(logger)

	authService := services.NewAuthService(verifier, tokenManager, attemptStore, revocationStore, logger, auditLogger)

	cookieConfig := auth.CookieConfig{
		Secure:   cfg.Auth.CookieSecure,
		SameSite: cfg.Auth.CookieSameSite,
	}
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}

	authHandler := handlers.NewAuthHandler(authService, attemptStore, cookieConfig, ipConfig)

	// Cleanup manager sweeps idle limiter keys and expired revocations
	cleanupManager := background.NewCleanupManager(attemptStore, revocationStore, logger, cfg.Auth.CleanupInterval)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.CORSConfig{AllowedOrigin: cfg.Server.FrontendURL}))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middlewareCustom.Recover(logger))
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	rateLimit := middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.RateLimit.APIRequestsPerMinute}
	routes.RegisterRoutes(router, authHandler, tokenManager, revocationStore, rateLimit)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
