package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/adityarw/portal-auth/internal/auth"
	"github.com/adityarw/portal-auth/internal/models"
	"github.com/adityarw/portal-auth/internal/store"
	pkglogger "github.com/adityarw/portal-auth/pkg/logger"
)

// RateLimitError carries the time until the login window resets.
// It unwraps to models.ErrRateLimitExceeded so handlers can errors.Is it.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return models.ErrRateLimitExceeded
}

// RemainingMinutes reports the retry hint in whole minutes, rounded up
func (e *RateLimitError) RemainingMinutes() int {
	return int(math.Ceil(e.RetryAfter.Minutes()))
}

// TokenPair is the result of a successful login or refresh
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int // access token lifetime in seconds
	Username     string
}

// AuthService composes the credential verifier, the login rate limiter, the
// token manager and the revocation denylist into the authentication flows.
type AuthService struct {
	verifier    *CredentialVerifier
	tm          *auth.TokenManager
	attempts    *store.AttemptStore
	revocations *store.RevocationStore
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	verifier *CredentialVerifier,
	tm *auth.TokenManager,
	attempts *store.AttemptStore,
	revocations *store.RevocationStore,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		verifier:    verifier,
		tm:          tm,
		attempts:    attempts,
		revocations: revocations,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Login checks the rate limit for clientID, verifies the credentials and
// issues a token pair. A successful login resets the client's attempt
// counter; a denied or failed attempt is still recorded in the login log.
func (s *AuthService) Login(ctx context.Context, username, password, clientID string) (*TokenPair, error) {
	if username = strings.TrimSpace(username); username == "" {
		return nil, models.ErrUnauthorized
	}

	res := s.attempts.CheckAndConsume(clientID)
	if !res.Allowed {
		s.attempts.Record(clientID, username, false, res.Attempt)
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_rate_limited",
			ClientID:      clientID,
			Username:      username,
			AttemptNumber: res.Attempt,
			FailureReason: "rate_limit_exceeded",
		})
		return nil, &RateLimitError{RetryAfter: res.RetryAfter}
	}

	if !s.verifier.Verify(username, password) {
		s.attempts.Record(clientID, username, false, res.Attempt)
		s.logger.Info("login failed: invalid credentials")
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			ClientID:      clientID,
			Username:      username,
			AttemptNumber: res.Attempt,
			FailureReason: "invalid_credentials",
		})
		return nil, models.ErrUnauthorized
	}

	// Reset the window so a legitimate user gets a full fresh allowance
	s.attempts.Reset(clientID)
	s.attempts.Record(clientID, username, true, res.Attempt)

	pair, err := s.issuePair(username)
	if err != nil {
		s.logger.Error("failed to issue token pair", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("client_id", clientID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "login_success",
		ClientID:      clientID,
		Username:      username,
		Success:       true,
		AttemptNumber: res.Attempt,
	})

	return pair, nil
}

// Refresh validates a non-expired refresh-kind token and issues a brand-new
// access/refresh pair for the same subject. The presented refresh token is
// not revoked; it stays valid until its natural expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken = strings.TrimSpace(refreshToken); refreshToken == "" {
		return nil, models.ErrUnauthorized
	}

	claims, err := s.tm.ValidateToken(refreshToken)
	if err != nil {
		s.logger.Info("refresh token validation failed", slog.Any("error", err))
		return nil, err
	}

	if claims.Type != models.TokenTypeRefresh {
		s.logger.Warn("refresh attempt with non-refresh token")
		return nil, models.ErrUnauthorized
	}

	if s.revocations.IsRevoked(claims.ID) {
		s.logger.Info("refresh attempt with revoked token")
		return nil, models.ErrUnauthorized
	}

	pair, err := s.issuePair(claims.Username)
	if err != nil {
		s.logger.Error("failed to issue token pair", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogTokenEvent("token_refreshed", claims.Username, true)

	return pair, nil
}

// Verify validates an access token and returns its subject
func (s *AuthService) Verify(ctx context.Context, accessToken string) (string, error) {
	claims, err := s.tm.ValidateToken(accessToken)
	if err != nil {
		return "", err
	}

	if claims.Type != models.TokenTypeAccess {
		return "", models.ErrUnauthorized
	}

	if s.revocations.IsRevoked(claims.ID) {
		return "", models.ErrTokenRevoked
	}

	return claims.Username, nil
}

// Logout revokes the presented access token, if any. Logout is idempotent:
// a missing, invalid or already-revoked token still succeeds.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}

	claims, err := s.tm.ValidateToken(accessToken)
	if err != nil {
		// Nothing to revoke; the token can no longer authenticate anyway
		return nil
	}

	if claims.ExpiresAt != nil {
		s.revocations.Revoke(claims.ID, claims.ExpiresAt.Time)
	}

	s.auditLogger.LogTokenEvent("logout", claims.Username, true)
	return nil
}

func (s *AuthService) issuePair(username string) (*TokenPair, error) {
	accessToken, err := s.tm.GenerateAccessToken(username)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tm.GenerateRefreshToken(username)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.tm.AccessTokenExpiry().Seconds()),
		Username:     username,
	}, nil
}
