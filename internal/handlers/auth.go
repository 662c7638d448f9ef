package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/adityarw/portal-auth/internal/auth"
	"github.com/adityarw/portal-auth/internal/models"
	"github.com/adityarw/portal-auth/internal/services"
	pkghttp "github.com/adityarw/portal-auth/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, username, password, clientID string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Verify(ctx context.Context, accessToken string) (string, error)
	Logout(ctx context.Context, accessToken string) error
}

// LoginLogReader exposes the recent login attempt log
type LoginLogReader interface {
	Recent(n int) []models.LoginAttempt
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service    AuthServiceInterface
	attemptLog LoginLogReader
	cookies    auth.CookieConfig
	ipConfig   *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, attemptLog LoginLogReader, cookies auth.CookieConfig, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:    service,
		attemptLog: attemptLog,
		cookies:    cookies,
		ipConfig:   ipConfig,
	}
}

// Request DTOs

// LoginRequest represents the request body for login
type LoginRequest struct {
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// RefreshRequest represents the request body for token refresh
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Response DTOs

// LoginResponse is returned on successful login. RefreshToken is null unless
// the caller asked to be remembered.
type LoginResponse struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message"`
	Token        string  `json:"token"`
	RefreshToken *string `json:"refreshToken"`
	ExpiresIn    int     `json:"expiresIn"`
}

// RefreshResponse is returned on successful token refresh
type RefreshResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// VerifyResponse is returned for token verification
type VerifyResponse struct {
	Success bool   `json:"success"`
	Valid   bool   `json:"valid"`
	User    string `json:"user"`
	Message string `json:"message"`
}

// LogoutResponse is returned on logout
type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, "Username and password are required")
		return
	}

	clientID := pkghttp.ExtractClientIP(r, h.ipConfig)

	pair, err := h.service.Login(r.Context(), req.Username, req.Password, clientID)
	if err != nil {
		var rle *services.RateLimitError
		switch {
		case errors.As(err, &rle):
			pkghttp.WriteRateLimited(w, "Too many login attempts. Please try again later.", rle.RemainingMinutes())
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Invalid username or password")
		default:
			pkghttp.WriteInternalError(w, "An internal server error occurred")
		}
		return
	}

	auth.SetAuthTokenCookie(w, pair.AccessToken, pair.ExpiresIn, h.cookies)

	var refreshToken *string
	if req.RememberMe {
		auth.SetRefreshTokenCookie(w, pair.RefreshToken, refreshCookieMaxAge, h.cookies)
		refreshToken = &pair.RefreshToken
	}

	pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{
		Success:      true,
		Message:      "Login successful",
		Token:        pair.AccessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// refresh token cookie lifetime, 7 days in seconds
const refreshCookieMaxAge = 7 * 24 * 60 * 60

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, "Refresh token is required")
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrTokenExpired),
			errors.Is(err, models.ErrTokenMalformed),
			errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Invalid or expired token")
		default:
			pkghttp.WriteInternalError(w, "An internal server error occurred")
		}
		return
	}

	auth.SetAuthTokenCookie(w, pair.AccessToken, pair.ExpiresIn, h.cookies)
	auth.SetRefreshTokenCookie(w, pair.RefreshToken, refreshCookieMaxAge, h.cookies)

	pkghttp.WriteJSON(w, http.StatusOK, RefreshResponse{
		Success:      true,
		Message:      "Token refreshed",
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Verify handles GET /auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	tokenString, ok := auth.BearerToken(r)
	if !ok {
		pkghttp.WriteUnauthorizedInvalid(w, "Token not found")
		return
	}

	username, err := h.service.Verify(r.Context(), tokenString)
	if err != nil {
		pkghttp.WriteUnauthorizedInvalid(w, "Invalid or expired token")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, VerifyResponse{
		Success: true,
		Valid:   true,
		User:    username,
		Message: "Token valid",
	})
}

// AttemptsResponse wraps the recent login attempt log
type AttemptsResponse struct {
	Success  bool                  `json:"success"`
	Attempts []models.LoginAttempt `json:"attempts"`
}

// Attempts handles GET /auth/attempts. Requires authentication; registered
// behind the auth middleware.
func (h *AuthHandler) Attempts(w http.ResponseWriter, r *http.Request) {
	if h.attemptLog == nil {
		pkghttp.WriteInternalError(w, "An internal server error occurred")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	pkghttp.WriteJSON(w, http.StatusOK, AttemptsResponse{
		Success:  true,
		Attempts: h.attemptLog.Recent(limit),
	})
}

// Logout handles POST /auth/logout. Logout never requires authentication:
// calling it while already logged out still succeeds and clears cookies.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	tokenString, _ := auth.BearerToken(r)

	if err := h.service.Logout(r.Context(), tokenString); err != nil {
		pkghttp.WriteInternalError(w, "An internal server error occurred")
		return
	}

	auth.ClearAuthCookies(w, h.cookies)

	pkghttp.WriteJSON(w, http.StatusOK, LogoutResponse{
		Success: true,
		Message: "Logout successful",
	})
}
