package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityarw/portal-auth/internal/auth"
	"github.com/adityarw/portal-auth/internal/models"
	"github.com/adityarw/portal-auth/internal/services"
	pkghttp "github.com/adityarw/portal-auth/pkg/http"
)

func newTestHandler(service AuthServiceInterface, attemptLog LoginLogReader) *AuthHandler {
	return NewAuthHandler(
		service,
		attemptLog,
		auth.CookieConfig{Secure: false, SameSite: "strict"},
		&pkghttp.IPConfig{},
	)
}

func testPair() *services.TokenPair {
	return &services.TokenPair{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresIn:    1800,
		Username:     "2117",
	}
}

func TestLogin_Handler_Success(t *testing.T) {
	mock := &MockAuthService{
		LoginFunc: func(ctx context.Context, username, password, clientID string) (*services.TokenPair, error) {
			assert.Equal(t, "2117", username)
			assert.Equal(t, "2117", password)
			assert.NotEmpty(t, clientID)
			return testPair(), nil
		},
	}
	handler := newTestHandler(mock, nil)

	req := NewTestRequest(t, "POST", "/auth/login", LoginRequest{Username: "2117", Password: "2117"})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	var resp LoginResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "Login successful", resp.Message)
	assert.Equal(t, "access-token", resp.Token)
	assert.Equal(t, 1800, resp.ExpiresIn)
	assert.Nil(t, resp.RefreshToken, "refresh token should be null without rememberMe")

	cookie := responseCookie(t, w, auth.AuthTokenCookie)
	assert.Equal(t, "access-token", cookie.Value)
	assert.Equal(t, 1800, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)

	// No refresh cookie without rememberMe
	for _, c := range w.Result().Cookies() {
		assert.NotEqual(t, auth.RefreshTokenCookie, c.Name)
	}
}

func TestLogin_Handler_RememberMe(t *testing.T) {
	mock := &MockAuthService{
		LoginFunc: func(ctx context.Context, username, password, clientID string) (*services.TokenPair, error) {
			return testPair(), nil
		},
	}
	handler := newTestHandler(mock, nil)

	req := NewTestRequest(t, "POST", "/auth/login", LoginRequest{Username: "2117", Password: "2117", RememberMe: true})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	var resp LoginResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	require.NotNil(t, resp.RefreshToken)
	assert.Equal(t, "refresh-token", *resp.RefreshToken)

	cookie := responseCookie(t, w, auth.RefreshTokenCookie)
	assert.Equal(t, "refresh-token", cookie.Value)
	assert.Equal(t, refreshCookieMaxAge, cookie.MaxAge)
}

func TestLogin_Handler_InvalidBody(t *testing.T) {
	handler := newTestHandler(&MockAuthService{}, nil)

	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	handler.Login(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "Invalid request body")
}

func TestLogin_Handler_MissingFields(t *testing.T) {
	handler := newTestHandler(&MockAuthService{}, nil)

	req := NewTestRequest(t, "POST", "/auth/login", LoginRequest{Username: "2117"})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "Username and password are required")
}

func TestLogin_Handler_InvalidCredentials(t *testing.T) {
	mock := &MockAuthService{
		LoginFunc: func(ctx context.Context, username, password, clientID string) (*services.TokenPair, error) {
			return nil, models.ErrUnauthorized
		},
	}
	handler := newTestHandler(mock, nil)

	req := NewTestRequest(t, "POST", "/auth/login", LoginRequest{Username: "2117", Password: "wrong"})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	AssertErrorResponse(t, w, http.StatusUnauthorized, "Invalid username or password")
}

func TestLogin_Handler_RateLimited(t *testing.T) {
	mock := &MockAuthService{
		LoginFunc: func(ctx context.Context, username, password, clientID string) (*services.TokenPair, error) {
			return nil, &services.RateLimitError{RetryAfter: 14 * time.Minute}
		},
	}
	handler := newTestHandler(mock, nil)

	req := NewTestRequest(t, "POST", "/auth/login", LoginRequest{Username: "2117", Password: "2117"})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	resp := AssertErrorResponse(t, w, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
	assert.Equal(t, 14, resp.RemainingTime)
}

func TestLogin_Handler_InternalError(t *testing.T) {
	mock := &MockAuthService{
		LoginFunc: func(ctx context.Context, username, password, clientID string) (*services.TokenPair, error) {
			return nil, errors.New("boom")
		},
	}
	handler := newTestHandler(mock, nil)

	req := NewTestRequest(t, "POST", "/auth/login", LoginRequest{Username: "2117", Password: "2117"})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	AssertErrorResponse(t, w, http.StatusInternalServerError, "An internal server error occurred")
}

func TestRefresh_Handler_Success(t *testing.T) {
	mock := &MockAuthService{
		RefreshFunc: func(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
			assert.Equal(t, "old-refresh", refreshToken)
			return testPair(), nil
		},
	}
	handler := newTestHandler(mock, nil)

	req := NewTestRequest(t, "POST", "/auth/refresh", RefreshRequest{RefreshToken: "old-refresh"})
	w := httptest.NewRecorder()
	handler.Refresh(w, req)

	var resp RefreshResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "Token refreshed", resp.Message)
	assert.Equal(t, "access-token", resp.Token)
	assert.Equal(t, "refresh-token", resp.RefreshToken)

	// Both cookies are rotated on refresh
	assert.Equal(t, "access-token", responseCookie(t, w, auth.AuthTokenCookie).Value)
	assert.Equal(t, "refresh-token", responseCookie(t, w, auth.RefreshTokenCookie).Value)
}

func TestRefresh_Handler_MissingToken(t *testing.T) {
	handler := newTestHandler(&MockAuthService{}, nil)

	req := NewTestRequest(t, "POST", "/auth/refresh", RefreshRequest{})
	w := httptest.NewRecorder()
	handler.Refresh(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "Refresh token is required")
}

func TestRefresh_Handler_InvalidToken(t *testing.T) {
	for _, serviceErr := range []error{models.ErrTokenExpired, models.ErrTokenMalformed, models.ErrUnauthorized} {
		mock := &MockAuthService{
			RefreshFunc: func(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
				return nil, serviceErr
			},
		}
		handler := newTestHandler(mock, nil)

		req := NewTestRequest(t, "POST", "/auth/refresh", RefreshRequest{RefreshToken: "stale"})
		w := httptest.NewRecorder()
		handler.Refresh(w, req)

		AssertErrorResponse(t, w, http.StatusUnauthorized, "Invalid or expired token")
	}
}

func TestVerify_Handler_Success(t *testing.T) {
	mock := &MockAuthService{
		VerifyFunc: func(ctx context.Context, accessToken string) (string, error) {
			assert.Equal(t, "good-token", accessToken)
			return "2117", nil
		},
	}
	handler := newTestHandler(mock, nil)

	req := withBearer(httptest.NewRequest("GET", "/auth/verify", nil), "good-token")
	w := httptest.NewRecorder()
	handler.Verify(w, req)

	var resp VerifyResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)
	assert.True(t, resp.Valid)
	assert.Equal(t, "2117", resp.User)
	assert.Equal(t, "Token valid", resp.Message)
}

func TestVerify_Handler_MissingToken(t *testing.T) {
	handler := newTestHandler(&MockAuthService{}, nil)

	req := httptest.NewRequest("GET", "/auth/verify", nil)
	w := httptest.NewRecorder()
	handler.Verify(w, req)

	resp := AssertErrorResponse(t, w, http.StatusUnauthorized, "Token not found")
	require.NotNil(t, resp.Valid)
	assert.False(t, *resp.Valid)
}

func TestVerify_Handler_InvalidToken(t *testing.T) {
	mock := &MockAuthService{
		VerifyFunc: func(ctx context.Context, accessToken string) (string, error) {
			return "", models.ErrTokenExpired
		},
	}
	handler := newTestHandler(mock, nil)

	req := withBearer(httptest.NewRequest("GET", "/auth/verify", nil), "stale-token")
	w := httptest.NewRecorder()
	handler.Verify(w, req)

	resp := AssertErrorResponse(t, w, http.StatusUnauthorized, "Invalid or expired token")
	require.NotNil(t, resp.Valid)
	assert.False(t, *resp.Valid)
}

func TestLogout_Handler_ClearsCookies(t *testing.T) {
	revoked := ""
	mock := &MockAuthService{
		LogoutFunc: func(ctx context.Context, accessToken string) error {
			revoked = accessToken
			return nil
		},
	}
	handler := newTestHandler(mock, nil)

	req := withBearer(httptest.NewRequest("POST", "/auth/logout", nil), "live-token")
	w := httptest.NewRecorder()
	handler.Logout(w, req)

	var resp LogoutResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "Logout successful", resp.Message)
	assert.Equal(t, "live-token", revoked)

	for _, name := range []string{auth.AuthTokenCookie, auth.RefreshTokenCookie} {
		cookie := responseCookie(t, w, name)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
	}
}

func TestLogout_Handler_WithoutToken(t *testing.T) {
	handler := newTestHandler(&MockAuthService{}, nil)

	req := httptest.NewRequest("POST", "/auth/logout", nil)
	w := httptest.NewRecorder()
	handler.Logout(w, req)

	var resp LogoutResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)
}

func TestAttempts_Handler(t *testing.T) {
	log := &MockLoginLog{}
	for i := 0; i < 60; i++ {
		log.Entries = append(log.Entries, models.LoginAttempt{
			Timestamp: time.Now(),
			ClientID:  "1.2.3.4",
			Username:  "2117",
			Success:   i%2 == 0,
		})
	}
	handler := newTestHandler(&MockAuthService{}, log)

	req := httptest.NewRequest("GET", "/auth/attempts", nil)
	w := httptest.NewRecorder()
	handler.Attempts(w, req)

	var resp AttemptsResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)
	assert.Len(t, resp.Attempts, 50, "default limit is 50")
}

func TestAttempts_Handler_LimitParam(t *testing.T) {
	log := &MockLoginLog{}
	for i := 0; i < 20; i++ {
		log.Entries = append(log.Entries, models.LoginAttempt{ClientID: "1.2.3.4"})
	}
	handler := newTestHandler(&MockAuthService{}, log)

	tests := []struct {
		query string
		want  int
	}{
		{"limit=5", 5},
		{"limit=0", 20},    // invalid, falls back to default
		{"limit=2000", 20}, // over cap, falls back to default
		{"limit=abc", 20},
	}

	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/auth/attempts?"+tt.query, nil)
		w := httptest.NewRecorder()
		handler.Attempts(w, req)

		var resp AttemptsResponse
		AssertJSONResponse(t, w, http.StatusOK, &resp)
		assert.Len(t, resp.Attempts, tt.want, "query %q", tt.query)
	}
}
