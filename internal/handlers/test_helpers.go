package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adityarw/portal-auth/internal/models"
	"github.com/adityarw/portal-auth/internal/services"
	pkghttp "github.com/adityarw/portal-auth/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is the uniform failure envelope
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) pkghttp.ErrorResponse {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.False(t, resp.Success, "Error envelope should have success:false")
	assert.Equal(t, expectedMessage, resp.Message, "Error message mismatch")
	return resp
}

// responseCookie finds a named Set-Cookie in the recorded response
func responseCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc   func(ctx context.Context, username, password, clientID string) (*services.TokenPair, error)
	RefreshFunc func(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	VerifyFunc  func(ctx context.Context, accessToken string) (string, error)
	LogoutFunc  func(ctx context.Context, accessToken string) error
}

func (m *MockAuthService) Login(ctx context.Context, username, password, clientID string) (*services.TokenPair, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password, clientID)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthService) Verify(ctx context.Context, accessToken string) (string, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, accessToken)
	}
	return "", models.ErrUnauthorized
}

func (m *MockAuthService) Logout(ctx context.Context, accessToken string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, accessToken)
	}
	return nil
}

// MockLoginLog implements LoginLogReader for testing
type MockLoginLog struct {
	Entries []models.LoginAttempt
}

func (m *MockLoginLog) Recent(n int) []models.LoginAttempt {
	if n > len(m.Entries) {
		n = len(m.Entries)
	}
	return m.Entries[len(m.Entries)-n:]
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))
	return req
}
