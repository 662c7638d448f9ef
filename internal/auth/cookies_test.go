package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func testCookieConfig() CookieConfig {
	return CookieConfig{Secure: true, SameSite: "strict"}
}

func findCookie(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestSetAuthTokenCookie(t *testing.T) {
	w := httptest.NewRecorder()
	SetAuthTokenCookie(w, "token-value", 1800, testCookieConfig())

	cookie := findCookie(t, w.Result().Cookies(), AuthTokenCookie)
	if cookie.Value != "token-value" {
		t.Errorf("value: got %q, want token-value", cookie.Value)
	}
	if cookie.MaxAge != 1800 {
		t.Errorf("MaxAge: got %d, want 1800", cookie.MaxAge)
	}
	if !cookie.HttpOnly {
		t.Error("HttpOnly: got false, want true")
	}
	if !cookie.Secure {
		t.Error("Secure: got false, want true")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("SameSite: got %v, want strict", cookie.SameSite)
	}
}

func TestClearAuthCookies(t *testing.T) {
	w := httptest.NewRecorder()
	ClearAuthCookies(w, testCookieConfig())

	cookies := w.Result().Cookies()
	for _, name := range []string{AuthTokenCookie, RefreshTokenCookie} {
		cookie := findCookie(t, cookies, name)
		if cookie.Value != "" {
			t.Errorf("%s value: got %q, want empty", name, cookie.Value)
		}
		// A parsed Max-Age=0 is represented as MaxAge=-1
		if cookie.MaxAge >= 0 {
			t.Errorf("%s MaxAge: got %d, want negative (deleted)", name, cookie.MaxAge)
		}
	}
}

func TestGetRefreshTokenCookie(t *testing.T) {
	req := httptest.NewRequest("POST", "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "refresh-value"})

	value, err := GetRefreshTokenCookie(req)
	if err != nil {
		t.Fatalf("GetRefreshTokenCookie = %v, want nil", err)
	}
	if value != "refresh-value" {
		t.Errorf("value: got %q, want refresh-value", value)
	}
}
