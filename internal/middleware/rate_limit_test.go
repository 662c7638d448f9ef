package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pkghttp "github.com/adityarw/portal-auth/pkg/http"
)

func TestRateLimitByIP_AllowsUpToLimit(t *testing.T) {
	handler := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 30})(okHandler())

	for i := 1; i <= 30; i++ {
		req := httptest.NewRequest("GET", "/auth/verify", nil)
		req.RemoteAddr = "1.2.3.4:5678"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Code)
		}
	}

	req := httptest.NewRequest("GET", "/auth/verify", nil)
	req.RemoteAddr = "1.2.3.4:5678"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("request 31: status = %d, want 429", w.Code)
	}

	var resp pkghttp.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if resp.Success {
		t.Error("success = true, want false")
	}
	if resp.Message != "Too many requests. Please try again later." {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.RetryAfter <= 0 {
		t.Errorf("retryAfter = %d, want positive", resp.RetryAfter)
	}
}

func TestRateLimitByIP_KeysByClientIP(t *testing.T) {
	handler := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 1})(okHandler())

	first := httptest.NewRequest("GET", "/auth/verify", nil)
	first.RemoteAddr = "1.2.3.4:1000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, first)
	if w.Code != http.StatusOK {
		t.Fatalf("first client: status = %d, want 200", w.Code)
	}

	blocked := httptest.NewRequest("GET", "/auth/verify", nil)
	blocked.RemoteAddr = "1.2.3.4:2000"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, blocked)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("same IP, new port: status = %d, want 429", w.Code)
	}

	other := httptest.NewRequest("GET", "/auth/verify", nil)
	other.RemoteAddr = "5.6.7.8:1000"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, other)
	if w.Code != http.StatusOK {
		t.Fatalf("different IP: status = %d, want 200", w.Code)
	}
}
