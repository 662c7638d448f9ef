package middleware

import (
	"net/http"
	"strconv"
	"time"

	pkghttp "github.com/adityarw/portal-auth/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimitConfig holds rate limiting configuration for the general API
// limiter. Unlike the login limiter, this one never resets on success.
type RateLimitConfig struct {
	RequestsPerMinute int
}

// DefaultAPIRateLimit returns the default general limit (30 requests per minute)
func DefaultAPIRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 30,
	}
}

// RateLimitByIP creates a middleware that rate limits requests by client IP
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			// httprate sets Retry-After before invoking this handler
			retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
			if err != nil || retryAfter <= 0 {
				retryAfter = 60
			}
			pkghttp.WriteTooManyRequests(w, "Too many requests. Please try again later.", retryAfter)
		}),
	)
}
