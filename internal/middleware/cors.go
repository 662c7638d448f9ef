package middleware

import (
	"net/http"
)

// CORSConfig holds CORS configuration. The portal front end is the single
// allowed origin.
type CORSConfig struct {
	AllowedOrigin string
}

// allowedHeaders mirrors what the front end sends with authenticated calls
const allowedHeaders = "X-Requested-With, Accept, Accept-Version, Content-Length, Content-Type, Date, Authorization"

// CORS sets the CORS headers on every response, including error responses,
// and short-circuits preflight OPTIONS requests with 200.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Origin", config.AllowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
