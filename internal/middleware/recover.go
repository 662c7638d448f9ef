package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	pkghttp "github.com/adityarw/portal-auth/pkg/http"
)

// Recover catches panics from the handler chain and downgrades them to a
// generic 500 envelope. The panic detail is logged server-side only; no
// internal error detail ever reaches the caller.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("panic in handler",
						slog.Any("panic", rec),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())))
					pkghttp.WriteInternalError(w, "An internal server error occurred")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
