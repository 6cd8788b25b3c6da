package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/pkg/logger"
)

// RecoveryMiddleware turns a panic into the standard 500 body and logs the stack.
func RecoveryMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.FromOr(r.Context(), log).Error("panic recovered",
						"error", err,
						"method", r.Method,
						"url", r.URL.String(),
						"stack", string(debug.Stack()))

					writeJSON(w, http.StatusInternalServerError, internal.Response{Error: internal.ErrCodeInternal})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
