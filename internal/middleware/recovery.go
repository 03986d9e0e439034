package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/josh-kwaku/finance-tracker/internal/handler"
	"github.com/josh-kwaku/finance-tracker/internal/logging"
	"github.com/josh-kwaku/finance-tracker/internal/metrics"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				metrics.PanicRecovered()
				log := logging.FromContext(r.Context())
				log.Error("panic recovered", "error", err, "path", r.URL.Path, "stack", string(debug.Stack()))
				handler.RespondAppError(w, handler.ErrInternalError, nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
