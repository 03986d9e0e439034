package middleware

import (
	"net/http"
	"strings"

	"github.com/josh-kwaku/finance-tracker/internal/auth"
	"github.com/josh-kwaku/finance-tracker/internal/handler"
	"github.com/josh-kwaku/finance-tracker/internal/logging"
)

// Auth validates the bearer token and puts the owner id on the request
// context, along with a logger carrying it.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			claims, err := auth.ValidateToken(token, secret)
			if err != nil {
				logging.FromContext(r.Context()).Debug("token rejected", "error", err)
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			ctx := auth.ContextWithOwnerID(r.Context(), claims.OwnerID)
			ctx = logging.With(ctx, "user_id", claims.OwnerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
