package middleware

import (
	"net/http"

	"github.com/frahmantamala/hr-directory/internal"
	"github.com/frahmantamala/hr-directory/pkg/logger"
)

// UserContext tags the request logger with the authenticated user id. It
// must run after the auth middleware has stored the id.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := internal.UserIDFromContext(r.Context())
		if userID == 0 {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.WithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
