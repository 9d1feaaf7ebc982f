package middleware

import (
	"net/http"
	"time"

	"github.com/frahmantamala/hr-directory/internal"
)

// Timeout bounds the request context. Repositories pass that context to the
// database, so a slow query is cancelled rather than holding a connection.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := internal.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
