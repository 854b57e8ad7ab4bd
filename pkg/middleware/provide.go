package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hivehr/hivehr/pkg/constants"
)

// Provide stores a fixed value on the request context, keyed by a
// context key from pkg/constants. Used to hand the application and the
// database pool down to controllers.
func Provide(key constants.ContextKey, value any) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), key, value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
