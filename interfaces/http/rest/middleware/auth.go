package middleware

import (
	"net/http"
	"strings"

	"safesite-backend/application/ports"
	"safesite-backend/pkg/api"
	"safesite-backend/pkg/auth"
)

// Authenticate validates the bearer token on every request and places
// the resolved user in the request context.
func Authenticate(authenticator ports.Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				api.Error(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				api.Error(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			user, err := authenticator.Authenticate(r.Context(), parts[1])
			if err != nil {
				api.Error(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := auth.WithUser(r.Context(), auth.UserContext{
				UserID: user.ID,
				Email:  user.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
