package middleware

import (
	"context"
	"net/http"
	"strings"

	"tripagent/internal/auth"
	"tripagent/pkg/utils"
)

type contextKey string

const userKey contextKey = "user"

// RequireAuth validates the bearer token on every request and attaches the
// resolved user to the context. Anything invalid gets a 401.
func RequireAuth(tokens *auth.Tokens, users *auth.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				utils.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			email, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			user, err := users.ByEmail(r.Context(), email)
			if err != nil || !user.IsActive {
				utils.RespondError(w, http.StatusUnauthorized, "unknown or inactive user")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
		})
	}
}

// UserFrom returns the authenticated user stored by RequireAuth.
func UserFrom(ctx context.Context) (auth.User, bool) {
	user, ok := ctx.Value(userKey).(auth.User)
	return user, ok
}
