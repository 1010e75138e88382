package server

import (
	"context"
	"net/http"

	"github.com/OlmosJT/studio-tarjimon-io/identity"
)

type contextKey string

const userContextKey contextKey = "user"

// RequireSession reconciles the session before the handler runs. The cookies
// may be refreshed on the way; without a usable session the caller gets 401.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ctl, _ := s.newController(w, r)
			ctl.InitUser(r.Context())

			user := ctl.State().User()
			if user == nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error":             "unauthorized",
					"error_description": "authentication required",
					"redirect":          RouteLogin,
				})
				return
			}

			next(w, r.WithContext(context.WithValue(r.Context(), userContextKey, *user)))
		}
	}
}

// userFromContext returns the user RequireSession attached to the request
func userFromContext(ctx context.Context) (identity.User, bool) {
	user, ok := ctx.Value(userContextKey).(identity.User)
	return user, ok
}
