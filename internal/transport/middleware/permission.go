package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dayflow-hq/dayflow/internal/auth"
)

// RequirePermissions gates a route on the caller holding at least one of
// the given permissions. It assumes the auth middleware already ran.
func RequirePermissions(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				writeForbidden(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if !user.HasAnyPermission(permissions...) {
				slog.Warn("access denied, missing permission",
					"user_id", user.ID,
					"role", user.Role,
					"required_permissions", permissions)
				writeForbidden(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeForbidden(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
