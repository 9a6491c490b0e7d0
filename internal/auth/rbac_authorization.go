package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/transport"
)

type RBACAuthorization struct {
	*transport.BaseHandler
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{BaseHandler: transport.NewBaseHandler(logger)}
}

// RequireAdmin rejects callers that are not the administrator.
func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := internal.PrincipalFromContext(r.Context())
			if !ok {
				ra.WriteAppError(w, internal.ErrInvalidToken)
				return
			}

			if err := RequireAdmin(principal); err != nil {
				ra.Log(r).Warn("access denied: admin required", "user", principal.Email, "path", r.URL.Path)
				ra.HandleServiceError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
