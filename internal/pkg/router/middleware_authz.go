package router

import (
	"log/slog"
	"net/http"

	"github.com/anastasipancheva/miniapppass/internal/pkg/jwt"
	"github.com/casbin/casbin/v3"
)

// middlewareAuthorization enforces role policies on authenticated requests.
// The subject is the token role, the object the matched route pattern and
// the action the HTTP method.
func middlewareAuthorization(enforcer *casbin.Enforcer) Middleware {
	return func(next http.Handler) http.Handler {
		if enforcer == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := jwt.GetAuth(r.Context())
			if claims == nil {
				next.ServeHTTP(w, r)
				return
			}

			route := matchedRoutePath(r)
			ok, err := enforcer.Enforce(claims.Role, route, r.Method)
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to enforce policy", "role", claims.Role, "route", route, "error", err)
				writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
				return
			}
			if !ok {
				writeJSON(w, errorResponse{Message: "You do not have permission to access this resource"}, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
