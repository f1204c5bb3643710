package router

import (
	"net/http"
	"strconv"

	"github.com/anastasipancheva/miniapppass/internal/pkg/config"
)

// middlewareMaintenance answers 503 for routes listed in
// app.maintenance.endpoints, either as "/pattern" (every method) or as
// "METHOD /pattern".
func middlewareMaintenance(cfg config.Config) Middleware {
	blocked := make(map[string]struct{})
	retryAfter := 0
	if cfg != nil {
		for _, endpoint := range cfg.GetArray("app.maintenance.endpoints") {
			blocked[endpoint] = struct{}{}
		}
		retryAfter = int(cfg.GetDuration("app.maintenance.retry_after").Seconds())
	}

	return func(next http.Handler) http.Handler {
		if len(blocked) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			_, all := blocked[route]
			_, exact := blocked[routeKey(r.Method, route)]
			if !all && !exact {
				next.ServeHTTP(w, r)
				return
			}

			if retryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			}
			writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
		})
	}
}
