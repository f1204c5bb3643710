package router

import (
	"net/http"
	"strings"

	"github.com/anastasipancheva/miniapppass/internal/pkg/instrument"
	"github.com/anastasipancheva/miniapppass/internal/pkg/uid"
)

const (
	// HeaderCorrelationID is the canonical header used to track requests end-to-end.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is an accepted alternative header name used by some proxies.
	HeaderRequestID = "X-Request-ID"

	maxCorrelationIDLen = 128
)

// inboundCID returns the caller supplied correlation id, if it is usable.
func inboundCID(r *http.Request) string {
	for _, header := range []string{HeaderCorrelationID, HeaderRequestID} {
		v := r.Header.Get(header)
		if strings.ContainsAny(v, "\r\n") {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			return v[:min(len(v), maxCorrelationIDLen)]
		}
	}
	return ""
}

func middlewareCorrelationID(gen uid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := inboundCID(r)
			if cid == "" && gen != nil {
				cid = gen.Generate()
			}

			if cid != "" {
				w.Header().Set(HeaderCorrelationID, cid)
				r = r.WithContext(instrument.SetCorrelationID(r.Context(), cid))
			}

			next.ServeHTTP(w, r)
		})
	}
}
