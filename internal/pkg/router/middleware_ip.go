package router

import (
	"net"
	"net/http"
	"strings"
)

// clientIPHeaders are consulted in order; the first parseable address wins.
var clientIPHeaders = []string{"True-Client-IP", "X-Real-IP", "X-Forwarded-For"}

func middlewareIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := realIP(r); ip != "" {
			r.RemoteAddr = ip
		}
		next.ServeHTTP(w, r)
	})
}

func realIP(r *http.Request) string {
	for _, header := range clientIPHeaders {
		v, _, _ := strings.Cut(r.Header.Get(header), ",")
		if v = strings.TrimSpace(v); net.ParseIP(v) != nil {
			return v
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return ""
}
