package router

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/anastasipancheva/miniapppass/internal/pkg/stacktrace"
)

func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			//nolint:err113,errorlint // sentinel must propagate untouched
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			stack := debug.Stack()
			var frames any = string(stack)
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				frames = paths
			}
			slog.ErrorContext(r.Context(), "panic on the server",
				"because", rvr,
				"method", r.Method,
				"path", matchedRoutePath(r),
				"stack", frames,
			)

			writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
