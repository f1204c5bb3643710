package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/anastasipancheva/miniapppass/internal/pkg/goerror"
	"github.com/anastasipancheva/miniapppass/internal/pkg/validator"
)

type errorResponse struct {
	Message string            `json:"message" example:"Credential not found"`
	Error   map[string]string `json:"error,omitempty"`
}

type successResponse struct {
	Message string         `json:"message" example:"Credential issued"`
	Data    any            `json:"data" swaggertype:"object"`
	Meta    map[string]any `json:"meta,omitempty" swaggertype:"object"`
}

// Optional behaviours a handler payload may implement to shape the envelope.
type (
	statusCoder interface{ StatusCode() int }
	messenger   interface{ Message() string }
	metaHolder  interface{ Meta() map[string]any }
)

const defaultSuccessMessage = "Request completed"

// writeError renders err as an errorResponse. Anything that is not a
// goerror is an unexpected failure and is reported as a bare 500.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		slog.ErrorContext(ctx, "unclassified handler error", "error", err)
		writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		return
	}

	status := gerr.StatusCode()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "handler failed", "code", gerr.Code().String(), "error", err)
	}

	body := errorResponse{Message: gerr.Msg(), Error: gerr.Fields()}
	var verr validator.V10ValidationError
	if errors.As(err, &verr) {
		body.Error = verr.Values()
	}
	if len(body.Error) == 0 {
		body.Error = nil
	}

	writeJSON(w, body, status)
}

// writeSuccess wraps resp in a successResponse. A nil payload or a 204
// status produces an empty body.
func writeSuccess(_ context.Context, w http.ResponseWriter, resp any) {
	status := http.StatusOK
	if sc, ok := resp.(statusCoder); ok {
		status = sc.StatusCode()
	}
	if resp == nil || status == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	body := successResponse{Message: defaultSuccessMessage, Data: resp}
	if m, ok := resp.(messenger); ok {
		body.Message = m.Message()
	}
	if m, ok := resp.(metaHolder); ok {
		body.Meta = m.Meta()
	}

	writeJSON(w, body, status)
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response body", "status", code, "error", err)
	}
}
