package inbound

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/notification/entity"
	"github.com/anastasipancheva/miniapppass/internal/pkg/jwt"
)

var (
	pingInterval = 25 * time.Second
	// reconnectDelay is advertised to EventSource clients once per stream.
	reconnectDelay = 3 * time.Second
)

// eventWriter frames server-sent events and flushes after each one.
type eventWriter struct {
	w http.ResponseWriter
	f http.Flusher
}

func (e eventWriter) comment(text string) error {
	if _, err := fmt.Fprintf(e.w, ": %s\n\n", text); err != nil {
		return err
	}
	e.f.Flush()
	return nil
}

func (e eventWriter) notification(n entity.Notification) error {
	payload, err := json.Marshal(toNotificationResponse(n))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(e.w, "id: %s\nevent: notification\ndata: %s\n\n", n.ID, payload); err != nil {
		return err
	}
	e.f.Flush()
	return nil
}

// StreamNotifications streams new notifications to the client using SSE.
// @Summary Stream notifications
// @Description Streams new notifications using Server-Sent Events (SSE).
// @Tags Notification
// @Security BearerAuth
// @Produce text/event-stream
// @Success 200 {string} string "SSE stream"
// @Failure 401 {string} string "Unauthorized"
// @Failure 500 {string} string "streaming unsupported"
// @Router /api/v1/notifications/stream [get]
func (h *HTTPEndpoint) StreamNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if jwt.GetAuth(ctx) == nil {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	// subscribe before the first write so nothing published in between is lost
	stream := h.uc.Stream(ctx)
	out := eventWriter{w: w, f: flusher}

	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(w, "retry: %d\n\n", reconnectDelay.Milliseconds()); err != nil {
		slog.ErrorContext(ctx, "failed to open notification stream", "error", err)
		return
	}
	if err := out.comment("connected"); err != nil {
		slog.ErrorContext(ctx, "failed to open notification stream", "error", err)
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if err := out.comment("ping"); err != nil {
				return
			}

		case n, ok := <-stream:
			if !ok {
				return
			}
			if err := out.notification(n); err != nil {
				slog.WarnContext(ctx, "notification stream closed", "notification_id", n.ID, "error", err)
				return
			}
		}
	}
}
