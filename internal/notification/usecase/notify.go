package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/anastasipancheva/miniapppass/internal/notification/entity"
	"github.com/anastasipancheva/miniapppass/internal/shared/event"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Notify appends msg to the feed and fans it out to open streams. Empty
// messages are dropped.
func (s *Usecase) Notify(ctx context.Context, msg event.NotificationMessage) {
	ctx, span := s.startSpan(ctx, "Notify")
	defer span.End()

	if strings.TrimSpace(msg.Message) == "" {
		slog.WarnContext(ctx, "dropping empty notification", "severity", string(msg.Severity))
		return
	}

	severity := msg.Severity
	switch severity {
	case event.SeverityInfo, event.SeverityWarning, event.SeverityError:
	default:
		severity = event.SeverityInfo
	}

	n := entity.Notification{
		ID:        s.uuid.Generate(),
		Severity:  severity,
		Message:   msg.Message,
		Timestamp: s.clock.Now(),
	}

	s.feed.Append(ctx, n)
	s.publish(n)

	if s.raised != nil {
		s.raised.Add(ctx, 1, metric.WithAttributes(attribute.String("severity", string(severity))))
	}
	slog.InfoContext(ctx, "notification raised", "id", n.ID, "severity", string(severity), "message", n.Message)
}
