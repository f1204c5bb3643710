package inbound

import (
	"time"

	"github.com/anastasipancheva/miniapppass/internal/notification/entity"
)

type NotificationResponse struct {
	ID        string    `json:"id"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type ListNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

func (r ListNotificationsResponse) Meta() map[string]any {
	return map[string]any{"count": len(r.Notifications)}
}

func toNotificationResponse(n entity.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Severity:  string(n.Severity),
		Message:   n.Message,
		Timestamp: n.Timestamp,
	}
}
