package inbound

import (
	"github.com/anastasipancheva/miniapppass/internal/notification/usecase"
	"github.com/anastasipancheva/miniapppass/internal/pkg/router"
)

// HTTPEndpoint exposes the operator notification feed.
type HTTPEndpoint struct {
	uc uc
}

// @Summary List notifications
// @Description Returns the most recent notifications first.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Maximum entries (default 50, max 500)"
// @Success 200 {object} router.successResponse{data=ListNotificationsResponse} "Notifications"
// @Failure 400 {object} router.errorResponse "Invalid query"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/notifications [get]
func (h *HTTPEndpoint) ListNotifications(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt32("limit")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.List(r.Context(), usecase.ListInput{Limit: int(limit)})
	if err != nil {
		return nil, err
	}

	out := ListNotificationsResponse{Notifications: make([]NotificationResponse, 0, len(resp.Notifications))}
	for _, n := range resp.Notifications {
		out.Notifications = append(out.Notifications, toNotificationResponse(n))
	}

	return out, nil
}
