package inbound

import (
	"context"
	"net/http"

	"github.com/anastasipancheva/miniapppass/internal/notification/entity"
	"github.com/anastasipancheva/miniapppass/internal/notification/usecase"
	"github.com/anastasipancheva/miniapppass/internal/pkg/router"
)

type uc interface {
	List(ctx context.Context, in usecase.ListInput) (*usecase.ListOutput, error)
	Stream(ctx context.Context) <-chan entity.Notification
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/api/v1/notifications", end.ListNotifications)
}

// RegisterSSEEndpoint mounts the stream on the long-lived SSE router.
func RegisterSSEEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GETRaw("/api/v1/notifications/stream", http.HandlerFunc(end.StreamNotifications))
}
