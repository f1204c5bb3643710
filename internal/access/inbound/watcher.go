package inbound

import (
	"context"
	"log/slog"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/pkg/goroutine"
)

type expiryWatcher interface {
	WatchExpiry(ctx context.Context, interval time.Duration) error
}

// RegisterExpiryWatcher runs the expiry scan in the background until ctx is
// cancelled.
func RegisterExpiryWatcher(ctx context.Context, routine *goroutine.Manager, uc expiryWatcher, interval time.Duration) {
	scheduled := routine.Go(ctx, "access.expiry.watcher", func(ctx context.Context) error {
		slog.InfoContext(ctx, "expiry watcher started", "interval", interval.String())
		defer slog.InfoContext(ctx, "expiry watcher stopped")

		return uc.WatchExpiry(ctx, interval)
	})
	if !scheduled {
		slog.ErrorContext(ctx, "failed to start expiry watcher")
	}
}
