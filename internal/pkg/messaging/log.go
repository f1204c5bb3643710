package messaging

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Log "publishes" by writing a structured log line. It is the default when
// no broker is configured.
type Log struct {
	closed atomic.Bool
}

// NewLog returns a log-backed publisher.
func NewLog() *Log {
	return &Log{}
}

// Publish logs the destination and body size.
func (l *Log) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}
	if l.closed.Load() {
		return PublishResult{}, ErrClosed
	}

	slog.InfoContext(ctx, "message published", "destination", destination, "bytes", len(msg.Body), "headers", len(msg.Headers))
	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Close marks the publisher closed.
func (l *Log) Close() error {
	l.closed.Store(true)
	return nil
}
