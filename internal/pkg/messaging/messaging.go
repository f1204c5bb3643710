package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrClosed is returned when publishing on a closed client.
var ErrClosed = errors.New("messaging: client closed")

// ErrDestinationRequired is returned when the topic/subject is empty.
var ErrDestinationRequired = errors.New("messaging: destination is required")

// Messaging is a broker-agnostic publishing client.
type Messaging interface {
	io.Closer
	Publisher
}

// Publisher publishes messages to a destination (topic/subject).
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// OutgoingMessage represents a broker-agnostic message to be published.
type OutgoingMessage struct {
	Body []byte

	// Key is used by Kafka for partitioning and by Pub/Sub as ordering key.
	Key []byte

	// Headers are dropped by brokers without header support (NSQ).
	Headers []Header
}

// Header is a key/value pair used for message headers.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries optional broker-specific publish metadata.
type PublishResult struct {
	MessageID string
	Topic     string
	Timestamp time.Time
}

// HeaderValue returns the first header named key.
func (m OutgoingMessage) HeaderValue(key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
