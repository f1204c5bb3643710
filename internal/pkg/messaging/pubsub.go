package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"google.golang.org/api/option"
)

// ErrPubSubProjectIDRequired is returned when a ProjectID is required but missing.
var ErrPubSubProjectIDRequired = errors.New("messaging: pubsub project id is required")

// PubSubConfig configures the Google Pub/Sub implementation.
type PubSubConfig struct {
	ProjectID     string
	ClientOptions []option.ClientOption
}

// PubSub publishes to Google Pub/Sub topics. Headers become attributes.
type PubSub struct {
	client *pubsub.Client

	mu         sync.Mutex
	closed     bool
	publishers map[string]*pubsub.Publisher
}

// NewPubSub constructs a Pub/Sub client.
func NewPubSub(ctx context.Context, cfg PubSubConfig) (*PubSub, error) {
	if cfg.ProjectID == "" {
		return nil, ErrPubSubProjectIDRequired
	}

	c, err := pubsub.NewClient(ctx, cfg.ProjectID, cfg.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("messaging: pubsub new client: %w", err)
	}

	return &PubSub{client: c, publishers: map[string]*pubsub.Publisher{}}, nil
}

// Close stops publishers and closes the client.
func (p *PubSub) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	pubs := p.publishers
	p.publishers = nil
	p.mu.Unlock()

	for _, pub := range pubs {
		pub.Stop()
	}
	return p.client.Close()
}

// Publish sends a message and waits for the server-assigned id.
func (p *PubSub) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}

	pub, err := p.publisher(destination)
	if err != nil {
		return PublishResult{}, err
	}

	attrs := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		if h.Key != "" {
			attrs[h.Key] = string(h.Value)
		}
	}

	id, err := pub.Publish(ctx, &pubsub.Message{
		Data:        msg.Body,
		Attributes:  attrs,
		OrderingKey: string(msg.Key),
	}).Get(ctx)
	if err != nil {
		return PublishResult{}, fmt.Errorf("messaging: pubsub publish: %w", err)
	}

	return PublishResult{MessageID: id, Topic: destination, Timestamp: time.Now()}, nil
}

func (p *PubSub) publisher(topic string) (*pubsub.Publisher, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if pub, ok := p.publishers[topic]; ok {
		return pub, nil
	}

	pub := p.client.Publisher(topic)
	pub.EnableMessageOrdering = true
	p.publishers[topic] = pub
	return pub, nil
}
