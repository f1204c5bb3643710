package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	nsq "github.com/nsqio/go-nsq"
)

// ErrNSQProducerAddrRequired is returned when the producer address is missing.
var ErrNSQProducerAddrRequired = errors.New("messaging: nsq producer address is required")

// NSQConfig configures the NSQ implementation.
type NSQConfig struct {
	ProducerAddr   string
	ProducerConfig *nsq.Config
}

// NSQ publishes to NSQ topics. NSQ has no headers; only the body is sent.
type NSQ struct {
	producer *nsq.Producer

	mu     sync.Mutex
	closed bool
}

// NewNSQ constructs an NSQ producer.
func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	if cfg.ProducerAddr == "" {
		return nil, ErrNSQProducerAddrRequired
	}

	pcfg := cfg.ProducerConfig
	if pcfg == nil {
		pcfg = nsq.NewConfig()
	}

	p, err := nsq.NewProducer(cfg.ProducerAddr, pcfg)
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq new producer: %w", err)
	}
	p.SetLoggerLevel(nsq.LogLevelError)

	return &NSQ{producer: p}, nil
}

// Close stops the producer.
func (n *NSQ) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.closed {
		n.closed = true
		n.producer.Stop()
	}
	return nil
}

// Publish sends a message to an NSQ topic.
func (n *NSQ) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}

	n.mu.Lock()
	closed := n.closed
	n.mu.Unlock()
	if closed {
		return PublishResult{}, ErrClosed
	}

	if err := n.producer.Publish(destination, msg.Body); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nsq publish: %w", err)
	}

	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}
