package messaging

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Driver names accepted by messaging.driver.
const (
	DriverNSQ          = "nsq"
	DriverNATS         = "nats"
	DriverKafka        = "kafka"
	DriverGooglePubSub = "google-pubsub"
	// DriverLog writes events to the structured log instead of a broker.
	DriverLog = "log"
)

var ErrUnknownDriver = errors.New("messaging: unknown driver")

// FactoryOptions carries every driver's settings; only the selected one is read.
type FactoryOptions struct {
	NSQ    NSQConfig
	Kafka  KafkaConfig
	NATS   NATSConfig
	PubSub PubSubConfig
}

type builder func(ctx context.Context, opts FactoryOptions) (Messaging, error)

var builders = map[string]builder{
	DriverLog:          func(context.Context, FactoryOptions) (Messaging, error) { return NewLog(), nil },
	DriverNSQ:          func(_ context.Context, o FactoryOptions) (Messaging, error) { return NewNSQ(o.NSQ) },
	DriverKafka:        func(_ context.Context, o FactoryOptions) (Messaging, error) { return NewKafka(o.Kafka) },
	DriverNATS:         func(_ context.Context, o FactoryOptions) (Messaging, error) { return NewNATS(o.NATS) },
	DriverGooglePubSub: func(ctx context.Context, o FactoryOptions) (Messaging, error) { return NewPubSub(ctx, o.PubSub) },
}

// Drivers lists the accepted driver names in sorted order.
func Drivers() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewFromDriver builds the Messaging named by driver. An empty name selects
// the log driver.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Messaging, error) {
	name := strings.ToLower(strings.TrimSpace(driver))
	if name == "" {
		name = DriverLog
	}

	build, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownDriver, driver, strings.Join(Drivers(), ", "))
	}

	m, err := build(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("messaging: init %s: %w", name, err)
	}
	return m, nil
}
