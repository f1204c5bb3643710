// Package messaging publishes credential lifecycle events to a message
// broker (NATS, NSQ, Kafka or Google Pub/Sub) behind one Publisher
// interface, so door controllers subscribed to the broker stay in sync.
package messaging
