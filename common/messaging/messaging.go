// Package messaging provides abstractions for message broker communication.
// It defines interfaces that allow services to publish audit events without
// being coupled to a specific broker implementation.
package messaging

import (
	"context"
	"time"
)

// Message represents a message received from or sent to a message broker.
type Message struct {
	// Subject is the topic/channel the message was published to.
	Subject string

	// Data is the raw message payload.
	Data []byte

	// Reply is an optional subject for request/reply patterns.
	Reply string

	// Metadata contains optional key-value pairs for message headers.
	Metadata map[string]string

	// Timestamp is when the message was published.
	Timestamp time.Time
}

// MessageHandler processes a received message.
// Return an error to indicate processing failure.
type MessageHandler func(ctx context.Context, msg *Message) error

// Subscription represents an active subscription to a subject.
type Subscription interface {
	// Unsubscribe stops receiving messages on this subscription.
	Unsubscribe() error

	// Subject returns the subject this subscription is listening to.
	Subject() string

	// IsValid returns true if the subscription is still active.
	IsValid() bool
}

// Publisher publishes messages to subjects.
type Publisher interface {
	// Publish sends a fire-and-forget message to the specified subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// PublishMsg sends a Message with full control over headers and metadata.
	PublishMsg(ctx context.Context, msg *Message) error

	// Close releases any resources held by the publisher.
	Close() error
}

// Subscriber subscribes to messages on subjects.
type Subscriber interface {
	// Subscribe creates a fan-out subscription to the specified subject.
	Subscribe(subject string, handler MessageHandler) (Subscription, error)

	// QueueSubscribe creates a queue subscription. Messages are
	// load-balanced across subscribers in the same queue group.
	QueueSubscribe(subject, queue string, handler MessageHandler) (Subscription, error)

	// Close releases any resources and unsubscribes all active subscriptions.
	Close() error
}

// Client combines Publisher and Subscriber interfaces.
type Client interface {
	Publisher
	Subscriber

	// Drain gracefully closes the connection, letting in-flight messages complete.
	Drain() error

	// IsConnected returns true if the client is connected to the broker.
	IsConnected() bool
}
