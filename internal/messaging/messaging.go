// Package messaging is the broker-neutral surface the notifier consumes
// failure events through. The nats subpackage is the only implementation.
package messaging

import (
	"context"
	"time"
)

// Message is one payload on the bus.
type Message struct {
	Subject string
	Data    []byte

	// Reply, when set, receives the invocation outcome.
	Reply string

	// Metadata carries message headers, X-Request-ID in particular.
	Metadata map[string]string

	// Timestamp is the local receive time.
	Timestamp time.Time
}

// MessageHandler handles one delivered message. A returned error is logged
// by the client; the message is not redelivered.
type MessageHandler func(ctx context.Context, msg *Message) error

// Subscription is a live interest in a subject.
type Subscription interface {
	Unsubscribe() error
	Subject() string
	IsValid() bool
}

// Publisher sends messages, carrying Metadata as headers.
type Publisher interface {
	PublishMsg(ctx context.Context, msg *Message) error
}

// Subscriber registers handlers. QueueSubscribe hands each message to one
// member of the queue group, which is how several notifier replicas avoid
// sending the same card twice.
type Subscriber interface {
	QueueSubscribe(subject, queue string, handler MessageHandler) (Subscription, error)
}

// Client is a connected broker session.
type Client interface {
	Publisher
	Subscriber

	// Drain lets in-flight handlers finish before closing.
	Drain() error
	IsConnected() bool
	Close() error
}
