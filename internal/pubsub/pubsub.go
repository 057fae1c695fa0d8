// Package pubsub is the in-process message bus sign-in events travel on.
package pubsub

import "context"

// MetaContentType is the metadata key describing the payload encoding.
const MetaContentType = "content_type"

// Message is one event on the bus.
type Message struct {
	Topic    string
	Payload  []byte
	Metadata map[string]string
}

// NewJSONMessage builds a message carrying a JSON payload.
func NewJSONMessage(topic string, payload []byte) Message {
	return Message{
		Topic:    topic,
		Payload:  payload,
		Metadata: map[string]string{MetaContentType: "application/json"},
	}
}

// Handler processes a delivered message. A non-nil error requests redelivery.
type Handler func(ctx context.Context, msg Message) error

// Publisher sends messages.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Subscriber delivers messages of a topic to a handler in the background
// until ctx is canceled or the bus closes.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler Handler) error
}

// Bus publishes and subscribes.
type Bus interface {
	Publisher
	Subscriber
	Close() error
}
