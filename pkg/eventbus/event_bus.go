// Package eventbus carries canvas events between the session layer and its
// consumers, in-process by default and over kafka when configured.
package eventbus

import (
	"context"

	"github.com/flowdeck/flowdeck/pkg/events"
)

// Event is anything the bus can carry. Concrete types live in pkg/events.
type Event interface {
	GetType() events.EventType
}

// EventPublisher sends a single event. The key is the owning session ID and
// doubles as the partition key on channels that have one, which keeps each
// session's events in order.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// EventSubscriber delivers events to registered handlers. Every Handle call
// must happen before Subscribe starts the delivery loop.
type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventHandler receives a decoded event. A non-nil error nacks the message.
type EventHandler func(ctx context.Context, event interface{}) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
