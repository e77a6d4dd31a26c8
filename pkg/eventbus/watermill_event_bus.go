package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/flowdeck/flowdeck/pkg/events"
)

// WatermillEventBus carries every canvas event over a single topic. Messages
// are keyed by session ID so per-session ordering survives partitioning on
// the kafka channel.
type WatermillEventBus struct {
	publisher     message.Publisher
	subscriber    message.Subscriber
	subscriptions map[events.EventType]EventHandler
}

func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber) EventBus {
	return &WatermillEventBus{
		publisher:     pub,
		subscriber:    sub,
		subscriptions: make(map[events.EventType]EventHandler),
	}
}

func (eb *WatermillEventBus) GenerateID() string {
	return watermill.NewULID()
}

func (eb *WatermillEventBus) Publish(ctx context.Context, key string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), payload)
	msg.Metadata.Set(events.EventMetadataKey, key)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))

	return eb.publisher.Publish(events.CanvasEventsTopic, msg)
}

func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	messages, err := eb.subscriber.Subscribe(ctx, events.CanvasEventsTopic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", events.CanvasEventsTopic, err)
	}

	go func() {
		for msg := range messages {
			eventType := events.EventType(msg.Metadata.Get(events.EventTypeMetadataKey))

			handler, exists := eb.subscriptions[eventType]
			if !exists {
				msg.Ack()

				continue
			}

			event, known := newEventForType(eventType)
			if !known {
				msg.Nack()

				continue
			}

			err := json.Unmarshal(msg.Payload, event)
			if err != nil {
				msg.Nack()

				continue
			}

			err = handler(ctx, event)
			if err != nil {
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}()

	return nil
}

func (eb *WatermillEventBus) Handle(eventType events.EventType, handler EventHandler) error {
	eb.subscriptions[eventType] = handler

	return nil
}

func (eb *WatermillEventBus) Close() error {
	err := eb.publisher.Close()
	if err != nil {
		return err
	}

	return eb.subscriber.Close()
}

// newEventForType maps a wire event type to a fresh struct to decode into.
// Unknown types are rejected so a newer producer on a shared broker cannot
// feed this instance events it does not understand.
func newEventForType(eventType events.EventType) (any, bool) {
	switch eventType {
	case events.NodeCreatedEvent:
		return &events.NodeCreated{}, true
	case events.NodeUpdatedEvent:
		return &events.NodeUpdated{}, true
	case events.NodeRemovedEvent:
		return &events.NodeRemoved{}, true
	case events.EdgeCreatedEvent:
		return &events.EdgeCreated{}, true
	case events.EdgeRemovedEvent:
		return &events.EdgeRemoved{}, true
	case events.OutputUpdatedEvent:
		return &events.OutputUpdated{}, true
	case events.OutputRemovedEvent:
		return &events.OutputRemoved{}, true
	case events.InputsInvalidatedEvent:
		return &events.InputsInvalidated{}, true
	case events.RunStartedEvent:
		return &events.RunStarted{}, true
	case events.RunSucceededEvent:
		return &events.RunSucceeded{}, true
	case events.RunFailedEvent:
		return &events.RunFailed{}, true
	default:
		return nil, false
	}
}
