// Package events provides the in-process event bus infrastructure used for
// decoupled communication between domain modules. It is part of the platform
// layer and carries no business logic.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event.
type Event interface {
	// EventName returns a unique identifier for the event type.
	EventName() string
	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time
}

// BaseEvent carries the fields shared by all events. Embed it and set it via
// NewBaseEvent at publish time.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler processes events it has subscribed to. A module typically
// implements Handle with a type switch over its subscribed events.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// Bus publishes domain events to subscribed handlers.
type Bus interface {
	// Publish delivers the event to all handlers registered for its name.
	// Delivery is asynchronous; handler failures never reach the publisher.
	Publish(ctx context.Context, event Event)

	// PublishSync delivers the event sequentially and returns the first
	// handler error.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler for the name returned by
	// Event.EventName().
	Subscribe(eventName string, handler Handler)
}
