package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact raised by an aggregate, e.g. "PurchaseOrderReceived".
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// BaseDomainEvent is embedded by concrete events to satisfy DomainEvent.
type BaseDomainEvent struct {
	ID         uuid.UUID `json:"id"`
	Kind       string    `json:"type"`
	At         time.Time `json:"timestamp"`
	SourceID   uuid.UUID `json:"aggregate_id"`
	SourceType string    `json:"aggregate_type"`
}

// NewBaseDomainEvent stamps a new event raised by the given aggregate.
func NewBaseDomainEvent(eventType, aggregateType string, aggregateID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:         uuid.New(),
		Kind:       eventType,
		At:         time.Now(),
		SourceID:   aggregateID,
		SourceType: aggregateType,
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID { return e.ID }
func (e *BaseDomainEvent) EventType() string { return e.Kind }
func (e *BaseDomainEvent) OccurredAt() time.Time { return e.At }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.SourceID }
func (e *BaseDomainEvent) AggregateType() string { return e.SourceType }

// EventHandler reacts to published events.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the event types to deliver; empty means every type.
	EventTypes() []string
}

// EventPublisher is what application services depend on to emit events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus routes published events to subscribed handlers.
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
