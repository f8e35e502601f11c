// Package event provides the in-process domain event bus.
package event

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/infrastructure/logger"
	"github.com/hms/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// InMemoryEventBus implements EventBus with synchronous in-process pub/sub.
// Handlers run in registration order on the publishing goroutine.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	running  atomic.Bool
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(log *zap.Logger) *InMemoryEventBus {
	if log == nil {
		log = zap.NewNop()
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   log,
	}
}

// Publish dispatches each event to its handlers.
// A failing or panicking handler does not stop the others; all handler
// errors are logged and returned joined.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	var errs []error
	for _, evt := range events {
		ctx, span := telemetry.StartSpan(ctx, "event.publish",
			telemetry.AttrEventType.String(evt.EventType()),
			telemetry.AttrAggregateID.String(evt.AggregateID().String()),
		)

		for _, handler := range b.registry.GetHandlers(evt.EventType()) {
			if err := b.dispatchToHandler(ctx, handler, evt); err != nil {
				logger.WithTraceContext(ctx, b.logger).Error("Event handler failed",
					zap.String("event_type", evt.EventType()),
					zap.String("event_id", evt.EventID().String()),
					zap.Error(err),
				)
				telemetry.RecordError(span, err)
				errs = append(errs, err)
			}
		}
		span.End()
	}
	return errors.Join(errs...)
}

// Subscribe registers a handler for the given event types, or for the
// handler's own EventTypes when none are given
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("Event handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start marks the bus as running
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("Event bus started", zap.Int("handlers", b.registry.Len()))
	return nil
}

// Stop marks the bus as stopped. Dispatch is synchronous, so nothing is in flight.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)
	b.logger.Info("Event bus stopped")
	return nil
}

// IsRunning reports whether Start has been called without a later Stop
func (b *InMemoryEventBus) IsRunning() bool {
	return b.running.Load()
}

// dispatchToHandler runs one handler, turning a panic into an error
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return handler.Handle(ctx, evt)
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
