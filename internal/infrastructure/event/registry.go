package event

import (
	"slices"
	"sync"

	"github.com/hms/backend/internal/domain/shared"
)

type subscription struct {
	handler shared.EventHandler
	types   map[string]struct{} // nil matches every type
}

func (s subscription) matches(eventType string) bool {
	if s.types == nil {
		return true
	}
	_, ok := s.types[eventType]
	return ok
}

// HandlerRegistry keeps subscriptions in the order they were made.
type HandlerRegistry struct {
	mu   sync.RWMutex
	subs []subscription
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{}
}

// Register subscribes handler to eventTypes, or to every type when none are given.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	sub := subscription{handler: handler}
	if len(eventTypes) > 0 {
		sub.types = make(map[string]struct{}, len(eventTypes))
		for _, t := range eventTypes {
			sub.types[t] = struct{}{}
		}
	}

	r.mu.Lock()
	r.subs = append(r.subs, sub)
	r.mu.Unlock()
}

// Unregister drops every subscription of handler.
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	r.subs = slices.DeleteFunc(r.subs, func(s subscription) bool { return s.handler == handler })
	r.mu.Unlock()
}

// GetHandlers returns the handlers subscribed to eventType in subscription
// order. A handler subscribed more than once is returned once.
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []shared.EventHandler
	for _, s := range r.subs {
		if s.matches(eventType) && !slices.Contains(out, s.handler) {
			out = append(out, s.handler)
		}
	}
	return out
}

// Len is the number of distinct subscribed handlers.
func (r *HandlerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var seen []shared.EventHandler
	for _, s := range r.subs {
		if !slices.Contains(seen, s.handler) {
			seen = append(seen, s.handler)
		}
	}
	return len(seen)
}
