package domain

import (
	"context"
	"encoding/json"
	"time"
)

// EventType identifies the kind of event being published.
type EventType string

const (
	EventRequestRouted      EventType = "request.routed"
	EventClassifierFallback EventType = "classifier.fallback"

	EventDispatchStarted   EventType = "dispatch.started"
	EventDispatchCompleted EventType = "dispatch.completed"
	EventDispatchFailed    EventType = "dispatch.failed"

	EventAgentRegistered EventType = "pool.agent.registered"
	EventAgentRemoved    EventType = "pool.agent.removed"
	EventAgentUnhealthy  EventType = "pool.agent.unhealthy"
	EventAgentHeartbeat  EventType = "pool.agent.heartbeat"
	EventTaskStarted     EventType = "pool.task.started"
	EventTaskReleased    EventType = "pool.task.released"
)

// Event is the envelope published on the event bus.
type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// EventHandler is a callback invoked when an event is received.
type EventHandler func(ctx context.Context, event Event)

// EventBus provides a publish/subscribe mechanism for domain events.
type EventBus interface {
	// Publish sends an event to all matching subscribers.
	Publish(ctx context.Context, event Event)
	// Subscribe registers a handler for a specific event type.
	// Returns an unsubscribe function.
	Subscribe(eventType EventType, handler EventHandler) func()
	// Close drains in-flight handlers and prevents new publishes.
	Close()
}
