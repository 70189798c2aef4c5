// Package eventbus provides an in-process, goroutine-safe event bus used to
// surface routing and pool lifecycle events to external observers.
package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"dispatch-ai/internal/domain"
)

type subscription struct {
	id      uint64
	handler domain.EventHandler
}

// Bus fans events out to typed subscribers. Handlers run in their own
// goroutines; a panicking handler never takes down a dispatch.
type Bus struct {
	mu     sync.RWMutex
	typed  map[domain.EventType][]subscription
	nextID atomic.Uint64
	logger *slog.Logger
	wg     sync.WaitGroup
	closed atomic.Bool
}

// New creates an event bus.
func New(logger *slog.Logger) *Bus {
	return &Bus{
		typed:  make(map[domain.EventType][]subscription),
		logger: logger,
	}
}

// Publish fans out an event to matching subscribers. Publishing on a closed
// bus is a no-op.
func (b *Bus) Publish(ctx context.Context, event domain.Event) {
	if b.closed.Load() {
		return
	}

	b.mu.RLock()
	subs := make([]subscription, len(b.typed[event.Type]))
	copy(subs, b.typed[event.Type])
	b.mu.RUnlock()

	for _, sub := range subs {
		b.wg.Add(1)
		go func(sub subscription) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("event handler panicked",
						"event", string(event.Type),
						"panic", r,
					)
				}
			}()
			sub.handler(ctx, event)
		}(sub)
	}
}

// Subscribe registers a handler for a specific event type.
// Returns an unsubscribe function.
func (b *Bus) Subscribe(eventType domain.EventType, handler domain.EventHandler) func() {
	id := b.nextID.Add(1)
	sub := subscription{id: id, handler: handler}

	b.mu.Lock()
	b.typed[eventType] = append(b.typed[eventType], sub)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.typed[eventType]
		for i, s := range subs {
			if s.id == id {
				b.typed[eventType] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Close prevents new publishes and waits for in-flight handlers to finish.
// Close is idempotent.
func (b *Bus) Close() {
	if b.closed.Swap(true) {
		return
	}
	b.wg.Wait()
}

var _ domain.EventBus = (*Bus)(nil)
