package eventbus

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"dispatch-ai/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublishSubscribe(t *testing.T) {
	b := New(testLogger())
	defer b.Close()

	got := make(chan domain.Event, 1)
	b.Subscribe(domain.EventDispatchCompleted, func(_ context.Context, e domain.Event) {
		got <- e
	})

	b.Publish(context.Background(), domain.Event{
		Type:      domain.EventDispatchCompleted,
		Timestamp: time.Now(),
		RequestID: "req-1",
	})

	select {
	case e := <-got:
		if e.RequestID != "req-1" {
			t.Errorf("got request ID %q", e.RequestID)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestTypedSubscriptionFilters(t *testing.T) {
	b := New(testLogger())

	var count atomic.Int32
	b.Subscribe(domain.EventDispatchFailed, func(context.Context, domain.Event) {
		count.Add(1)
	})

	b.Publish(context.Background(), domain.Event{Type: domain.EventDispatchCompleted})
	b.Publish(context.Background(), domain.Event{Type: domain.EventDispatchFailed})
	b.Close()

	if n := count.Load(); n != 1 {
		t.Errorf("handler ran %d times, want 1", n)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New(testLogger())

	var count atomic.Int32
	unsub := b.Subscribe(domain.EventAgentHeartbeat, func(context.Context, domain.Event) {
		count.Add(1)
	})
	unsub()

	b.Publish(context.Background(), domain.Event{Type: domain.EventAgentHeartbeat})
	b.Close()

	if n := count.Load(); n != 0 {
		t.Errorf("handler ran %d times after unsubscribe", n)
	}
}

func TestHandlerPanicIsContained(t *testing.T) {
	b := New(testLogger())

	delivered := make(chan struct{})
	b.Subscribe(domain.EventTaskStarted, func(context.Context, domain.Event) {
		panic("handler bug")
	})
	b.Subscribe(domain.EventTaskStarted, func(context.Context, domain.Event) {
		close(delivered)
	})

	b.Publish(context.Background(), domain.Event{Type: domain.EventTaskStarted})

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("second handler starved by panicking first handler")
	}
	b.Close()
}

func TestPublishAfterClose(t *testing.T) {
	b := New(testLogger())

	var count atomic.Int32
	b.Subscribe(domain.EventTaskReleased, func(context.Context, domain.Event) {
		count.Add(1)
	})

	b.Close()
	b.Publish(context.Background(), domain.Event{Type: domain.EventTaskReleased})
	b.Close() // idempotent

	if n := count.Load(); n != 0 {
		t.Errorf("handler ran %d times after close", n)
	}
}

func TestCloseDrainsInFlight(t *testing.T) {
	b := New(testLogger())

	var finished atomic.Bool
	b.Subscribe(domain.EventRequestRouted, func(context.Context, domain.Event) {
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
	})

	b.Publish(context.Background(), domain.Event{Type: domain.EventRequestRouted})
	b.Close()

	if !finished.Load() {
		t.Error("Close returned before in-flight handler finished")
	}
}
