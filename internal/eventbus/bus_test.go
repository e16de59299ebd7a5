package eventbus

import (
	"sync"
	"testing"
)

func TestInProcessBusFIFOPerTopic(t *testing.T) {
	bus := NewInProcessBus("test")
	var mu sync.Mutex
	var got []int

	bus.Subscribe(TopicMarketTick, func(env Envelope) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, env.Payload.(int))
	})

	for i := 0; i < 5; i++ {
		if err := bus.Publish(TopicMarketTick, i, ""); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 5 {
		t.Fatalf("expected 5 events, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("expected FIFO order, got %v", got)
		}
	}
}

func TestInProcessBusMultipleSubscribers(t *testing.T) {
	bus := NewInProcessBus("test")
	var a, b int

	bus.Subscribe(TopicRiskAlerts, func(env Envelope) { a++ })
	bus.Subscribe(TopicRiskAlerts, func(env Envelope) { b++ })

	_ = bus.Publish(TopicRiskAlerts, "alert", "")

	if a != 1 || b != 1 {
		t.Fatalf("expected both subscribers to fire once, got a=%d b=%d", a, b)
	}
}

func TestInProcessBusHandlerPanicIsolated(t *testing.T) {
	bus := NewInProcessBus("test")
	var secondRan bool

	bus.Subscribe(TopicSystemHealth, func(env Envelope) { panic("boom") })
	bus.Subscribe(TopicSystemHealth, func(env Envelope) { secondRan = true })

	_ = bus.Publish(TopicSystemHealth, "x", "")

	if !secondRan {
		t.Fatal("expected second subscriber to run despite first panicking")
	}
}

func TestInProcessBusUnrelatedTopicsIsolated(t *testing.T) {
	bus := NewInProcessBus("test")
	var tickCount, alertCount int

	bus.Subscribe(TopicMarketTick, func(env Envelope) { tickCount++ })
	bus.Subscribe(TopicRiskAlerts, func(env Envelope) { alertCount++ })

	_ = bus.Publish(TopicMarketTick, 1, "")

	if tickCount != 1 || alertCount != 0 {
		t.Fatalf("expected only market.tick subscriber to fire, got tick=%d alert=%d", tickCount, alertCount)
	}
}
