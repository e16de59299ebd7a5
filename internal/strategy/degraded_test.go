package strategy

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Dev0031/quanttrader/internal/eventbus"
)

// flakyBus fails every Publish until told to recover, recording every
// payload that ultimately got through.
type flakyBus struct {
	mu       sync.Mutex
	failing  bool
	received []interface{}
}

func (b *flakyBus) Publish(topic eventbus.Topic, payload interface{}, correlationID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failing {
		return errors.New("bus unavailable")
	}
	b.received = append(b.received, payload)
	return nil
}

func (b *flakyBus) Subscribe(topic eventbus.Topic, handler eventbus.Handler) {}
func (b *flakyBus) Close()                                                  {}

func (b *flakyBus) setFailing(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failing = v
}

func (b *flakyBus) receivedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.received)
}

func TestDegradedPublisherQueuesOnFailureAndDrains(t *testing.T) {
	bus := &flakyBus{failing: true}
	p := NewDegradedPublisher(bus)

	p.Publish(eventbus.TopicStrategySignal, "signal-1", "corr-1")

	if depth := p.QueueDepth(); depth != 1 {
		t.Fatalf("expected queue depth 1 while bus is down, got %d", depth)
	}

	bus.setFailing(false)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.QueueDepth() == 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if depth := p.QueueDepth(); depth != 0 {
		t.Fatalf("expected queue to drain once bus recovered, depth=%d", depth)
	}
	if bus.receivedCount() != 1 {
		t.Fatalf("expected bus to receive the queued signal, got %d", bus.receivedCount())
	}
}

func TestDegradedPublisherDropsOldestAtCapacity(t *testing.T) {
	bus := &flakyBus{failing: true}
	p := NewDegradedPublisher(bus)

	for i := 0; i < degradedQueueCapacity+10; i++ {
		p.Publish(eventbus.TopicStrategySignal, i, "corr")
	}

	if depth := p.QueueDepth(); depth != degradedQueueCapacity {
		t.Fatalf("expected queue capped at %d, got %d", degradedQueueCapacity, depth)
	}

	p.mu.Lock()
	oldest := p.queue[0].payload
	p.mu.Unlock()
	if oldest != 10 {
		t.Fatalf("expected the oldest 10 entries dropped, oldest remaining payload is %v", oldest)
	}
}

func TestDegradedPublisherPublishesDirectlyWhenBusHealthy(t *testing.T) {
	bus := &flakyBus{}
	p := NewDegradedPublisher(bus)

	p.Publish(eventbus.TopicStrategySignal, "signal-1", "corr-1")

	if p.QueueDepth() != 0 {
		t.Fatalf("expected no queueing when bus accepts the publish, depth=%d", p.QueueDepth())
	}
	if bus.receivedCount() != 1 {
		t.Fatalf("expected bus to receive the signal directly, got %d", bus.receivedCount())
	}
}
