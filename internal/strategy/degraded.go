package strategy

import (
	"sync"
	"time"

	"github.com/Dev0031/quanttrader/internal/eventbus"
	"github.com/rs/zerolog/log"
)

// degradedQueueCapacity bounds the local backlog kept while the event bus
// is rejecting publishes (section 4.3 degraded mode) - the same capacity
// eventbus.RemoteBus uses for its own per-topic queues.
const degradedQueueCapacity = 100

// degradedBackoff is the fixed delay between drain retries while the bus
// stays unavailable.
const degradedBackoff = 500 * time.Millisecond

type degradedEvent struct {
	topic         eventbus.Topic
	payload       interface{}
	correlationID string
}

// DegradedPublisher wraps a Bus so a failed Publish doesn't drop a signal
// outright: it lands in a bounded, drop-oldest local queue (the same policy
// as eventbus.RemoteBus's per-topic queues; the broadcaster instead drops
// the new message when a channel is full) and a background goroutine keeps
// retrying the bus at a fixed backoff until it drains.
type DegradedPublisher struct {
	bus eventbus.Bus

	mu       sync.Mutex
	queue    []degradedEvent
	draining bool
}

// NewDegradedPublisher wraps bus for degraded-mode publishing.
func NewDegradedPublisher(bus eventbus.Bus) *DegradedPublisher {
	return &DegradedPublisher{bus: bus}
}

// Publish tries the bus directly. On failure the event is queued (dropping
// the oldest queued event if the queue is already at capacity) and a drain
// loop is started if one isn't already running.
func (p *DegradedPublisher) Publish(topic eventbus.Topic, payload interface{}, correlationID string) {
	if err := p.bus.Publish(topic, payload, correlationID); err == nil {
		return
	}

	p.mu.Lock()
	if len(p.queue) >= degradedQueueCapacity {
		p.queue = p.queue[1:]
		log.Warn().Str("topic", string(topic)).Msg("strategy engine: degraded queue full, dropped oldest signal")
	}
	p.queue = append(p.queue, degradedEvent{topic: topic, payload: payload, correlationID: correlationID})
	startDrain := !p.draining
	if startDrain {
		p.draining = true
	}
	p.mu.Unlock()

	if startDrain {
		go p.drain()
	}
}

func (p *DegradedPublisher) drain() {
	for {
		p.mu.Lock()
		if len(p.queue) == 0 {
			p.draining = false
			p.mu.Unlock()
			return
		}
		next := p.queue[0]
		p.mu.Unlock()

		if err := p.bus.Publish(next.topic, next.payload, next.correlationID); err != nil {
			time.Sleep(degradedBackoff)
			continue
		}

		p.mu.Lock()
		if len(p.queue) > 0 {
			p.queue = p.queue[1:]
		}
		p.mu.Unlock()
	}
}

// QueueDepth reports how many signals are currently buffered awaiting a
// healthy bus; tests and health checks use this rather than reaching into
// the queue directly.
func (p *DegradedPublisher) QueueDepth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}
