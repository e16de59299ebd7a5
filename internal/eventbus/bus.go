// Package eventbus implements the topic-keyed publish/subscribe bus that
// connects ingestion, strategy, risk and execution. It generalizes the
// orchestrator's old topic-less broadcaster into per-topic routing with
// ordering and back-pressure guarantees.
package eventbus

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Topic is one of the fixed topic names the pipeline publishes/subscribes on.
type Topic string

const (
	TopicMarketTick      Topic = "market.tick"
	TopicCandleClosed    Topic = "candle.closed"
	TopicStrategySignal  Topic = "strategy.signal"
	TopicOrdersApproved  Topic = "orders.approved"
	TopicOrdersExecuted  Topic = "orders.executed"
	TopicRiskAlerts      Topic = "risk.alerts"
	TopicKillSwitch      Topic = "killswitch"
	TopicSystemHealth    Topic = "system.health"
)

// Envelope wraps every published payload with the fields the wire format
// (section 6) requires: correlation id, UTC timestamp, originating service.
type Envelope struct {
	Payload       interface{} `json:"payload"`
	CorrelationID string      `json:"correlationId"`
	Timestamp     time.Time   `json:"timestamp"`
	Source        string      `json:"source"`
}

// Handler processes one envelope. A handler must not block for longer than
// one event's worth of work - slow handlers only ever delay their own topic.
type Handler func(Envelope)

// Bus delivers typed events to topic subscribers in publish order.
type Bus interface {
	Publish(topic Topic, payload interface{}, correlationID string) error
	Subscribe(topic Topic, handler Handler)
	Close()
}

// InProcessBus is the in-memory, exactly-once implementation used by tests
// and by default in a single running service. Publish dispatches
// synchronously on the calling goroutine so ordering from a single
// publisher is trivially preserved; a snapshot of the subscriber slice is
// taken before dispatch so a concurrent Subscribe never races delivery.
type InProcessBus struct {
	source string
	mu     sync.RWMutex
	subs   map[Topic][]Handler
}

// NewInProcessBus creates a bus that stamps Envelope.Source with source.
func NewInProcessBus(source string) *InProcessBus {
	return &InProcessBus{
		source: source,
		subs:   make(map[Topic][]Handler),
	}
}

func (b *InProcessBus) Subscribe(topic Topic, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = append(b.subs[topic], handler)
}

// Publish dispatches payload to every current subscriber of topic. It never
// returns an error from a handler failure - those are recovered and logged
// with the envelope's correlation id, keeping one misbehaving subscriber
// from breaking the publisher or its siblings.
func (b *InProcessBus) Publish(topic Topic, payload interface{}, correlationID string) error {
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	env := Envelope{
		Payload:       payload,
		CorrelationID: correlationID,
		Timestamp:     time.Now().UTC(),
		Source:        b.source,
	}

	b.mu.RLock()
	handlers := make([]Handler, len(b.subs[topic]))
	copy(handlers, b.subs[topic])
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatchOne(topic, h, env)
	}
	return nil
}

func (b *InProcessBus) dispatchOne(topic Topic, h Handler, env Envelope) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("topic", string(topic)).
				Str("correlationId", env.CorrelationID).
				Interface("panic", r).
				Msg("event bus subscriber panicked")
		}
	}()
	h(env)
}

func (b *InProcessBus) Close() {}
