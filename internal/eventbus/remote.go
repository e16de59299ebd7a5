package eventbus

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// queueCapacity bounds each topic's outbound queue; overflow drops the
// oldest buffered event rather than blocking the publisher (section 4.1).
const queueCapacity = 100

// Broker is the minimal contract RemoteBus needs from a message broker
// connection. A real deployment backs this with whatever transport the
// gateway speaks (e.g. a websocket or AMQP connection to the fan-out layer);
// it is intentionally narrow so RemoteBus itself carries the queueing and
// back-pressure logic.
type Broker interface {
	Send(ctx context.Context, topic Topic, env Envelope) error
	// Healthy reports false while the connection's circuit is open.
	Healthy() bool
}

// RemoteBus is the broker-backed implementation: one bounded, drop-oldest
// queue worker per topic. When Broker reports unhealthy, publishers keep
// buffering locally (capacity queueCapacity) instead of blocking, and the
// worker drains the backlog once the broker recovers - this is the
// publisher-side back-pressure behaviour section 4.1 requires.
type RemoteBus struct {
	source string
	broker Broker
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	subs    map[Topic][]Handler
	queues  map[Topic]chan Envelope
}

// NewRemoteBus starts one drain worker per topic as it is first published to.
func NewRemoteBus(source string, broker Broker) *RemoteBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RemoteBus{
		source: source,
		broker: broker,
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[Topic][]Handler),
		queues: make(map[Topic]chan Envelope),
	}
}

func (b *RemoteBus) Subscribe(topic Topic, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = append(b.subs[topic], handler)
}

func (b *RemoteBus) queueFor(topic Topic) chan Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[topic]
	if ok {
		return q
	}
	q = make(chan Envelope, queueCapacity)
	b.queues[topic] = q
	b.wg.Add(1)
	go b.drain(topic, q)
	return q
}

func (b *RemoteBus) drain(topic Topic, q chan Envelope) {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case env, ok := <-q:
			if !ok {
				return
			}
			b.deliverLocal(topic, env)
			// Hold the event while the broker is unhealthy; newer events
			// keep buffering in q until it recovers.
			for !b.broker.Healthy() {
				select {
				case <-b.ctx.Done():
					return
				case <-time.After(100 * time.Millisecond):
				}
			}
			if err := b.broker.Send(b.ctx, topic, env); err != nil {
				log.Warn().Err(err).Str("topic", string(topic)).Msg("event bus: broker send failed")
			}
		}
	}
}

func (b *RemoteBus) deliverLocal(topic Topic, env Envelope) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.subs[topic]))
	copy(handlers, b.subs[topic])
	b.mu.RUnlock()

	for _, h := range handlers {
		func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Str("topic", string(topic)).Interface("panic", r).Msg("event bus subscriber panicked")
				}
			}()
			h(env)
		}(h)
	}
}

// Publish enqueues payload for topic, dropping the oldest queued event if
// the bounded queue is full. It never blocks the caller.
func (b *RemoteBus) Publish(topic Topic, payload interface{}, correlationID string) error {
	env := Envelope{Payload: payload, CorrelationID: correlationID, Source: b.source}
	env.Timestamp = time.Now().UTC()

	q := b.queueFor(topic)
	select {
	case q <- env:
	default:
		select {
		case <-q:
			log.Warn().Str("topic", string(topic)).Msg("event bus: queue full, dropped oldest event")
		default:
		}
		select {
		case q <- env:
		default:
		}
	}
	return nil
}

func (b *RemoteBus) Close() {
	b.cancel()
	b.wg.Wait()
}
