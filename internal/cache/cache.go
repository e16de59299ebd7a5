// Package cache implements the shared key/value cache with per-entry TTL
// and a pub/sub channel, used for cross-service snapshot reads (latest
// price, portfolio snapshot) and the gateway fan-out channel. Locking
// follows the same RWMutex-guarded-map idiom as storage.CandleQueue.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Subscriber receives messages published on a channel.
type Subscriber func(channel string, message interface{})

// Cache is an in-process key/value store with TTL expiry and a channel
// pub/sub facility for out-of-band fan-out (e.g. market:ticks).
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	subs    map[string][]Subscriber

	sweepInterval time.Duration
	stop          chan struct{}
	once          sync.Once
}

// New creates a cache and starts its background expiry sweep.
func New() *Cache {
	c := &Cache{
		entries:       make(map[string]entry),
		subs:          make(map[string][]Subscriber),
		sweepInterval: 30 * time.Second,
		stop:          make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

// Set stores value under key with the given TTL. A zero TTL means "never
// expires"; callers wanting an explicit no-op TTL should not call Set.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	c.entries[key] = entry{value: value, expiresAt: expiresAt}
}

// Get returns the value stored at key, or ok=false if absent or expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()
	if !found || e.expired(time.Now()) {
		return nil, false
	}
	return e.value, true
}

// Delete removes key unconditionally.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Subscribe registers a subscriber for a pub/sub channel (distinct
// namespace from key storage).
func (c *Cache) Subscribe(channel string, sub Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs[channel] = append(c.subs[channel], sub)
}

// Publish fans a message out to every subscriber of channel.
func (c *Cache) Publish(channel string, message interface{}) {
	c.mu.RLock()
	subs := make([]Subscriber, len(c.subs[channel]))
	copy(subs, c.subs[channel])
	c.mu.RUnlock()

	for _, s := range subs {
		s(channel, message)
	}
}

func (c *Cache) sweepLoop() {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
		}
	}
}

// Close stops the background sweep goroutine.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}
