package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New()
	defer c.Close()

	c.Set("price:latest:BTCUSDT", "50000", 0)
	v, ok := c.Get("price:latest:BTCUSDT")
	if !ok || v != "50000" {
		t.Fatalf("expected value 50000, got %v ok=%v", v, ok)
	}
}

func TestGetMissing(t *testing.T) {
	c := New()
	defer c.Close()

	if _, ok := c.Get("nope"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New()
	defer c.Close()

	c.Set("k", "v", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected key to have expired")
	}
}

func TestPublishSubscribe(t *testing.T) {
	c := New()
	defer c.Close()

	received := make(chan interface{}, 1)
	c.Subscribe("market:ticks", func(channel string, message interface{}) {
		received <- message
	})

	c.Publish("market:ticks", "tick-payload")

	select {
	case msg := <-received:
		if msg != "tick-payload" {
			t.Fatalf("unexpected message: %v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscriber delivery")
	}
}
