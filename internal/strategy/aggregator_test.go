package strategy

import (
	"testing"
	"time"

	"github.com/Dev0031/quanttrader/internal/models"
	"github.com/shopspring/decimal"
)

func tick(symbol string, seconds int64, price, volume float64) models.MarketTick {
	return models.MarketTick{
		Symbol:    symbol,
		Price:     decimal.NewFromFloat(price),
		Volume:    decimal.NewFromFloat(volume),
		Timestamp: time.Unix(seconds, 0).UTC(),
	}
}

func TestCandleAggregatorEmitsOnWindowRoll(t *testing.T) {
	agg := NewCandleAggregator(time.Minute, "1m", nil)

	agg.Ingest(tick("BTCUSDT", 0, 100, 1))
	agg.Ingest(tick("BTCUSDT", 15, 105, 2))
	agg.Ingest(tick("BTCUSDT", 30, 95, 1.5))
	agg.Ingest(tick("BTCUSDT", 45, 102, 0.5))

	if _, ok := agg.Open("BTCUSDT"); !ok {
		t.Fatal("expected an open candle before the window rolls")
	}
	if len(agg.Closed("BTCUSDT")) != 0 {
		t.Fatal("expected no closed candles yet")
	}

	agg.Ingest(tick("BTCUSDT", 61, 103, 1))

	closed := agg.Closed("BTCUSDT")
	if len(closed) != 1 {
		t.Fatalf("expected exactly one closed candle, got %d", len(closed))
	}
	c := closed[0]
	if !c.Open.Equal(decimal.NewFromFloat(100)) {
		t.Errorf("open = %s, want 100", c.Open)
	}
	if !c.High.Equal(decimal.NewFromFloat(105)) {
		t.Errorf("high = %s, want 105", c.High)
	}
	if !c.Low.Equal(decimal.NewFromFloat(95)) {
		t.Errorf("low = %s, want 95", c.Low)
	}
	if !c.Close.Equal(decimal.NewFromFloat(102)) {
		t.Errorf("close = %s, want 102", c.Close)
	}
	if !c.Volume.Equal(decimal.NewFromFloat(5.0)) {
		t.Errorf("volume = %s, want 5.0", c.Volume)
	}
	if !c.OpenTime.Equal(time.Unix(0, 0).UTC()) {
		t.Errorf("openTime = %v, want epoch", c.OpenTime)
	}

	open, ok := agg.Open("BTCUSDT")
	if !ok {
		t.Fatal("expected a new open builder anchored at t=60s")
	}
	if !open.OpenTime.Equal(time.Unix(60, 0).UTC()) {
		t.Errorf("new builder openTime = %v, want t=60s", open.OpenTime)
	}
}

func TestCandleAggregatorKeysBySymbol(t *testing.T) {
	agg := NewCandleAggregator(time.Minute, "1m", nil)

	agg.Ingest(tick("BTCUSDT", 0, 100, 1))
	agg.Ingest(tick("ETHUSDT", 0, 10, 1))

	btc, _ := agg.Open("BTCUSDT")
	eth, _ := agg.Open("ETHUSDT")
	if btc.Symbol != "BTCUSDT" || eth.Symbol != "ETHUSDT" {
		t.Fatal("expected independent per-symbol builders")
	}
}

func TestCandleAggregatorRingBufferEviction(t *testing.T) {
	agg := NewCandleAggregator(time.Second, "1s", nil)

	for i := int64(0); i < int64(ringCapacity)+10; i++ {
		agg.Ingest(tick("BTCUSDT", i, 100, 1))
	}

	closed := agg.Closed("BTCUSDT")
	if len(closed) != ringCapacity {
		t.Fatalf("expected ring buffer capped at %d, got %d", ringCapacity, len(closed))
	}
}
