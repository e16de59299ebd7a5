package strategy

import (
	"testing"
	"time"

	"github.com/Dev0031/quanttrader/internal/models"
	"github.com/shopspring/decimal"
)

// syntheticSeries builds n ascending-then-oscillating OHLCV bars, enough to
// clear every strategy's lookback and regime detector warmup.
func syntheticSeries(n int) (opens, highs, lows, closes, volumes []float64) {
	price := 100.0
	for i := 0; i < n; i++ {
		price += 0.5
		opens = append(opens, price-0.2)
		highs = append(highs, price+0.3)
		lows = append(lows, price-0.3)
		closes = append(closes, price)
		volumes = append(volumes, 1000+float64(i))
	}
	return
}

func TestAnalyzeRawReturnsNilBelowMinDataPoints(t *testing.T) {
	m := NewManager(nil, nil)
	opens, highs, lows, closes, volumes := syntheticSeries(5)

	signals := m.AnalyzeRaw("ETHUSDT", "1h", opens, highs, lows, closes, volumes, closes[len(closes)-1])
	if signals != nil {
		t.Fatalf("expected nil with insufficient data points, got %d signals", len(signals))
	}
}

func TestAnalyzeRawRunsEnabledStrategies(t *testing.T) {
	m := NewManager(nil, nil)
	opens, highs, lows, closes, volumes := syntheticSeries(120)

	signals := m.AnalyzeRaw("ETHUSDT", "1h", opens, highs, lows, closes, volumes, closes[len(closes)-1])
	for _, sig := range signals {
		if sig.Strategy == "" {
			t.Fatalf("expected every returned signal to carry a strategy name, got %+v", sig)
		}
	}
}

func TestEvaluateTickReturnsNilBelowMinDataPoints(t *testing.T) {
	m := NewManager(nil, nil)
	opens, highs, lows, closes, volumes := syntheticSeries(5)

	tick := models.MarketTick{
		Symbol:    "ETHUSDT",
		Price:     decimal.NewFromFloat(closes[len(closes)-1]),
		Timestamp: time.Now(),
	}

	signals := m.EvaluateTick(tick, opens, highs, lows, closes, volumes)
	if signals != nil {
		t.Fatalf("expected nil with insufficient data points, got %d signals", len(signals))
	}
}

func TestEvaluateTickMatchesConfluenceInput(t *testing.T) {
	m := NewManager(nil, nil)
	opens, highs, lows, closes, volumes := syntheticSeries(120)

	tick := models.MarketTick{
		Symbol:    "ETHUSDT",
		Price:     decimal.NewFromFloat(closes[len(closes)-1]),
		Timestamp: time.Now(),
	}

	signals := m.EvaluateTick(tick, opens, highs, lows, closes, volumes)

	// EvaluateTick's output must be consumable by ApplyConfluence directly -
	// this is the whole point of returning models.TradeSignal instead of a
	// strategy.Signal batch requiring a separate conversion step.
	boosted := ApplyConfluence(signals, DefaultMinConfidenceScore)
	if len(boosted) > len(signals) {
		t.Fatalf("confluence should never grow the signal count: got %d from %d inputs", len(boosted), len(signals))
	}
}

func TestEvaluateTickDoesNotMutateRegimeHistoryLength(t *testing.T) {
	m := NewManager(nil, nil)
	opens, highs, lows, closes, volumes := syntheticSeries(120)

	tick := models.MarketTick{
		Symbol:    "ETHUSDT",
		Price:     decimal.NewFromFloat(closes[len(closes)-1]),
		Timestamp: time.Now(),
	}

	before := len(m.regimeHistory.GetRecent(1000))
	m.EvaluateTick(tick, opens, highs, lows, closes, volumes)
	m.EvaluateTick(tick, opens, highs, lows, closes, volumes)
	after := len(m.regimeHistory.GetRecent(1000))

	if after != before {
		t.Fatalf("expected EvaluateTick not to record regime history (candle-close-only), before=%d after=%d", before, after)
	}
}
