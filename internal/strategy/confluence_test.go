package strategy

import (
	"testing"

	"github.com/Dev0031/quanttrader/internal/models"
	"github.com/shopspring/decimal"
)

func sig(action models.SignalAction, confidence float64, strategyName string) models.TradeSignal {
	return models.TradeSignal{
		Symbol:     "BTCUSDT",
		Action:     action,
		Price:      decimal.NewFromInt(100),
		Confidence: confidence,
		Strategy:   strategyName,
	}
}

func TestApplyConfluenceBoostsAgreeingSignals(t *testing.T) {
	signals := []models.TradeSignal{
		sig(models.ActionBuy, 0.6, "a"),
		sig(models.ActionBuy, 0.6, "b"),
		sig(models.ActionBuy, 0.6, "c"),
	}

	out := ApplyConfluence(signals, 0.7)
	if len(out) != 3 {
		t.Fatalf("expected all 3 agreeing signals to survive, got %d", len(out))
	}
	// Computed at run time in float64, the same order ApplyConfluence uses;
	// a constant expression would fold to exactly 0.9 instead.
	base, k, n := 0.6, 3.0, 3.0
	for _, s := range out {
		want := base + 0.3*k/n
		if want > 1.0 {
			want = 1.0
		}
		if s.Confidence != want {
			t.Errorf("confidence = %v, want %v", s.Confidence, want)
		}
	}
}

func TestApplyConfluenceDropsBelowMinConfidence(t *testing.T) {
	signals := []models.TradeSignal{
		sig(models.ActionBuy, 0.5, "a"),
		sig(models.ActionSell, 0.4, "b"),
	}

	out := ApplyConfluence(signals, 0.7)
	if len(out) != 0 {
		t.Fatalf("expected both low-confidence signals dropped, got %d", len(out))
	}
}

func TestApplyConfluenceClampsToOne(t *testing.T) {
	signals := []models.TradeSignal{
		sig(models.ActionBuy, 0.95, "a"),
		sig(models.ActionBuy, 0.95, "b"),
	}
	out := ApplyConfluence(signals, 0.7)
	if len(out) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(out))
	}
	for _, s := range out {
		if s.Confidence != 1.0 {
			t.Errorf("confidence = %v, want clamped 1.0", s.Confidence)
		}
	}
}

func TestApplyConfluenceDefaultsMinConfidence(t *testing.T) {
	// A lone Buy has k=n=1, so it is boosted by 0.3: 0.35 -> 0.65.
	signals := []models.TradeSignal{sig(models.ActionBuy, 0.35, "a")}
	out := ApplyConfluence(signals, 0)
	if len(out) != 0 {
		t.Fatalf("expected default 0.7 cutoff to drop a lone signal boosted to 0.65, got %d survivors", len(out))
	}
}
