package strategy

import (
	"testing"

	"github.com/Dev0031/quanttrader/internal/models"
	"github.com/shopspring/decimal"
)

func TestToTradeSignalEntryLong(t *testing.T) {
	s := Signal{
		Type:      SignalTypeEntry,
		Direction: DirectionLong,
		Symbol:    "ETHUSDT",
		Price:     3000,
		StopLoss:  2900,
		Strategy:  "trend_following",
	}
	ts := ToTradeSignal(s)

	if ts.Action != models.ActionBuy {
		t.Errorf("expected buy action, got %v", ts.Action)
	}
	if ts.StopLoss == nil || !ts.StopLoss.Equal(decimal.NewFromFloat(2900)) {
		t.Errorf("expected stop loss 2900, got %v", ts.StopLoss)
	}
}

func TestToTradeSignalExitShort(t *testing.T) {
	s := Signal{Type: SignalTypeExit, Direction: DirectionShort, Symbol: "ETHUSDT", Price: 3000}
	ts := ToTradeSignal(s)

	if ts.Action != models.ActionCloseShort {
		t.Errorf("expected close short action, got %v", ts.Action)
	}
}

func TestToTradeSignalsDropsNone(t *testing.T) {
	signals := []Signal{
		{Type: SignalTypeNone},
		{Type: SignalTypeEntry, Direction: DirectionLong},
	}
	out := ToTradeSignals(signals)
	if len(out) != 1 {
		t.Fatalf("expected 1 signal after dropping None, got %d", len(out))
	}
}
