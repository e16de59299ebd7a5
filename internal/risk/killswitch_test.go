package risk

import (
	"testing"

	"github.com/Dev0031/quanttrader/internal/models"
	"github.com/shopspring/decimal"
)

func defaultLimits() models.RiskLimits {
	return models.RiskLimits{
		MaxRiskPerTradePercent: 2,
		MaxDrawdownPercent:     5,
		MinRiskRewardRatio:     1.5,
		MaxOpenPositions:       5,
		MaxDailyLoss:           5,
		KillSwitchEnabled:      true,
	}
}

func decPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func TestEvaluateRejectsWhenKillSwitchActive(t *testing.T) {
	e := NewEvaluator(defaultLimits(), nil, minTradeableUnit)
	e.ApplySnapshot(models.PortfolioSnapshot{
		TotalEquity:      decimal.NewFromInt(9400),
		TotalRealizedPnL: decimal.Zero,
	})
	e.peakEquity = 10000 // simulate prior peak before the drawdown-inducing snapshot
	e.ApplySnapshot(models.PortfolioSnapshot{
		TotalEquity:      decimal.NewFromInt(9400),
		TotalRealizedPnL: decimal.Zero,
	})

	if !e.KillSwitchActive() {
		t.Fatal("expected kill switch to activate on 6% drawdown with 5% limit")
	}

	decision := e.Evaluate(models.TradeSignal{Symbol: "BTCUSDT", Action: models.ActionBuy, Price: decimal.NewFromInt(100)}, 9400)
	if decision.Approved {
		t.Fatal("expected rejection while kill switch active")
	}
	if decision.Reason != "Kill switch" {
		t.Fatalf("expected reason 'Kill switch', got %q", decision.Reason)
	}
}

func TestEvaluateRejectsOnMaxOpenPositions(t *testing.T) {
	e := NewEvaluator(defaultLimits(), nil, minTradeableUnit)
	e.SetOpenPositions(5)

	decision := e.Evaluate(models.TradeSignal{Symbol: "BTCUSDT", Action: models.ActionBuy, Price: decimal.NewFromInt(100)}, 10000)
	if decision.Approved {
		t.Fatal("expected rejection at max open positions")
	}
}

func TestEvaluateRejectsOnInsufficientRiskReward(t *testing.T) {
	e := NewEvaluator(defaultLimits(), nil, minTradeableUnit)

	decision := e.Evaluate(models.TradeSignal{
		Symbol:     "BTCUSDT",
		Action:     models.ActionBuy,
		Price:      decimal.NewFromInt(100),
		StopLoss:   decPtr(95),
		TakeProfit: decPtr(102), // reward 2 < 1.5*5=7.5
	}, 10000)

	if decision.Approved {
		t.Fatal("expected rejection on insufficient risk/reward")
	}
}

func TestEvaluateApprovesAndSizesPosition(t *testing.T) {
	e := NewEvaluator(defaultLimits(), nil, minTradeableUnit)

	decision := e.Evaluate(models.TradeSignal{
		Symbol:     "BTCUSDT",
		Action:     models.ActionBuy,
		Price:      decimal.NewFromInt(100),
		StopLoss:   decPtr(95),
		TakeProfit: decPtr(110),
	}, 10000)

	if !decision.Approved {
		t.Fatalf("expected approval, got rejection: %s", decision.Reason)
	}
	// risk amount = 10000 * 2% = 200; stop distance = 5; size = 40
	qty, _ := decision.Order.Quantity.Float64()
	if qty < 39.9 || qty > 40.1 {
		t.Fatalf("expected size ~40, got %v", qty)
	}
}

func TestEvaluateSkipsRiskRewardGuardWhenEitherAbsent(t *testing.T) {
	e := NewEvaluator(defaultLimits(), nil, minTradeableUnit)

	decision := e.Evaluate(models.TradeSignal{
		Symbol: "BTCUSDT",
		Action: models.ActionBuy,
		Price:  decimal.NewFromInt(100),
		// no stop-loss or take-profit set
	}, 10000)

	if !decision.Approved {
		t.Fatalf("expected approval when stop/take-profit absent (leniency), got: %s", decision.Reason)
	}
}

func TestEvaluateSizesZeroWhenStopLossAbsent(t *testing.T) {
	e := NewEvaluator(defaultLimits(), nil, minTradeableUnit)

	decision := e.Evaluate(models.TradeSignal{
		Symbol: "BTCUSDT",
		Action: models.ActionBuy,
		Price:  decimal.NewFromInt(100),
	}, 10000)

	if !decision.Approved {
		t.Fatalf("expected approval, got rejection: %s", decision.Reason)
	}
	qty, _ := decision.Order.Quantity.Float64()
	if qty != 0 {
		t.Fatalf("expected zero size with no stop-loss, got %v", qty)
	}
}

func TestEvaluateSizesZeroWhenStopDistanceIsZero(t *testing.T) {
	e := NewEvaluator(defaultLimits(), nil, minTradeableUnit)

	decision := e.Evaluate(models.TradeSignal{
		Symbol:   "BTCUSDT",
		Action:   models.ActionBuy,
		Price:    decimal.NewFromInt(100),
		StopLoss: decPtr(100), // same as entry: zero stop distance
	}, 10000)

	if !decision.Approved {
		t.Fatalf("expected approval, got rejection: %s", decision.Reason)
	}
	qty, _ := decision.Order.Quantity.Float64()
	if qty != 0 {
		t.Fatalf("expected zero size with zero stop distance, got %v", qty)
	}
}

func TestDeactivateIsIdempotent(t *testing.T) {
	e := NewEvaluator(defaultLimits(), nil, minTradeableUnit)
	e.Deactivate()
	e.Deactivate()
	if e.KillSwitchActive() {
		t.Fatal("expected kill switch inactive")
	}
}
