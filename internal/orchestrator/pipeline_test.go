package orchestrator

import (
	"testing"
	"time"

	"github.com/Dev0031/quanttrader/internal/cache"
	"github.com/Dev0031/quanttrader/internal/eventbus"
	"github.com/Dev0031/quanttrader/internal/execution"
	"github.com/Dev0031/quanttrader/internal/models"
	"github.com/Dev0031/quanttrader/internal/risk"
	"github.com/Dev0031/quanttrader/internal/strategy"
	"github.com/shopspring/decimal"
)

func TestSymbolHistoryPushTrimsToDepth(t *testing.T) {
	h := &symbolHistory{}
	for i := 0; i < historyDepth+20; i++ {
		h.push(models.Candle{
			Symbol: "ETHUSDT",
			Open:   decimal.NewFromInt(int64(i)),
			High:   decimal.NewFromInt(int64(i)),
			Low:    decimal.NewFromInt(int64(i)),
			Close:  decimal.NewFromInt(int64(i)),
			Volume: decimal.NewFromInt(1),
		})
	}
	if len(h.closes) != historyDepth {
		t.Fatalf("expected history capped at %d, got %d", historyDepth, len(h.closes))
	}
}

func TestPipelineApprovedOrderReachesAdapter(t *testing.T) {
	bus := eventbus.NewInProcessBus("test")
	c := cache.New()
	defer c.Close()
	adapter := execution.NewFakeAdapter()
	limits := models.RiskLimits{
		MaxOpenPositions:       5,
		MaxDrawdownPercent:     50,
		MaxDailyLoss:           5000,
		MaxRiskPerTradePercent: 2,
		MinRiskRewardRatio:     1,
	}
	evaluator := risk.NewEvaluator(limits, bus, 0.001)

	p := NewPipeline(PipelineConfig{
		Bus:           bus,
		Cache:         c,
		Aggregator:    strategy.NewCandleAggregator(time.Minute, "1m", bus),
		Risk:          evaluator,
		Adapter:       adapter,
		Timeframe:     "1m",
		InitialEquity: 10000,
	})
	_ = p

	signal := models.TradeSignal{
		Symbol:        "ETHUSDT",
		Action:        models.ActionBuy,
		Price:         decimal.NewFromInt(100),
		Confidence:    0.9,
		RequestedRisk: 1,
		CorrelationID: "corr-1",
	}

	done := make(chan struct{})
	bus.Subscribe(eventbus.TopicOrdersExecuted, func(env eventbus.Envelope) {
		close(done)
	})

	if err := bus.Publish(eventbus.TopicStrategySignal, signal, "corr-1"); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected orders.executed to be published")
	}

	calls := adapter.Calls()
	if len(calls) != 1 || calls[0].Method != "PlaceOrder" {
		t.Fatalf("expected fake adapter to receive one PlaceOrder call, got %+v", calls)
	}
}
