package execution

import (
	"context"
	"testing"
	"time"

	"github.com/Dev0031/quanttrader/internal/binance"
	"github.com/Dev0031/quanttrader/internal/cache"
	"github.com/Dev0031/quanttrader/internal/models"
	"github.com/shopspring/decimal"
)

func newOrder(symbol string, qty float64) *models.Order {
	return &models.Order{
		ID:       "order-1",
		Symbol:   symbol,
		Side:     models.SideBuy,
		Type:     models.OrderTypeMarket,
		Quantity: decimal.NewFromFloat(qty),
	}
}

func TestPaperAdapterFillsAtCachedPrice(t *testing.T) {
	c := cache.New()
	defer c.Close()
	c.Set("tick:latest:ETHUSDT", models.MarketTick{Symbol: "ETHUSDT", Price: decimal.NewFromInt(3000)}, time.Minute)

	adapter := NewPaperAdapter(c, 0)
	result := adapter.PlaceOrder(context.Background(), newOrder("ETHUSDT", 1))

	if !result.Success {
		t.Fatalf("expected success, got error: %v", result.Err)
	}
	if !result.Order.FilledPrice.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected fill price 3000, got %s", result.Order.FilledPrice)
	}
	if result.Order.Status != models.OrderStatusFilled {
		t.Errorf("expected filled status, got %v", result.Order.Status)
	}
	if result.ExchangeOrderID == "" {
		t.Error("expected non-empty exchange order id")
	}
}

func TestPaperAdapterFallsBackWithoutCachedTick(t *testing.T) {
	c := cache.New()
	defer c.Close()

	adapter := NewPaperAdapter(c, 0)
	result := adapter.PlaceOrder(context.Background(), newOrder("BTCUSDT", 1))

	if !result.Success {
		t.Fatalf("expected success, got error: %v", result.Err)
	}
	if !result.Order.FilledPrice.Equal(fallbackFillPrice) {
		t.Errorf("expected fallback fill price %s, got %s", fallbackFillPrice, result.Order.FilledPrice)
	}
}

func TestPaperAdapterCancelRejectsTerminalOrder(t *testing.T) {
	c := cache.New()
	defer c.Close()
	c.Set("tick:latest:ETHUSDT", models.MarketTick{Symbol: "ETHUSDT", Price: decimal.NewFromInt(3000)}, time.Minute)

	adapter := NewPaperAdapter(c, 0)
	placed := adapter.PlaceOrder(context.Background(), newOrder("ETHUSDT", 1))

	result := adapter.CancelOrder(context.Background(), placed.ExchangeOrderID)
	if result.Success {
		t.Fatal("expected cancel of an already-filled order to fail")
	}
}

func TestFakeAdapterRecordsCalls(t *testing.T) {
	adapter := NewFakeAdapter()
	order := newOrder("ETHUSDT", 2)

	result := adapter.PlaceOrder(context.Background(), order)
	if !result.Success {
		t.Fatalf("expected default success, got error: %v", result.Err)
	}
	adapter.QueryOrder(context.Background(), result.ExchangeOrderID)
	adapter.CancelOrder(context.Background(), result.ExchangeOrderID)

	calls := adapter.Calls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 recorded calls, got %d", len(calls))
	}
	if calls[0].Method != "PlaceOrder" || calls[1].Method != "QueryOrder" || calls[2].Method != "CancelOrder" {
		t.Errorf("unexpected call order: %+v", calls)
	}
}

func TestFakeAdapterScriptedResult(t *testing.T) {
	adapter := NewFakeAdapter()
	adapter.PlaceOrderFn = func(o *models.Order) models.AdapterResult {
		return models.AdapterResult{Success: false, Err: context.DeadlineExceeded}
	}

	result := adapter.PlaceOrder(context.Background(), newOrder("ETHUSDT", 1))
	if result.Success {
		t.Fatal("expected scripted failure")
	}
}

func TestLiveAdapterConversionHelpers(t *testing.T) {
	if toBinanceSide(models.SideSell) != binance.SideSell {
		t.Error("expected sell side to convert")
	}
	if toBinanceSide(models.SideBuy) != binance.SideBuy {
		t.Error("expected buy side to convert")
	}
	if toBinanceType(models.OrderTypeLimit) != binance.OrderTypeLimit {
		t.Error("expected limit type to convert")
	}
	if toBinanceType(models.OrderTypeMarket) != binance.OrderTypeMarket {
		t.Error("expected market type to convert")
	}
	if fromBinanceStatus(binance.OrderStatusFilled) != models.OrderStatusFilled {
		t.Error("expected filled status to convert")
	}
}

func TestFromBinanceOrderComputesAverageFillPrice(t *testing.T) {
	resp := &binance.Order{
		Symbol:              "ETHUSDT",
		OrderID:             42,
		Status:              binance.OrderStatusFilled,
		OrigQty:             "2.0",
		ExecutedQty:         "2.0",
		CummulativeQuoteQty: "6000.0",
	}
	out := fromBinanceOrder(resp, newOrder("ETHUSDT", 2))

	if !out.FilledPrice.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected average fill price 3000, got %s", out.FilledPrice)
	}
	if out.ExchangeID != "42" {
		t.Errorf("expected exchange id 42, got %s", out.ExchangeID)
	}
}

func TestLiveAdapterPlaceOrderFailsWithoutCredentials(t *testing.T) {
	adapter := NewLiveAdapter(EnvSecretProvider{}, "MISSING_API_KEY_ENV", "MISSING_SECRET_ENV", true, nil)
	result := adapter.PlaceOrder(context.Background(), newOrder("ETHUSDT", 1))
	if result.Success {
		t.Fatal("expected failure when credentials are unset")
	}
}

func TestLiveAdapterCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	opened := false
	adapter := NewLiveAdapter(EnvSecretProvider{}, "MISSING_API_KEY_ENV", "MISSING_SECRET_ENV", true, func() {
		opened = true
	})

	for i := 0; i < liveFailureThreshold; i++ {
		adapter.recordFailure()
	}
	if !opened {
		t.Error("expected circuit to open after threshold consecutive failures")
	}

	adapter.recordSuccess()
	if adapter.circuitOpen {
		t.Error("expected circuit to reset on success")
	}
}
