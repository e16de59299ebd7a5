package execution

import (
	"context"
	"sync"

	"github.com/Dev0031/quanttrader/internal/models"
)

// FakeCall records one invocation against the FakeAdapter, for assertions
// in tests that need to see exactly what the execution engine sent.
type FakeCall struct {
	Method          string
	Order           *models.Order
	ExchangeOrderID string
}

// FakeAdapter is deterministic and records every call instead of simulating
// a market (spec section 4.5). Results are scripted via PlaceOrderFn /
// CancelOrderFn / QueryOrderFn; defaults succeed trivially.
type FakeAdapter struct {
	mu    sync.Mutex
	calls []FakeCall

	PlaceOrderFn  func(*models.Order) models.AdapterResult
	CancelOrderFn func(string) models.AdapterResult
	QueryOrderFn  func(string) models.AdapterResult
}

func NewFakeAdapter() *FakeAdapter { return &FakeAdapter{} }

func (f *FakeAdapter) Name() string { return "fake" }

func (f *FakeAdapter) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *FakeAdapter) PlaceOrder(ctx context.Context, order *models.Order) models.AdapterResult {
	f.mu.Lock()
	f.calls = append(f.calls, FakeCall{Method: "PlaceOrder", Order: order})
	f.mu.Unlock()

	if f.PlaceOrderFn != nil {
		return f.PlaceOrderFn(order)
	}
	filled := *order
	filled.Status = models.OrderStatusFilled
	filled.FilledQuantity = order.Quantity
	filled.FilledPrice = order.Price
	filled.ExchangeID = "FAKE-" + order.ID
	return models.AdapterResult{Success: true, Order: &filled, ExchangeOrderID: filled.ExchangeID}
}

func (f *FakeAdapter) CancelOrder(ctx context.Context, exchangeOrderID string) models.AdapterResult {
	f.mu.Lock()
	f.calls = append(f.calls, FakeCall{Method: "CancelOrder", ExchangeOrderID: exchangeOrderID})
	f.mu.Unlock()

	if f.CancelOrderFn != nil {
		return f.CancelOrderFn(exchangeOrderID)
	}
	return models.AdapterResult{Success: true, ExchangeOrderID: exchangeOrderID}
}

func (f *FakeAdapter) QueryOrder(ctx context.Context, exchangeOrderID string) models.AdapterResult {
	f.mu.Lock()
	f.calls = append(f.calls, FakeCall{Method: "QueryOrder", ExchangeOrderID: exchangeOrderID})
	f.mu.Unlock()

	if f.QueryOrderFn != nil {
		return f.QueryOrderFn(exchangeOrderID)
	}
	return models.AdapterResult{Success: true, ExchangeOrderID: exchangeOrderID}
}
