package execution

import (
	"context"

	"github.com/Dev0031/quanttrader/internal/models"
)

// Adapter is the polymorphic order-placement contract section 4.5 names:
// Live (signed REST), Paper (simulated fill), Fake (deterministic,
// call-recording). Selecting the active adapter from TradingMode is the
// orchestrator's job; adapters themselves are stateless about mode.
type Adapter interface {
	Name() string
	PlaceOrder(ctx context.Context, order *models.Order) models.AdapterResult
	CancelOrder(ctx context.Context, exchangeOrderID string) models.AdapterResult
	QueryOrder(ctx context.Context, exchangeOrderID string) models.AdapterResult
}
