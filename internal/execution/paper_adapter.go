package execution

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Dev0031/quanttrader/internal/cache"
	"github.com/Dev0031/quanttrader/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// fallbackFillPrice is the documented placeholder fill price used when no
// cached tick is available for a symbol. Section 9 flags this as a
// placeholder a production implementation should avoid fabricating; kept
// here for parity with the literal spec wording (see DESIGN.md Open
// Question 3), with a warning logged every time it is used.
var fallbackFillPrice = decimal.NewFromInt(50000)

// PaperAdapter fills every order immediately against the cached latest
// tick price, simulating configurable latency, and assigns a synthetic
// exchange id prefixed "PAPER-". Orders are indexed in memory for query
// and cancel.
type PaperAdapter struct {
	cache      *cache.Cache
	latency    time.Duration
	mu         sync.RWMutex
	orders     map[string]*models.Order
	nextSerial int64
}

func NewPaperAdapter(c *cache.Cache, latency time.Duration) *PaperAdapter {
	return &PaperAdapter{
		cache:   c,
		latency: latency,
		orders:  make(map[string]*models.Order),
	}
}

func (p *PaperAdapter) Name() string { return "paper" }

func (p *PaperAdapter) fillPrice(symbol string) decimal.Decimal {
	if p.cache != nil {
		if v, ok := p.cache.Get("tick:latest:" + symbol); ok {
			if tick, ok := v.(models.MarketTick); ok {
				return tick.Price
			}
		}
	}
	log.Warn().Str("symbol", symbol).Msg("paper adapter: no cached tick, using fallback fill price")
	return fallbackFillPrice
}

func (p *PaperAdapter) PlaceOrder(ctx context.Context, order *models.Order) models.AdapterResult {
	if p.latency > 0 {
		select {
		case <-time.After(p.latency):
		case <-ctx.Done():
			return models.AdapterResult{Success: false, Err: ctx.Err()}
		}
	}

	fillPrice := p.fillPrice(order.Symbol)

	serial := atomic.AddInt64(&p.nextSerial, 1)
	exchangeID := fmt.Sprintf("PAPER-%d", serial)

	filled := *order
	filled.ExchangeID = exchangeID
	filled.Status = models.OrderStatusFilled
	filled.FilledQuantity = order.Quantity
	filled.FilledPrice = fillPrice

	p.mu.Lock()
	p.orders[exchangeID] = &filled
	p.mu.Unlock()

	return models.AdapterResult{Success: true, Order: &filled, ExchangeOrderID: exchangeID}
}

func (p *PaperAdapter) CancelOrder(ctx context.Context, exchangeOrderID string) models.AdapterResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	order, ok := p.orders[exchangeOrderID]
	if !ok {
		return models.AdapterResult{Success: false, Err: fmt.Errorf("paper adapter: order not found: %s", exchangeOrderID)}
	}
	if order.Status.IsTerminal() {
		return models.AdapterResult{Success: false, Err: fmt.Errorf("paper adapter: order already terminal: %s", order.Status)}
	}
	order.Status = models.OrderStatusCanceled
	return models.AdapterResult{Success: true, Order: order, ExchangeOrderID: exchangeOrderID}
}

func (p *PaperAdapter) QueryOrder(ctx context.Context, exchangeOrderID string) models.AdapterResult {
	p.mu.RLock()
	defer p.mu.RUnlock()

	order, ok := p.orders[exchangeOrderID]
	if !ok {
		return models.AdapterResult{Success: false, Err: fmt.Errorf("paper adapter: order not found: %s", exchangeOrderID)}
	}
	return models.AdapterResult{Success: true, Order: order, ExchangeOrderID: exchangeOrderID}
}
