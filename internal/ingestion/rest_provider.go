package ingestion

import (
	"context"
	"time"

	"github.com/Dev0031/quanttrader/internal/binance"
	"github.com/Dev0031/quanttrader/internal/cache"
	"github.com/Dev0031/quanttrader/internal/eventbus"
	"github.com/Dev0031/quanttrader/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// restPollInterval is the fallback provider's per-symbol poll cadence
// (section 4.2: "one tick per symbol every 5s").
const restPollInterval = 5 * time.Second

// RESTPollProvider emits one tick per symbol every 5s by polling the ticker
// price endpoint. It is the fallback the ingestion circuit breaker switches
// to when the WebSocket provider's circuit opens.
type RESTPollProvider struct {
	symbols []string
	client  *binance.Client
	bus     eventbus.Bus
	cache   *cache.Cache
	stop    chan struct{}
}

func NewRESTPollProvider(symbols []string, client *binance.Client, bus eventbus.Bus, c *cache.Cache) *RESTPollProvider {
	return &RESTPollProvider{
		symbols: symbols,
		client:  client,
		bus:     bus,
		cache:   c,
		stop:    make(chan struct{}),
	}
}

func (p *RESTPollProvider) Name() string { return "rest-poll" }

func (p *RESTPollProvider) Start(ctx context.Context) error {
	ticker := time.NewTicker(restPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stop:
			return nil
		case <-ticker.C:
			p.pollAll()
		}
	}
}

func (p *RESTPollProvider) Stop() {
	select {
	case <-p.stop:
	default:
		close(p.stop)
	}
}

func (p *RESTPollProvider) pollAll() {
	for _, symbol := range p.symbols {
		tp, err := p.client.GetTickerPrice(symbol)
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("ingestion: rest poll failed")
			continue
		}
		price, err := decimal.NewFromString(tp.Price)
		if err != nil {
			log.Warn().Err(err).Str("raw", tp.Price).Msg("ingestion: malformed rest price, dropping")
			continue
		}

		tick := models.MarketTick{
			Symbol:    symbol,
			Price:     price,
			Timestamp: time.Now().UTC(),
		}

		if p.bus != nil {
			_ = p.bus.Publish(eventbus.TopicMarketTick, tick, "")
		}
		if p.cache != nil {
			p.cache.Set("price:latest:"+symbol, tick.Price.StringFixed(8), priceCacheTTL)
			p.cache.Set("tick:latest:"+symbol, tick, priceCacheTTL)
			p.cache.Publish("market:ticks", tick)
		}
	}
}
