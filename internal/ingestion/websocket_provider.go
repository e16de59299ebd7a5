package ingestion

import (
	"context"
	"sync"
	"time"

	"github.com/Dev0031/quanttrader/internal/binance"
	"github.com/Dev0031/quanttrader/internal/cache"
	"github.com/Dev0031/quanttrader/internal/eventbus"
	"github.com/Dev0031/quanttrader/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// priceCacheTTL is the TTL on price:latest:{SYMBOL} cache entries (section 6).
const priceCacheTTL = 5 * time.Minute

// maxConsecutiveFailures is the WS circuit breaker threshold (section 4.2):
// after this many consecutive disconnects the provider opens its circuit
// and calls onCircuitOpen; switching to a REST-polling provider is left to
// that callback.
const maxConsecutiveFailures = 5

// backoffCap is the exponential backoff ceiling for the first 60s of
// reconnect attempts, after which the wait flattens to flatBackoff.
const backoffCap = 15 * time.Second
const flatBackoff = 30 * time.Second
const flatBackoffAfter = 60 * time.Second

// WSProvider streams trades from the exchange combined WebSocket stream and
// republishes them as domain MarketTicks. It wraps binance.WSClient, whose
// own reconnect loop (a fixed reconnectWait between attempts) does the
// reconnecting; WSProvider layers a circuit breaker on top by watching
// OnDisconnect/OnReconnect transitions. NextBackoff computes the section
// 4.2 exponential schedule but is not called by that reconnect loop.
type WSProvider struct {
	symbols []string
	client  *binance.WSClient
	bus     eventbus.Bus
	cache   *cache.Cache

	mu                  sync.Mutex
	consecutiveFailures int
	circuitOpen         bool
	firstFailureAt      time.Time
	onCircuitOpen       func()
	onCircuitClose      func()

	stopOnce sync.Once
	cancel   context.CancelFunc
}

// NewWSProvider builds a provider for symbols, publishing through bus and
// caching through c. onCircuitOpen/onCircuitClose let the caller (typically
// the orchestrator) switch the active MarketDataProvider to a
// RESTPollProvider and back.
func NewWSProvider(symbols []string, bus eventbus.Bus, c *cache.Cache, onCircuitOpen, onCircuitClose func()) *WSProvider {
	p := &WSProvider{
		symbols:        symbols,
		bus:            bus,
		cache:          c,
		onCircuitOpen:  onCircuitOpen,
		onCircuitClose: onCircuitClose,
	}
	p.client = binance.NewWSClient(p)
	return p
}

func (p *WSProvider) Name() string { return "websocket" }

func (p *WSProvider) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	if err := p.client.Connect(ctx); err != nil {
		return err
	}
	for _, s := range p.symbols {
		if err := p.client.SubscribeTrade(s); err != nil {
			log.Warn().Err(err).Str("symbol", s).Msg("ingestion: subscribe failed")
		}
	}

	<-ctx.Done()
	return ctx.Err()
}

func (p *WSProvider) Stop() {
	p.stopOnce.Do(func() {
		if p.cancel != nil {
			p.cancel()
		}
		p.client.Disconnect()
	})
}

// OnTrade satisfies binance.WSHandler: converts one trade event into a
// MarketTick and publishes/caches/announces it (section 4.2 step list).
func (p *WSProvider) OnTrade(event binance.TradeEvent) {
	price, err := decimal.NewFromString(event.Price)
	if err != nil {
		log.Warn().Err(err).Str("raw", event.Price).Msg("ingestion: malformed trade price, dropping message")
		return
	}
	qty, err := decimal.NewFromString(event.Quantity)
	if err != nil {
		log.Warn().Err(err).Str("raw", event.Quantity).Msg("ingestion: malformed trade quantity, dropping message")
		return
	}

	tick := models.MarketTick{
		Symbol:    event.Symbol,
		Price:     price,
		Volume:    qty,
		Timestamp: time.UnixMilli(event.EventTime).UTC(),
	}

	p.resetFailures()

	if p.bus != nil {
		_ = p.bus.Publish(eventbus.TopicMarketTick, tick, "")
	}
	if p.cache != nil {
		p.cache.Set("price:latest:"+tick.Symbol, tick.Price.StringFixed(8), priceCacheTTL)
		p.cache.Set("tick:latest:"+tick.Symbol, tick, priceCacheTTL)
		p.cache.Publish("market:ticks", tick)
	}
}

func (p *WSProvider) OnKline(event binance.KlineEvent)           {}
func (p *WSProvider) OnDepth(event binance.DepthEvent)           {}
func (p *WSProvider) OnMiniTicker(event binance.MiniTickerEvent) {}

func (p *WSProvider) OnError(err error) {
	log.Warn().Err(err).Msg("ingestion: websocket error")
}

func (p *WSProvider) OnDisconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.consecutiveFailures == 0 {
		p.firstFailureAt = time.Now()
	}
	p.consecutiveFailures++

	if !p.circuitOpen && p.consecutiveFailures >= maxConsecutiveFailures {
		p.circuitOpen = true
		log.Error().Int("consecutiveFailures", p.consecutiveFailures).Msg("ingestion: websocket circuit open, falling back to REST polling")
		if p.onCircuitOpen != nil {
			p.onCircuitOpen()
		}
	}
}

func (p *WSProvider) OnReconnect() {
	p.resetFailures()
}

func (p *WSProvider) resetFailures() {
	p.mu.Lock()
	defer p.mu.Unlock()
	wasOpen := p.circuitOpen
	p.consecutiveFailures = 0
	p.circuitOpen = false
	if wasOpen && p.onCircuitClose != nil {
		p.onCircuitClose()
	}
}

// NextBackoff returns the reconnect wait for the given attempt count and
// elapsed time since the first failure, per section 4.2: 1s,2s,4s,...
// capped at 15s for the first 60s, then a flat 30s.
func NextBackoff(attempt int, elapsed time.Duration) time.Duration {
	if elapsed >= flatBackoffAfter {
		return flatBackoff
	}
	wait := time.Second << uint(attempt)
	if wait > backoffCap || wait <= 0 {
		wait = backoffCap
	}
	return wait
}
