package strategy

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Dev0031/quanttrader/internal/eventbus"
	"github.com/Dev0031/quanttrader/internal/models"
	"github.com/shopspring/decimal"
)

// ringCapacity is the depth of the per-symbol closed-candle ring buffer.
const ringCapacity = 100

type builder struct {
	candle models.Candle
}

// candleKey identifies one (symbol, interval) aggregation window.
type candleKey struct {
	symbol   string
	interval string
}

// CandleAggregator maintains one open candle per (symbol, interval),
// keyed by the interval-aligned window start, and a bounded ring buffer of
// the most recently closed candles per symbol. A tick whose aligned window
// is later than the current builder's closes the open candle onto
// eventbus.TopicCandleClosed and starts a fresh builder anchored at the
// tick's own window.
type CandleAggregator struct {
	mu       sync.Mutex
	interval time.Duration
	label    string
	builders map[candleKey]*builder
	rings    map[string][]models.Candle
	bus      eventbus.Bus
}

// ParseTimeframe converts a Binance-style kline interval string ("1m", "5m",
// "15m", "1h", "4h", "1d", ...) into the time.Duration a CandleAggregator
// windows on. The section 3 Candle invariant (close-time - open-time ==
// interval) depends on this, rather than the cosmetic interval label, being
// the actual window width.
func ParseTimeframe(tf string) (time.Duration, error) {
	if len(tf) < 2 {
		return 0, fmt.Errorf("strategy: invalid timeframe %q", tf)
	}
	unit := tf[len(tf)-1]
	n, err := strconv.Atoi(tf[:len(tf)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("strategy: invalid timeframe %q", tf)
	}
	switch strings.ToLower(string(unit)) {
	case "m":
		return time.Duration(n) * time.Minute, nil
	case "h":
		return time.Duration(n) * time.Hour, nil
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	case "w":
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("strategy: unsupported timeframe unit %q", tf)
	}
}

// NewCandleAggregator builds an aggregator for a single interval (e.g. "1h").
func NewCandleAggregator(interval time.Duration, label string, bus eventbus.Bus) *CandleAggregator {
	return &CandleAggregator{
		interval: interval,
		label:    label,
		builders: make(map[candleKey]*builder),
		rings:    make(map[string][]models.Candle),
		bus:      bus,
	}
}

// alignedWindowStart floors t to the nearest multiple of interval since the
// Unix epoch, satisfying spec's "integer multiple of the interval" invariant.
func (a *CandleAggregator) alignedWindowStart(t time.Time) time.Time {
	unixNanos := t.UnixNano()
	step := a.interval.Nanoseconds()
	aligned := (unixNanos / step) * step
	return time.Unix(0, aligned).UTC()
}

// Ingest feeds one tick into the aggregator for the tick's symbol.
func (a *CandleAggregator) Ingest(tick models.MarketTick) {
	windowStart := a.alignedWindowStart(tick.Timestamp)
	key := candleKey{symbol: tick.Symbol, interval: a.label}

	a.mu.Lock()
	b, exists := a.builders[key]

	if !exists {
		a.builders[key] = a.newBuilder(tick, windowStart)
		a.mu.Unlock()
		return
	}

	if windowStart.After(b.candle.OpenTime) {
		closed := b.candle
		a.pushRing(tick.Symbol, closed)
		a.builders[key] = a.newBuilder(tick, windowStart)
		a.mu.Unlock()

		if a.bus != nil {
			_ = a.bus.Publish(eventbus.TopicCandleClosed, closed, "")
		}
		return
	}

	b.candle.High = decimal.Max(b.candle.High, tick.Price)
	b.candle.Low = decimal.Min(b.candle.Low, tick.Price)
	b.candle.Close = tick.Price
	b.candle.Volume = b.candle.Volume.Add(tick.Volume)
	a.mu.Unlock()
}

func (a *CandleAggregator) newBuilder(tick models.MarketTick, windowStart time.Time) *builder {
	return &builder{
		candle: models.Candle{
			Symbol:    tick.Symbol,
			Interval:  a.label,
			Open:      tick.Price,
			High:      tick.Price,
			Low:       tick.Price,
			Close:     tick.Price,
			Volume:    tick.Volume,
			OpenTime:  windowStart,
			CloseTime: windowStart.Add(a.interval),
		},
	}
}

func (a *CandleAggregator) pushRing(symbol string, c models.Candle) {
	ring := a.rings[symbol]
	ring = append(ring, c)
	if len(ring) > ringCapacity {
		ring = ring[len(ring)-ringCapacity:]
	}
	a.rings[symbol] = ring
}

// Closed returns the most recent closed candles for symbol, oldest first.
func (a *CandleAggregator) Closed(symbol string) []models.Candle {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Candle, len(a.rings[symbol]))
	copy(out, a.rings[symbol])
	return out
}

// Open returns the in-progress candle for (symbol, interval label), if any.
func (a *CandleAggregator) Open(symbol string) (models.Candle, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.builders[candleKey{symbol: symbol, interval: a.label}]
	if !ok {
		return models.Candle{}, false
	}
	return b.candle, true
}
