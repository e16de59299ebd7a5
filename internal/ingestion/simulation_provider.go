package ingestion

import (
	"context"
	"time"

	"github.com/Dev0031/quanttrader/internal/cache"
	"github.com/Dev0031/quanttrader/internal/eventbus"
	"github.com/Dev0031/quanttrader/internal/models"
	"github.com/shopspring/decimal"
)

// lcg is a minimal linear congruential generator so that two
// SimulationProviders constructed with the same seed produce byte-identical
// tick sequences (spec section 8 S6) without depending on math/rand's
// package-global state.
type lcg struct{ state uint64 }

func newLCG(seed int64) *lcg { return &lcg{state: uint64(seed) | 1} }

func (g *lcg) next() uint64 {
	// Knuth's MMIX constants.
	g.state = g.state*6364136223846793005 + 1442695040888963407
	return g.state
}

// nextFloat returns a value in [-1, 1), deterministic given the generator's
// state sequence.
func (g *lcg) nextFloat() float64 {
	v := g.next() >> 11 // 53 significant bits
	return (float64(v)/float64(1<<53))*2 - 1
}

// SimulationProvider replays a deterministic tick sequence at a configurable
// interval, looping indefinitely unless OneShot is set. Used for
// Backtest/Simulation trading modes and for deterministic tests.
type SimulationProvider struct {
	Symbols     []string
	Seed        int64
	Interval    time.Duration
	OneShot     bool
	BasePrice   decimal.Decimal

	bus   eventbus.Bus
	cache *cache.Cache
	stop  chan struct{}
}

func NewSimulationProvider(symbols []string, seed int64, interval time.Duration, oneShot bool, bus eventbus.Bus, c *cache.Cache) *SimulationProvider {
	return &SimulationProvider{
		Symbols:   symbols,
		Seed:      seed,
		Interval:  interval,
		OneShot:   oneShot,
		BasePrice: decimal.NewFromInt(100),
		bus:       bus,
		cache:     c,
		stop:      make(chan struct{}),
	}
}

func (p *SimulationProvider) Name() string { return "simulation" }

// Generate produces n deterministic ticks per symbol without publishing -
// used directly by tests that want the raw sequence rather than a running
// loop.
func (p *SimulationProvider) Generate(n int) []models.MarketTick {
	out := make([]models.MarketTick, 0, n*len(p.Symbols))
	gens := make(map[string]*lcg, len(p.Symbols))
	prices := make(map[string]decimal.Decimal, len(p.Symbols))
	for _, s := range p.Symbols {
		gens[s] = newLCG(p.Seed)
		prices[s] = p.BasePrice
	}

	start := time.Unix(0, 0).UTC()
	for i := 0; i < n; i++ {
		for _, symbol := range p.Symbols {
			g := gens[symbol]
			delta := decimal.NewFromFloat(g.nextFloat())
			prices[symbol] = prices[symbol].Add(delta)
			out = append(out, models.MarketTick{
				Symbol:    symbol,
				Price:     prices[symbol],
				Volume:    decimal.NewFromFloat(1 + (g.nextFloat()+1)/2),
				Timestamp: start.Add(time.Duration(i) * p.Interval),
			})
		}
	}
	return out
}

func (p *SimulationProvider) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	gens := make(map[string]*lcg, len(p.Symbols))
	prices := make(map[string]decimal.Decimal, len(p.Symbols))
	for _, s := range p.Symbols {
		gens[s] = newLCG(p.Seed)
		prices[s] = p.BasePrice
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stop:
			return nil
		case <-ticker.C:
			for _, symbol := range p.Symbols {
				g := gens[symbol]
				delta := decimal.NewFromFloat(g.nextFloat())
				prices[symbol] = prices[symbol].Add(delta)
				tick := models.MarketTick{
					Symbol:    symbol,
					Price:     prices[symbol],
					Volume:    decimal.NewFromFloat(1 + (g.nextFloat()+1)/2),
					Timestamp: time.Now().UTC(),
				}
				if p.bus != nil {
					_ = p.bus.Publish(eventbus.TopicMarketTick, tick, "")
				}
				if p.cache != nil {
					p.cache.Set("price:latest:"+symbol, tick.Price.StringFixed(8), priceCacheTTL)
				}
			}
			if p.OneShot {
				return nil
			}
		}
	}
}

func (p *SimulationProvider) Stop() {
	select {
	case <-p.stop:
	default:
		close(p.stop)
	}
}
