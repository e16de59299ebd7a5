package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Dev0031/quanttrader/internal/cache"
	"github.com/Dev0031/quanttrader/internal/eventbus"
	"github.com/Dev0031/quanttrader/internal/execution"
	"github.com/Dev0031/quanttrader/internal/ingestion"
	"github.com/Dev0031/quanttrader/internal/models"
	"github.com/Dev0031/quanttrader/internal/risk"
	"github.com/Dev0031/quanttrader/internal/strategy"
	"github.com/rs/zerolog/log"
)

// historyDepth bounds the OHLCV slices fed to the strategy manager per
// symbol; Manager.Analyze only needs enough candles to satisfy the
// slowest indicator's lookback.
const historyDepth = 500

// symbolHistory accumulates closed candles for one symbol as plain
// float64 slices, the shape strategy.Manager.Analyze expects.
type symbolHistory struct {
	opens, highs, lows, closes, volumes []float64
}

func (h *symbolHistory) push(c models.Candle) {
	o, _ := c.Open.Float64()
	hi, _ := c.High.Float64()
	lo, _ := c.Low.Float64()
	cl, _ := c.Close.Float64()
	v, _ := c.Volume.Float64()

	h.opens = append(h.opens, o)
	h.highs = append(h.highs, hi)
	h.lows = append(h.lows, lo)
	h.closes = append(h.closes, cl)
	h.volumes = append(h.volumes, v)

	if len(h.closes) > historyDepth {
		h.opens = h.opens[1:]
		h.highs = h.highs[1:]
		h.lows = h.lows[1:]
		h.closes = h.closes[1:]
		h.volumes = h.volumes[1:]
	}
}

// Pipeline wires the tick -> candle -> strategy -> risk -> execution flow
// across the event bus, driven by whatever ingestion.MarketDataProvider
// the caller configures (live websocket, REST fallback, or the
// deterministic simulation provider for backtests).
//
// This coexists with the original Orchestrator above, which remains the
// operator-facing control surface (HTTP API, broadcaster, legacy
// executor/risk types). Pipeline is the spec-conformant data path; a
// deployment can run Orchestrator for its HTTP surface while Pipeline
// drives trading, sharing the same event bus and cache.
type Pipeline struct {
	bus           eventbus.Bus
	cache         *cache.Cache
	aggregator    *strategy.CandleAggregator
	stratMgr      *strategy.Manager
	riskEval      *risk.Evaluator
	adapter       execution.Adapter
	provider      ingestion.MarketDataProvider
	timeframe     string
	minConfidence float64
	degraded      *strategy.DegradedPublisher

	mu      sync.Mutex
	history map[string]*symbolHistory
	equity  float64
}

// PipelineConfig collects the components Pipeline wires together. Callers
// build each component independently (NewInProcessBus, NewCandleAggregator,
// strategy.NewManager, risk.NewEvaluator, a chosen execution.Adapter, and
// an ingestion.MarketDataProvider) and hand them in here.
type PipelineConfig struct {
	Bus           eventbus.Bus
	Cache         *cache.Cache
	Aggregator    *strategy.CandleAggregator
	Strategies    *strategy.Manager
	Risk          *risk.Evaluator
	Adapter       execution.Adapter
	Provider      ingestion.MarketDataProvider
	Timeframe     string
	InitialEquity float64
	// MinConfidence is the post-confluence-boost cutoff (section 4.3);
	// zero defers to strategy.DefaultMinConfidenceScore.
	MinConfidence float64
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	p := &Pipeline{
		bus:           cfg.Bus,
		cache:         cfg.Cache,
		aggregator:    cfg.Aggregator,
		stratMgr:      cfg.Strategies,
		riskEval:      cfg.Risk,
		adapter:       cfg.Adapter,
		provider:      cfg.Provider,
		timeframe:     cfg.Timeframe,
		minConfidence: cfg.MinConfidence,
		degraded:      strategy.NewDegradedPublisher(cfg.Bus),
		history:       make(map[string]*symbolHistory),
		equity:        cfg.InitialEquity,
	}

	p.bus.Subscribe(eventbus.TopicMarketTick, p.onTick)
	p.bus.Subscribe(eventbus.TopicCandleClosed, p.onCandleClosed)
	p.bus.Subscribe(eventbus.TopicStrategySignal, p.onSignal)
	p.bus.Subscribe(eventbus.TopicOrdersApproved, p.onOrderApproved)

	return p
}

// Start launches the configured market data provider; the rest of the
// pipeline runs reactively off the events it publishes.
func (p *Pipeline) Start(ctx context.Context) error {
	if p.provider == nil {
		return fmt.Errorf("pipeline: no market data provider configured")
	}
	return p.provider.Start(ctx)
}

func (p *Pipeline) Stop() {
	if p.provider != nil {
		p.provider.Stop()
	}
	p.bus.Close()
}

// onTick runs the section 4.3 per-tick evaluate(tick, candles) -> TradeSignal?
// contract: every enabled strategy is asked for an opinion on this tick
// against the closed-candle history preceding it, the raw opinions are
// combined via the confluence boost, and survivors publish individually.
func (p *Pipeline) onTick(env eventbus.Envelope) {
	tick, ok := env.Payload.(models.MarketTick)
	if !ok {
		return
	}
	p.aggregator.Ingest(tick)

	if p.stratMgr == nil {
		return
	}

	opens, highs, lows, closes, volumes := p.symbolSeries(tick.Symbol)
	if len(closes) == 0 {
		return
	}

	raw := p.stratMgr.EvaluateTick(tick, opens, highs, lows, closes, volumes)
	if len(raw) == 0 {
		return
	}

	p.publishSurvivors(strategy.ApplyConfluence(raw, p.minConfidence))
}

// onCandleClosed runs the candle-close combine step: every enabled
// strategy's raw Analyze signals for the closed candle are collected,
// boosted/filtered by ApplyConfluence, and survivors publish individually
// (section 4.3) instead of collapsing to one scorer-weighted recommendation.
func (p *Pipeline) onCandleClosed(env eventbus.Envelope) {
	candle, ok := env.Payload.(models.Candle)
	if !ok {
		return
	}

	p.mu.Lock()
	h, exists := p.history[candle.Symbol]
	if !exists {
		h = &symbolHistory{}
		p.history[candle.Symbol] = h
	}
	h.push(candle)
	opens, highs, lows, closes, volumes := append([]float64{}, h.opens...), append([]float64{}, h.highs...), append([]float64{}, h.lows...), append([]float64{}, h.closes...), append([]float64{}, h.volumes...)
	p.mu.Unlock()

	if p.stratMgr == nil {
		return
	}

	currentPrice, _ := candle.Close.Float64()
	rawSignals := p.stratMgr.AnalyzeRaw(candle.Symbol, p.timeframe, opens, highs, lows, closes, volumes, currentPrice)
	if len(rawSignals) == 0 {
		return
	}

	p.publishSurvivors(strategy.ApplyConfluence(strategy.ToTradeSignals(rawSignals), p.minConfidence))
}

// symbolSeries returns a snapshot copy of the OHLCV history accumulated for
// symbol so far.
func (p *Pipeline) symbolSeries(symbol string) (opens, highs, lows, closes, volumes []float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, exists := p.history[symbol]
	if !exists {
		return nil, nil, nil, nil, nil
	}
	return append([]float64{}, h.opens...), append([]float64{}, h.highs...), append([]float64{}, h.lows...), append([]float64{}, h.closes...), append([]float64{}, h.volumes...)
}

// publishSurvivors publishes each confluence survivor individually via the
// degraded-mode publisher, so a busy/unhealthy bus buffers instead of
// silently losing a signal.
func (p *Pipeline) publishSurvivors(signals []models.TradeSignal) {
	for _, sig := range signals {
		p.degraded.Publish(eventbus.TopicStrategySignal, sig, sig.CorrelationID)
	}
}

func (p *Pipeline) onSignal(env eventbus.Envelope) {
	signal, ok := env.Payload.(models.TradeSignal)
	if !ok {
		return
	}
	if p.riskEval == nil {
		return
	}

	p.mu.Lock()
	equity := p.equity
	p.mu.Unlock()

	p.riskEval.Evaluate(signal, equity)
}

func (p *Pipeline) onOrderApproved(env eventbus.Envelope) {
	order, ok := env.Payload.(*models.Order)
	if !ok {
		return
	}
	if p.adapter == nil {
		return
	}

	placeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result := p.adapter.PlaceOrder(placeCtx, order)
	if !result.Success {
		log.Error().Err(result.Err).Str("orderId", order.ID).Msg("pipeline: order placement failed")
		return
	}

	if err := p.bus.Publish(eventbus.TopicOrdersExecuted, result, env.CorrelationID); err != nil {
		log.Error().Err(err).Str("orderId", order.ID).Msg("pipeline: failed to publish execution result")
	}
}

// SetEquity updates the equity figure fed to risk sizing; callers update
// this from portfolio snapshots (e.g. after a fill changes balances).
func (p *Pipeline) SetEquity(equity float64) {
	p.mu.Lock()
	p.equity = equity
	p.mu.Unlock()
}
