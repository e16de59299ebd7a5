package execution

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/Dev0031/quanttrader/internal/binance"
	"github.com/Dev0031/quanttrader/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CircuitFallback is invoked when the Live adapter trips its failure
// circuit, giving the orchestrator the chance to flip TradingMode to Paper
// (section 4.5: "mode provider flips to Paper; trading continues without
// interruption").
type CircuitFallback func()

// liveFailureThreshold is the number of consecutive failed exchange calls
// that trips the circuit. Every error from the client counts: connection
// failures and HTTP errors of any status, 4xx rejections included.
const liveFailureThreshold = 5

// LiveAdapter places orders through the signed Binance REST client. API
// credentials are resolved lazily on first use through SecretProvider,
// guarded by a sync.Once so concurrent callers share one load (section 4.5
// "single-flight lock guarding first load").
type LiveAdapter struct {
	secrets        SecretProvider
	apiKeyName     string
	apiSecretName  string
	testnet        bool
	limiter        *WeightLimiter
	onCircuitOpen  CircuitFallback

	initOnce sync.Once
	initErr  error
	client   *binance.Client

	mu                  sync.Mutex
	consecutiveFailures int
	circuitOpen         bool
}

func NewLiveAdapter(secrets SecretProvider, apiKeyName, apiSecretName string, testnet bool, onCircuitOpen CircuitFallback) *LiveAdapter {
	return &LiveAdapter{
		secrets:       secrets,
		apiKeyName:    apiKeyName,
		apiSecretName: apiSecretName,
		testnet:       testnet,
		limiter:       NewWeightLimiter(),
		onCircuitOpen: onCircuitOpen,
	}
}

func (a *LiveAdapter) Name() string { return "live" }

func (a *LiveAdapter) ensureClient() error {
	a.initOnce.Do(func() {
		apiKey, err := a.secrets.Get(a.apiKeyName)
		if err != nil {
			a.initErr = fmt.Errorf("live adapter: loading api key: %w", err)
			return
		}
		secretKey, err := a.secrets.Get(a.apiSecretName)
		if err != nil {
			a.initErr = fmt.Errorf("live adapter: loading secret key: %w", err)
			return
		}
		a.client = binance.NewClient(&binance.Config{
			APIKey:    apiKey,
			SecretKey: secretKey,
			Testnet:   a.testnet,
		})
	})
	return a.initErr
}

func (a *LiveAdapter) recordFailure() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.consecutiveFailures++
	if !a.circuitOpen && a.consecutiveFailures >= liveFailureThreshold {
		a.circuitOpen = true
		log.Error().Int("consecutiveFailures", a.consecutiveFailures).Msg("live adapter: circuit open, falling back to paper trading")
		if a.onCircuitOpen != nil {
			a.onCircuitOpen()
		}
	}
}

func (a *LiveAdapter) recordSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.consecutiveFailures = 0
	a.circuitOpen = false
}

// PlaceOrder costs weight 1 on the shared rate limiter; a real deployment
// would weigh this per Binance's documented per-endpoint cost table.
const placeOrderWeight = 1

func (a *LiveAdapter) PlaceOrder(ctx context.Context, order *models.Order) models.AdapterResult {
	if err := a.ensureClient(); err != nil {
		return models.AdapterResult{Success: false, Err: err}
	}
	if err := a.limiter.Wait(ctx, placeOrderWeight); err != nil {
		return models.AdapterResult{Success: false, Err: err}
	}

	qty, _ := order.Quantity.Float64()
	price, _ := order.Price.Float64()

	req := binance.OrderRequest{
		Symbol:      order.Symbol,
		Side:        toBinanceSide(order.Side),
		Type:        toBinanceType(order.Type),
		Quantity:    qty,
		Price:       price,
		TimeInForce: binance.TimeInForceGTC,
	}

	resp, err := a.client.CreateOrder(req)
	if err != nil {
		a.recordFailure()
		return models.AdapterResult{Success: false, Err: err}
	}
	a.recordSuccess()

	return models.AdapterResult{
		Success:         true,
		Order:           fromBinanceOrder(resp, order),
		ExchangeOrderID: strconv.FormatInt(resp.OrderID, 10),
	}
}

func (a *LiveAdapter) CancelOrder(ctx context.Context, exchangeOrderID string) models.AdapterResult {
	return models.AdapterResult{Success: false, Err: fmt.Errorf("live adapter: cancel requires symbol context, use CancelSymbolOrder")}
}

// CancelSymbolOrder cancels a live order; the exchange requires the symbol
// alongside the numeric order id, unlike Paper/Fake's id-only contract.
func (a *LiveAdapter) CancelSymbolOrder(ctx context.Context, symbol string, exchangeOrderID int64) models.AdapterResult {
	if err := a.ensureClient(); err != nil {
		return models.AdapterResult{Success: false, Err: err}
	}
	if err := a.limiter.Wait(ctx, placeOrderWeight); err != nil {
		return models.AdapterResult{Success: false, Err: err}
	}
	resp, err := a.client.CancelOrder(symbol, exchangeOrderID)
	if err != nil {
		a.recordFailure()
		return models.AdapterResult{Success: false, Err: err}
	}
	a.recordSuccess()
	return models.AdapterResult{Success: true, Order: fromBinanceOrder(resp, nil), ExchangeOrderID: strconv.FormatInt(resp.OrderID, 10)}
}

func (a *LiveAdapter) QueryOrder(ctx context.Context, exchangeOrderID string) models.AdapterResult {
	return models.AdapterResult{Success: false, Err: fmt.Errorf("live adapter: query requires symbol context, use QuerySymbolOrder")}
}

func (a *LiveAdapter) QuerySymbolOrder(ctx context.Context, symbol string, exchangeOrderID int64) models.AdapterResult {
	if err := a.ensureClient(); err != nil {
		return models.AdapterResult{Success: false, Err: err}
	}
	if err := a.limiter.Wait(ctx, placeOrderWeight); err != nil {
		return models.AdapterResult{Success: false, Err: err}
	}
	resp, err := a.client.GetOrder(symbol, exchangeOrderID)
	if err != nil {
		a.recordFailure()
		return models.AdapterResult{Success: false, Err: err}
	}
	a.recordSuccess()
	return models.AdapterResult{Success: true, Order: fromBinanceOrder(resp, nil), ExchangeOrderID: strconv.FormatInt(resp.OrderID, 10)}
}

func toBinanceSide(s models.OrderSide) binance.OrderSide {
	if s == models.SideSell {
		return binance.SideSell
	}
	return binance.SideBuy
}

func toBinanceType(t models.OrderType) binance.OrderType {
	switch t {
	case models.OrderTypeLimit:
		return binance.OrderTypeLimit
	case models.OrderTypeStopLoss:
		return binance.OrderTypeStopLoss
	case models.OrderTypeStopLossLimit:
		return binance.OrderTypeStopLossLimit
	case models.OrderTypeTakeProfit:
		return binance.OrderTypeTakeProfit
	case models.OrderTypeTakeProfitLimit:
		return binance.OrderTypeTakeProfitLimit
	default:
		return binance.OrderTypeMarket
	}
}

func fromBinanceStatus(s binance.OrderStatus) models.OrderStatus {
	switch s {
	case binance.OrderStatusPartiallyFilled:
		return models.OrderStatusPartiallyFilled
	case binance.OrderStatusFilled:
		return models.OrderStatusFilled
	case binance.OrderStatusCanceled, binance.OrderStatusPendingCancel:
		return models.OrderStatusCanceled
	case binance.OrderStatusRejected:
		return models.OrderStatusRejected
	case binance.OrderStatusExpired:
		return models.OrderStatusExpired
	default:
		return models.OrderStatusNew
	}
}

// fromBinanceOrder maps the exchange response fields named in section 6
// onto the domain Order, computing average fill price as
// cummulativeQuoteQty/executedQty when executedQty > 0.
func fromBinanceOrder(resp *binance.Order, base *models.Order) *models.Order {
	out := &models.Order{}
	if base != nil {
		out = &models.Order{
			ID:            base.ID,
			StopLoss:      base.StopLoss,
			TakeProfit:    base.TakeProfit,
			Strategy:      base.Strategy,
			CorrelationID: base.CorrelationID,
			CreatedAt:     base.CreatedAt,
		}
	}
	out.ExchangeID = strconv.FormatInt(resp.OrderID, 10)
	out.Symbol = resp.Symbol
	out.Status = fromBinanceStatus(resp.Status)

	qty, _ := decimal.NewFromString(resp.OrigQty)
	out.Quantity = qty

	executed, _ := decimal.NewFromString(resp.ExecutedQty)
	out.FilledQuantity = executed

	if !executed.IsZero() {
		quoteQty, err := decimal.NewFromString(resp.CummulativeQuoteQty)
		if err == nil {
			out.FilledPrice = quoteQty.Div(executed)
		}
	}

	return out
}
