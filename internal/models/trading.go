package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketTick is an immutable snapshot of a single trade/quote update.
type MarketTick struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Volume    decimal.Decimal `json:"volume"`
	Bid       decimal.Decimal `json:"bid"`
	Ask       decimal.Decimal `json:"ask"`
	Timestamp time.Time       `json:"timestamp"`
}

// Candle is an immutable OHLCV bar. Invariants (enforced by the aggregator
// that builds one, not by this type): low <= min(open,close) <=
// max(open,close) <= high; closeTime - openTime == interval; openTime is
// aligned to an integer multiple of interval since the Unix epoch.
type Candle struct {
	Symbol    string          `json:"symbol"`
	Interval  string          `json:"interval"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
	OpenTime  time.Time       `json:"openTime"`
	CloseTime time.Time       `json:"closeTime"`
}

// SignalAction is the directional action a strategy recommends.
type SignalAction int

const (
	ActionNone SignalAction = iota
	ActionBuy
	ActionSell
	ActionCloseLong
	ActionCloseShort
)

func (a SignalAction) String() string {
	switch a {
	case ActionBuy:
		return "BUY"
	case ActionSell:
		return "SELL"
	case ActionCloseLong:
		return "CLOSE_LONG"
	case ActionCloseShort:
		return "CLOSE_SHORT"
	default:
		return "NONE"
	}
}

func (a SignalAction) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// TradeSignal is a directional recommendation produced by a strategy
// plug-in. If Action is Buy/Sell and both StopLoss and TakeProfit are set,
// the risk/reward triangle |entry-stop|*MinRR <= |takeprofit-entry| governs
// whether the risk manager approves it.
type TradeSignal struct {
	Symbol        string           `json:"symbol"`
	Action        SignalAction     `json:"action"`
	Price         decimal.Decimal  `json:"price"`
	StopLoss      *decimal.Decimal `json:"stopLoss,omitempty"`
	TakeProfit    *decimal.Decimal `json:"takeProfit,omitempty"`
	Strategy      string           `json:"strategy"`
	Confidence    float64          `json:"confidence"`
	RequestedRisk float64          `json:"requestedRisk,omitempty"`
	CorrelationID string           `json:"correlationId"`
	Timestamp     time.Time        `json:"timestamp"`
}

// OrderSide mirrors the exchange's BUY/SELL vocabulary (spec section 6).
type OrderSide int

const (
	SideBuy OrderSide = iota
	SideSell
)

func (s OrderSide) String() string {
	if s == SideSell {
		return "SELL"
	}
	return "BUY"
}

func (s OrderSide) MarshalJSON() ([]byte, error) { return []byte(`"` + s.String() + `"`), nil }

// OrderType enumerates the exchange order types named in spec section 6.
type OrderType int

const (
	OrderTypeMarket OrderType = iota
	OrderTypeLimit
	OrderTypeStopLoss
	OrderTypeStopLossLimit
	OrderTypeTakeProfit
	OrderTypeTakeProfitLimit
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeLimit:
		return "LIMIT"
	case OrderTypeStopLoss:
		return "STOP_LOSS"
	case OrderTypeStopLossLimit:
		return "STOP_LOSS_LIMIT"
	case OrderTypeTakeProfit:
		return "TAKE_PROFIT"
	case OrderTypeTakeProfitLimit:
		return "TAKE_PROFIT_LIMIT"
	default:
		return "MARKET"
	}
}

func (t OrderType) MarshalJSON() ([]byte, error) { return []byte(`"` + t.String() + `"`), nil }

// OrderStatus is the exchange-vocabulary lifecycle state of an Order.
// Lifecycle: New -> (PartiallyFilled)* -> Filled | Canceled | Rejected | Expired.
// Terminal states are absorbing.
type OrderStatus int

const (
	OrderStatusNew OrderStatus = iota
	OrderStatusPartiallyFilled
	OrderStatusFilled
	OrderStatusCanceled
	OrderStatusRejected
	OrderStatusExpired
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPartiallyFilled:
		return "PARTIALLY_FILLED"
	case OrderStatusFilled:
		return "FILLED"
	case OrderStatusCanceled:
		return "CANCELED"
	case OrderStatusRejected:
		return "REJECTED"
	case OrderStatusExpired:
		return "EXPIRED"
	default:
		return "NEW"
	}
}

func (s OrderStatus) MarshalJSON() ([]byte, error) { return []byte(`"` + s.String() + `"`), nil }

// IsTerminal reports whether a status cannot transition further.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusFilled, OrderStatusCanceled, OrderStatusRejected, OrderStatusExpired:
		return true
	default:
		return false
	}
}

// Order is the risk-approved, adapter-placed unit of execution.
type Order struct {
	ID             string          `json:"id"`
	ExchangeID     string          `json:"exchangeId,omitempty"`
	Symbol         string          `json:"symbol"`
	Side           OrderSide       `json:"side"`
	Type           OrderType       `json:"type"`
	Quantity       decimal.Decimal `json:"quantity"`
	Price          decimal.Decimal `json:"price,omitempty"`
	StopPrice      decimal.Decimal `json:"stopPrice,omitempty"`
	Status         OrderStatus     `json:"status"`
	FilledQuantity decimal.Decimal `json:"filledQuantity"`
	FilledPrice    decimal.Decimal `json:"filledPrice,omitempty"`
	Commission     decimal.Decimal `json:"commission,omitempty"`
	StopLoss       *decimal.Decimal `json:"stopLoss,omitempty"`
	TakeProfit     *decimal.Decimal `json:"takeProfit,omitempty"`
	Strategy       string          `json:"strategy,omitempty"`
	CorrelationID  string          `json:"correlationId"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      *time.Time      `json:"updatedAt,omitempty"`
}

// PositionSide is the open-position direction.
type PositionSide int

const (
	PositionLong PositionSide = iota
	PositionShort
)

func (s PositionSide) String() string {
	if s == PositionShort {
		return "SHORT"
	}
	return "LONG"
}

func (s PositionSide) MarshalJSON() ([]byte, error) { return []byte(`"` + s.String() + `"`), nil }

// Position is an open position, owned by the execution engine, from first
// fill to flat.
type Position struct {
	Symbol          string           `json:"symbol"`
	Side            PositionSide     `json:"side"`
	EntryPrice      decimal.Decimal  `json:"entryPrice"`
	CurrentPrice    decimal.Decimal  `json:"currentPrice"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnrealizedPnL   decimal.Decimal  `json:"unrealizedPnl"`
	RealizedPnL     decimal.Decimal  `json:"realizedPnl"`
	StopLoss        *decimal.Decimal `json:"stopLoss,omitempty"`
	TakeProfit      *decimal.Decimal `json:"takeProfit,omitempty"`
	OpenedAt        time.Time        `json:"openedAt"`
}

// PortfolioSnapshot is the owning service's periodic equity/P&L report,
// carried across process boundaries through the cache, never by reference.
type PortfolioSnapshot struct {
	TotalEquity       decimal.Decimal `json:"totalEquity"`
	AvailableBalance  decimal.Decimal `json:"availableBalance"`
	TotalUnrealizedPnL decimal.Decimal `json:"totalUnrealizedPnl"`
	TotalRealizedPnL  decimal.Decimal `json:"totalRealizedPnl"`
	DrawdownPercent   float64         `json:"drawdownPercent"`
	OpenPositions     []Position      `json:"openPositions"`
	Timestamp         time.Time       `json:"timestamp"`
}

// RiskLimits is runtime-mutable; risk.Evaluator holds it behind a
// read/write lock and Evaluator.SetLimits is the mutation path.
type RiskLimits struct {
	MaxRiskPerTradePercent float64 `json:"maxRiskPerTradePercent" yaml:"maxRiskPerTradePercent"`
	MaxDrawdownPercent     float64 `json:"maxDrawdownPercent" yaml:"maxDrawdownPercent"`
	MinRiskRewardRatio     float64 `json:"minRiskRewardRatio" yaml:"minRiskRewardRatio"`
	MaxOpenPositions       int     `json:"maxOpenPositions" yaml:"maxOpenPositions"`
	MaxDailyLoss           float64 `json:"maxDailyLoss" yaml:"maxDailyLoss"`
	KillSwitchEnabled      bool    `json:"killSwitchEnabled" yaml:"killSwitchEnabled"`
}

// TradingMode is the process-wide, single-writer, lock-free-read flag
// described in spec section 9.
type TradingMode int32

const (
	ModeLive TradingMode = iota
	ModePaper
	ModeBacktest
	ModeSimulation
)

func (m TradingMode) String() string {
	switch m {
	case ModeLive:
		return "LIVE"
	case ModePaper:
		return "PAPER"
	case ModeBacktest:
		return "BACKTEST"
	case ModeSimulation:
		return "SIMULATION"
	default:
		return "UNKNOWN"
	}
}

// AdapterResult is the typed outcome every execution adapter call returns;
// callers branch on Success rather than treating every failure as an error.
type AdapterResult struct {
	Success        bool
	Order          *Order
	ExchangeOrderID string
	Err            error
}

// RiskAlert is a non-error validation or execution-failure outcome,
// published on the risk.alerts topic rather than returned as an error.
type RiskAlert struct {
	Symbol        string    `json:"symbol"`
	Reason        string    `json:"reason"`
	Severity      float64   `json:"severity"`
	CorrelationID string    `json:"correlationId"`
	Timestamp     time.Time `json:"timestamp"`
}

// KillSwitchTriggeredEvent is published when the kill switch activates.
type KillSwitchTriggeredEvent struct {
	Reason          string    `json:"reason"`
	DrawdownPercent float64   `json:"drawdownPercent"`
	Timestamp       time.Time `json:"timestamp"`
}

// HealthStatus is the coarse status carried by SystemHealth events.
type HealthStatus int

const (
	HealthOK HealthStatus = iota
	HealthDegraded
)

func (h HealthStatus) String() string {
	if h == HealthDegraded {
		return "DEGRADED"
	}
	return "OK"
}

func (h HealthStatus) MarshalJSON() ([]byte, error) { return []byte(`"` + h.String() + `"`), nil }

// SystemHealthEvent reports a component health transition.
type SystemHealthEvent struct {
	Component string       `json:"component"`
	Status    HealthStatus `json:"status"`
	Message   string       `json:"message,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}
