package strategy

import (
	"github.com/Dev0031/quanttrader/internal/models"
	"github.com/shopspring/decimal"
)

// ToTradeSignal converts a strategy plug-in's Signal into the
// domain-wide models.TradeSignal the risk evaluator and event bus speak.
// Entry signals map to Buy/Sell by direction; exit signals map to
// CloseLong/CloseShort by the direction being exited.
func ToTradeSignal(s Signal) models.TradeSignal {
	out := models.TradeSignal{
		Symbol:        s.Symbol,
		Price:         decimal.NewFromFloat(s.Price),
		Strategy:      s.Strategy,
		Confidence:    s.Confidence,
		RequestedRisk: s.Strength,
		Timestamp:     s.Timestamp,
	}

	switch s.Type {
	case SignalTypeEntry:
		if s.Direction == DirectionLong {
			out.Action = models.ActionBuy
		} else {
			out.Action = models.ActionSell
		}
	case SignalTypeExit, SignalTypeStopLoss, SignalTypeTakeProfit:
		if s.Direction == DirectionLong {
			out.Action = models.ActionCloseLong
		} else {
			out.Action = models.ActionCloseShort
		}
	default:
		out.Action = models.ActionNone
	}

	if s.StopLoss != 0 {
		sl := decimal.NewFromFloat(s.StopLoss)
		out.StopLoss = &sl
	}
	if s.TakeProfit != 0 {
		tp := decimal.NewFromFloat(s.TakeProfit)
		out.TakeProfit = &tp
	}

	return out
}

// ToTradeSignals converts an entire strategy output batch, dropping
// signals with SignalTypeNone since the pipeline only forwards
// directional or close intents downstream. Confluence across strategies
// (ApplyConfluence) runs on the converted batch, not inside this
// conversion.
func ToTradeSignals(signals []Signal) []models.TradeSignal {
	out := make([]models.TradeSignal, 0, len(signals))
	for _, s := range signals {
		if s.Type == SignalTypeNone {
			continue
		}
		out = append(out, ToTradeSignal(s))
	}
	return out
}
