package strategy

import "github.com/Dev0031/quanttrader/internal/models"

// DefaultMinConfidenceScore is the cutoff applied after the confluence
// boost when config does not override it (section 6 strategy config key
// minConfidenceScore).
const DefaultMinConfidenceScore = 0.7

// confluenceWeight scales the boost applied per agreeing signal: a signal
// backed by k of n directional agreements is boosted by 0.3*k/n.
const confluenceWeight = 0.3

// ApplyConfluence groups raw signals for a symbol by directional action
// (Buy/Sell), raises each signal's confidence by 0.3*k/n where k is the
// count agreeing on that direction and n is the total directional signal
// count, clamps to 1.0, then drops everything below minConfidence.
// Non-directional actions (CloseLong/CloseShort) pass through unboosted.
func ApplyConfluence(signals []models.TradeSignal, minConfidence float64) []models.TradeSignal {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidenceScore
	}

	var directional []models.TradeSignal
	var other []models.TradeSignal
	counts := map[models.SignalAction]int{}

	for _, s := range signals {
		if s.Action == models.ActionBuy || s.Action == models.ActionSell {
			directional = append(directional, s)
			counts[s.Action]++
		} else {
			other = append(other, s)
		}
	}

	n := len(directional)
	survivors := make([]models.TradeSignal, 0, len(signals))

	for _, s := range directional {
		k := counts[s.Action]
		boosted := s
		if n > 0 {
			boost := confluenceWeight * float64(k) / float64(n)
			boosted.Confidence = clamp01(s.Confidence + boost)
		}
		if boosted.Confidence >= minConfidence {
			survivors = append(survivors, boosted)
		}
	}

	for _, s := range other {
		if s.Confidence >= minConfidence {
			survivors = append(survivors, s)
		}
	}

	return survivors
}

func clamp01(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	if v < 0 {
		return 0
	}
	return v
}
