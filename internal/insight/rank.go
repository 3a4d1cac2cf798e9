package insight

import (
	"sort"

	"github.com/corvid-labs/airsight/pkg/telemetry"
)

// Ranking weights. The four inputs trade off how bad the finding is,
// how sure the detector is, how often it has been seen, and how much of
// the network it touches.
const (
	weightImpact     = 0.40
	weightConfidence = 0.25
	weightRecurrence = 0.15
	weightScope      = 0.20
)

// scopeWeight maps an insight scope to its blast-radius weight.
func scopeWeight(scope string) float64 {
	switch scope {
	case telemetry.ScopeNetwork:
		return 1.0
	case telemetry.ScopeSite:
		return 0.75
	case telemetry.ScopeAP:
		return 0.5
	case telemetry.ScopeClient:
		return 0.25
	default:
		return 0.25
	}
}

// rankScore computes a card's composite score from its ranking inputs.
// Pure and deterministic; higher means more urgent.
func rankScore(c *telemetry.InsightCard) float64 {
	return weightImpact*c.Impact +
		weightConfidence*c.Confidence +
		weightRecurrence*c.Recurrence +
		weightScope*scopeWeight(c.Scope)
}

// rankCards recomputes every card's score and sorts descending. The sort
// is stable so ties preserve detector emission order.
func rankCards(cards []telemetry.InsightCard) {
	for i := range cards {
		cards[i].RankScore = rankScore(&cards[i])
	}
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].RankScore > cards[j].RankScore
	})
}
