package insight

import "github.com/corvid-labs/airsight/pkg/telemetry"

// Summarize counts a ranked card list by severity and functional group.
// The top insight is the first element of the (already sorted) input.
func Summarize(cards []telemetry.InsightCard) telemetry.InsightSummary {
	sum := telemetry.InsightSummary{
		Total:      len(cards),
		BySeverity: make(map[string]int),
		ByGroup:    make(map[string]int),
	}
	for i := range cards {
		sum.BySeverity[cards[i].Severity]++
		sum.ByGroup[cards[i].Group]++
	}
	if len(cards) > 0 {
		top := cards[0]
		sum.Top = &top
	}
	return sum
}

// GroupCards buckets a ranked card list by functional group, preserving
// rank order within each bucket.
func GroupCards(cards []telemetry.InsightCard) map[string][]telemetry.InsightCard {
	out := make(map[string][]telemetry.InsightCard)
	for _, c := range cards {
		out[c.Group] = append(out[c.Group], c)
	}
	return out
}
