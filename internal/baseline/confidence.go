package baseline

import (
	"fmt"

	"github.com/corvid-labs/airsight/pkg/telemetry"
)

// Sample-count boundaries for the confidence classifier.
const (
	confidenceLowMin      = 1
	confidenceModerateMin = 10
	confidenceHighMin     = 50

	// fullConfidenceSamples is the sample count at which the numeric
	// confidence score saturates at 1.0.
	fullConfidenceSamples = 100
)

// ConfidenceScore maps a sample count to a numeric confidence in [0, 1].
func ConfidenceScore(n int) float64 {
	if n <= 0 {
		return 0
	}
	if n >= fullConfidenceSamples {
		return 1
	}
	return float64(n) / fullConfidenceSamples
}

// ConfidenceLevel classifies a sample count into a coarse confidence band.
func ConfidenceLevel(n int) string {
	switch {
	case n >= confidenceHighMin:
		return telemetry.ConfidenceHigh
	case n >= confidenceModerateMin:
		return telemetry.ConfidenceModerate
	case n >= confidenceLowMin:
		return telemetry.ConfidenceLow
	default:
		return telemetry.ConfidenceNone
	}
}

// ConfidenceDescription returns a human-readable explanation of the
// classifier's current band, suitable for UI display.
func ConfidenceDescription(n int) string {
	switch ConfidenceLevel(n) {
	case telemetry.ConfidenceHigh:
		return fmt.Sprintf("Thresholds tuned to this environment (%d samples)", n)
	case telemetry.ConfidenceModerate:
		return fmt.Sprintf("Baseline forming (%d samples); thresholds usable but still refining", n)
	case telemetry.ConfidenceLow:
		return fmt.Sprintf("Learning (%d/%d samples); using conservative defaults", n, confidenceModerateMin)
	default:
		return "No telemetry observed yet; using profile defaults"
	}
}
