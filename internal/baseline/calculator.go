package baseline

import (
	"math"

	"github.com/corvid-labs/airsight/pkg/telemetry"
)

// Floors, caps, and fixed values for derived thresholds. Percentile-based
// derivation is clamped so a sparse or skewed sample window can never
// produce thresholds that would either never fire or fire constantly.
const (
	rfqiTargetFloor = 60
	rfqiPoorFloor   = 40
	chUtilFloor     = 50
	chUtilCap       = 85
	densityFloor    = 20
	latencyFloor    = 30
	latencyDefault  = 75
	retryCap        = 30
	retryDefault    = 15

	// Fixed values not derived from samples; the collector does not
	// report noise floor or interference distributions.
	noiseFloorDbm    = -85
	interferenceHigh = 0.3
)

// Defaults returns the threshold bundle served before any samples exist.
// Each derived value sits at its clamp floor.
func Defaults() telemetry.BaselineThresholds {
	return telemetry.BaselineThresholds{
		ProfileThresholds: telemetry.ProfileThresholds{
			RFQITarget:            rfqiTargetFloor,
			RFQIPoor:              rfqiPoorFloor,
			ChannelUtilizationPct: chUtilFloor,
			NoiseFloorDbm:         noiseFloorDbm,
			ClientDensityPerAP:    densityFloor,
			LatencyP95Ms:          latencyDefault,
			RetryRatePct:          retryDefault,
			InterferenceHigh:      interferenceHigh,
		},
		Confidence: 0,
		SampleSize: 0,
	}
}

// Calculate derives an adaptive threshold bundle from the sample window.
//
// RF quality targets come from the upper and lower quartiles, channel
// utilization and client density from high percentiles of the observed
// distribution, latency from P95 and retry rate from P85. Every derived
// value is clamped to a sane operating range.
func Calculate(samples []telemetry.BaselineSample) telemetry.BaselineThresholds {
	n := len(samples)
	if n == 0 {
		return Defaults()
	}

	rfqi := make([]float64, 0, n)
	chUtil := make([]float64, 0, n)
	density := make([]float64, 0, n)
	var latency, retry []float64

	for _, s := range samples {
		rfqi = append(rfqi, s.RFQI)
		chUtil = append(chUtil, s.ChannelUtilizationPct)

		aps := s.APOnlineCount
		if aps < 1 {
			aps = 1
		}
		density = append(density, float64(s.ClientCount)/float64(aps))

		if s.LatencyMs != nil {
			latency = append(latency, *s.LatencyMs)
		}
		if s.RetryRatePct != nil {
			retry = append(retry, *s.RetryRatePct)
		}
	}

	rfqiMean := mean(rfqi)
	chMean := mean(chUtil)

	t := Defaults()
	t.RFQITarget = math.Round(max3(percentile(rfqi, 75), rfqiMean+5, rfqiTargetFloor))
	t.RFQIPoor = math.Round(max3(percentile(rfqi, 25), rfqiMean-15, rfqiPoorFloor))
	t.ChannelUtilizationPct = math.Round(math.Min(chUtilCap,
		max3(percentile(chUtil, 90)+5, chMean+10, chUtilFloor)))
	t.ClientDensityPerAP = math.Round(math.Max(percentile(density, 80), densityFloor))

	if len(latency) > 0 {
		t.LatencyP95Ms = math.Round(math.Max(percentile(latency, 95), latencyFloor))
	}
	if len(retry) > 0 {
		t.RetryRatePct = math.Round(math.Min(retryCap, percentile(retry, 85)+5))
	}

	// Derivation can invert the RFQI pair in a tight distribution; keep
	// poor strictly below target.
	if t.RFQIPoor >= t.RFQITarget {
		t.RFQIPoor = t.RFQITarget - 5
	}

	t.Confidence = ConfidenceScore(n)
	t.SampleSize = n
	return t
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
