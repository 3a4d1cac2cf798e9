package baseline

import (
	"testing"
	"time"

	"github.com/corvid-labs/airsight/pkg/telemetry"
)

func makeSamples(n int, rfqi, chUtil float64, clients, apsOnline int) []telemetry.BaselineSample {
	out := make([]telemetry.BaselineSample, n)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = telemetry.BaselineSample{
			Timestamp:             base.Add(time.Duration(i) * time.Minute),
			RFQI:                  rfqi,
			ChannelUtilizationPct: chUtil,
			ClientCount:           clients,
			APOnlineCount:         apsOnline,
		}
	}
	return out
}

func TestCalculateEmptyReturnsDefaults(t *testing.T) {
	got := Calculate(nil)
	want := Defaults()
	if got != want {
		t.Errorf("Calculate(nil) = %+v, want defaults %+v", got, want)
	}
	if got.Confidence != 0 || got.SampleSize != 0 {
		t.Errorf("defaults should carry zero confidence and sample size, got %+v", got)
	}
}

func TestCalculateConfidenceSaturates(t *testing.T) {
	got := Calculate(makeSamples(100, 70, 40, 60, 4))
	if got.Confidence != 1 {
		t.Errorf("confidence = %v with 100 samples, want 1", got.Confidence)
	}
	if got.SampleSize != 100 {
		t.Errorf("sample size = %d, want 100", got.SampleSize)
	}

	partial := Calculate(makeSamples(40, 70, 40, 60, 4))
	if partial.Confidence != 0.4 {
		t.Errorf("confidence = %v with 40 samples, want 0.4", partial.Confidence)
	}
}

func TestCalculateFloorsApply(t *testing.T) {
	// A very quiet environment must still get thresholds at the floors,
	// not values so low they fire on any traffic.
	got := Calculate(makeSamples(50, 20, 5, 2, 4))
	if got.RFQITarget != 60 {
		t.Errorf("rfqi target = %v, want floor 60", got.RFQITarget)
	}
	if got.RFQIPoor != 40 {
		t.Errorf("rfqi poor = %v, want floor 40", got.RFQIPoor)
	}
	if got.ChannelUtilizationPct != 50 {
		t.Errorf("channel utilization = %v, want floor 50", got.ChannelUtilizationPct)
	}
	if got.ClientDensityPerAP != 20 {
		t.Errorf("client density = %v, want floor 20", got.ClientDensityPerAP)
	}
}

func TestCalculateChannelUtilizationCapped(t *testing.T) {
	got := Calculate(makeSamples(50, 70, 95, 60, 4))
	if got.ChannelUtilizationPct != 85 {
		t.Errorf("channel utilization = %v, want cap 85", got.ChannelUtilizationPct)
	}
}

func TestCalculateDerivesFromDistribution(t *testing.T) {
	// Healthy environment: rfqi ~80, utilization ~40, 30 clients/AP.
	got := Calculate(makeSamples(120, 80, 40, 120, 4))
	if got.RFQITarget != 85 { // mean+5 dominates P75 of a constant series
		t.Errorf("rfqi target = %v, want 85", got.RFQITarget)
	}
	if got.RFQIPoor != 80 { // P25 of a constant series dominates mean-15
		t.Errorf("rfqi poor = %v, want 80", got.RFQIPoor)
	}
	if got.ClientDensityPerAP != 30 {
		t.Errorf("client density = %v, want 30", got.ClientDensityPerAP)
	}
	if got.ChannelUtilizationPct != 50 { // max(P90+5=45, mean+10=50, floor 50)
		t.Errorf("channel utilization = %v, want 50", got.ChannelUtilizationPct)
	}
}

func TestCalculateLatencyAndRetry(t *testing.T) {
	samples := makeSamples(60, 70, 40, 60, 4)

	// Without latency/retry observations the fixed defaults hold.
	got := Calculate(samples)
	if got.LatencyP95Ms != 75 {
		t.Errorf("latency = %v without samples, want default 75", got.LatencyP95Ms)
	}
	if got.RetryRatePct != 15 {
		t.Errorf("retry rate = %v without samples, want default 15", got.RetryRatePct)
	}

	for i := range samples {
		samples[i].LatencyMs = telemetry.Ptr(12.0)
		samples[i].RetryRatePct = telemetry.Ptr(40.0)
	}
	got = Calculate(samples)
	if got.LatencyP95Ms != 30 { // floor
		t.Errorf("latency = %v, want floor 30", got.LatencyP95Ms)
	}
	if got.RetryRatePct != 30 { // cap
		t.Errorf("retry rate = %v, want cap 30", got.RetryRatePct)
	}
}

func TestCalculatePoorBelowTarget(t *testing.T) {
	got := Calculate(makeSamples(30, 55, 40, 60, 4))
	if got.RFQIPoor >= got.RFQITarget {
		t.Errorf("rfqi poor (%v) must stay below target (%v)", got.RFQIPoor, got.RFQITarget)
	}
}

func TestCalculateZeroOnlineAPs(t *testing.T) {
	// Division guard: zero online APs must not panic or produce Inf.
	got := Calculate(makeSamples(20, 70, 40, 60, 0))
	if got.ClientDensityPerAP < 20 {
		t.Errorf("client density = %v, want >= floor", got.ClientDensityPerAP)
	}
}
