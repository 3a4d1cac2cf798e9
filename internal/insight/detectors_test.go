package insight

import (
	"testing"
	"time"

	"github.com/corvid-labs/airsight/pkg/telemetry"
	"go.uber.org/zap"
)

func testThresholds() telemetry.ProfileThresholds {
	return telemetry.ProfileThresholds{
		RFQITarget:            70,
		RFQIPoor:              45,
		ChannelUtilizationPct: 60,
		NoiseFloorDbm:         -85,
		ClientDensityPerAP:    30,
		LatencyP95Ms:          50,
		RetryRatePct:          10,
		InterferenceHigh:      0.3,
	}
}

func evalOne(t *testing.T, snap *telemetry.MetricsSnapshot, thresholds telemetry.ProfileThresholds, category string) *telemetry.InsightCard {
	t.Helper()
	e := NewEngine(DefaultConfig(), zap.NewNop())
	cards := e.Generate(snap, thresholds, time.Now())
	for i := range cards {
		if cards[i].Category == category {
			return &cards[i]
		}
	}
	return nil
}

func TestRFQualityCritical(t *testing.T) {
	// rfqi 30 against rfqiPoor 55: 30 < 55*0.7 = 38.5 makes it critical.
	thresholds := testThresholds()
	thresholds.RFQIPoor = 55

	card := evalOne(t, &telemetry.MetricsSnapshot{
		RFQI: telemetry.Ptr(30.0),
	}, thresholds, "rf-quality")
	if card == nil {
		t.Fatal("expected an rf-quality card")
	}
	if card.Severity != telemetry.SeverityCritical {
		t.Errorf("severity = %q, want critical", card.Severity)
	}
	if card.Impact != 0.7 {
		t.Errorf("impact = %v, want 0.7", card.Impact)
	}
	if len(card.Evidence) == 0 {
		t.Error("card has no evidence")
	}
}

func TestRFQualityWarningAboveCriticalCut(t *testing.T) {
	card := evalOne(t, &telemetry.MetricsSnapshot{
		RFQI: telemetry.Ptr(40.0), // between 45*0.7=31.5 and 45
	}, testThresholds(), "rf-quality")
	if card == nil {
		t.Fatal("expected an rf-quality card")
	}
	if card.Severity != telemetry.SeverityWarning {
		t.Errorf("severity = %q, want warning", card.Severity)
	}
}

func TestRFQualitySkippedWhenMissing(t *testing.T) {
	if card := evalOne(t, &telemetry.MetricsSnapshot{}, testThresholds(), "rf-quality"); card != nil {
		t.Errorf("detector fired without rfqi: %+v", card)
	}
}

func TestAPConnectivityCritical(t *testing.T) {
	// 10 APs with 7 online: 30% offline is past the 20% critical cut.
	card := evalOne(t, &telemetry.MetricsSnapshot{
		APCount:       telemetry.Ptr(10),
		APOnlineCount: telemetry.Ptr(7),
	}, testThresholds(), "ap-connectivity")
	if card == nil {
		t.Fatal("expected an ap-connectivity card")
	}
	if card.Severity != telemetry.SeverityCritical {
		t.Errorf("severity = %q, want critical", card.Severity)
	}
}

func TestAPConnectivitySmallOutageWarns(t *testing.T) {
	card := evalOne(t, &telemetry.MetricsSnapshot{
		APCount:       telemetry.Ptr(20),
		APOnlineCount: telemetry.Ptr(18), // 10% offline
	}, testThresholds(), "ap-connectivity")
	if card == nil {
		t.Fatal("expected an ap-connectivity card")
	}
	if card.Severity != telemetry.SeverityWarning {
		t.Errorf("severity = %q, want warning", card.Severity)
	}
}

func TestAPConnectivityZeroAPsSkipped(t *testing.T) {
	card := evalOne(t, &telemetry.MetricsSnapshot{
		APCount:       telemetry.Ptr(0),
		APOnlineCount: telemetry.Ptr(0),
	}, testThresholds(), "ap-connectivity")
	if card != nil {
		t.Errorf("detector fired with zero APs: %+v", card)
	}
}

func TestClientSurgeInfo(t *testing.T) {
	// 70 -> 120 clients: +71% and +50 absolute, below the 100% warning cut.
	card := evalOne(t, &telemetry.MetricsSnapshot{
		ClientCount: telemetry.Ptr(120),
		History:     &telemetry.SnapshotHistory{ClientCount1hAgo: telemetry.Ptr(70)},
	}, testThresholds(), "client-surge")
	if card == nil {
		t.Fatal("expected a client-surge card")
	}
	if card.Severity != telemetry.SeverityInfo {
		t.Errorf("severity = %q, want info", card.Severity)
	}
}

func TestClientSurgeWarningPastDouble(t *testing.T) {
	card := evalOne(t, &telemetry.MetricsSnapshot{
		ClientCount: telemetry.Ptr(90),
		History:     &telemetry.SnapshotHistory{ClientCount1hAgo: telemetry.Ptr(40)},
	}, testThresholds(), "client-surge")
	if card == nil {
		t.Fatal("expected a client-surge card")
	}
	if card.Severity != telemetry.SeverityWarning {
		t.Errorf("severity = %q, want warning", card.Severity)
	}
}

func TestClientSurgeAbsoluteFloor(t *testing.T) {
	// +80% but only +8 absolute: below the 10-client floor.
	card := evalOne(t, &telemetry.MetricsSnapshot{
		ClientCount: telemetry.Ptr(18),
		History:     &telemetry.SnapshotHistory{ClientCount1hAgo: telemetry.Ptr(10)},
	}, testThresholds(), "client-surge")
	if card != nil {
		t.Errorf("surge fired below absolute floor: %+v", card)
	}
}

func TestClientSurgeZeroPriorSkipped(t *testing.T) {
	card := evalOne(t, &telemetry.MetricsSnapshot{
		ClientCount: telemetry.Ptr(50),
		History:     &telemetry.SnapshotHistory{ClientCount1hAgo: telemetry.Ptr(0)},
	}, testThresholds(), "client-surge")
	if card != nil {
		t.Errorf("surge fired on zero prior count: %+v", card)
	}
}

func TestChannelUtilization(t *testing.T) {
	card := evalOne(t, &telemetry.MetricsSnapshot{
		ChannelUtilizationPct: telemetry.Ptr(80.0),
	}, testThresholds(), "channel-utilization")
	if card == nil {
		t.Fatal("expected a channel-utilization card")
	}
	if card.Impact != 0.5 { // (80-60)/(100-60)
		t.Errorf("impact = %v, want 0.5", card.Impact)
	}
}

func TestInterference(t *testing.T) {
	card := evalOne(t, &telemetry.MetricsSnapshot{
		Interference: telemetry.Ptr(0.65),
	}, testThresholds(), "interference")
	if card == nil {
		t.Fatal("expected an interference card")
	}
	if card.Impact != 0.5 { // (0.65-0.3)/(1-0.3)
		t.Errorf("impact = %v, want 0.5", card.Impact)
	}
}

func TestRetryRate(t *testing.T) {
	card := evalOne(t, &telemetry.MetricsSnapshot{
		RetryRatePct: telemetry.Ptr(25.0),
	}, testThresholds(), "retry-rate")
	if card == nil {
		t.Fatal("expected a retry-rate card")
	}
	if card.Severity != telemetry.SeverityWarning {
		t.Errorf("severity = %q, want warning", card.Severity)
	}
}

func TestClientDensity(t *testing.T) {
	// 150 clients on 4 APs = 37.5/AP, above 1.2*30 = 36.
	card := evalOne(t, &telemetry.MetricsSnapshot{
		ClientCount:   telemetry.Ptr(150),
		APOnlineCount: telemetry.Ptr(4),
	}, testThresholds(), "client-density")
	if card == nil {
		t.Fatal("expected a client-density card")
	}
	if card.Severity != telemetry.SeverityInfo {
		t.Errorf("severity = %q, want info", card.Severity)
	}

	// 35/AP sits under the multiplied limit.
	quiet := evalOne(t, &telemetry.MetricsSnapshot{
		ClientCount:   telemetry.Ptr(140),
		APOnlineCount: telemetry.Ptr(4),
	}, testThresholds(), "client-density")
	if quiet != nil {
		t.Errorf("density fired under the limit: %+v", quiet)
	}
}

func TestSignalQuality(t *testing.T) {
	weak := evalOne(t, &telemetry.MetricsSnapshot{
		AvgClientRSSI: telemetry.Ptr(-77.0),
	}, testThresholds(), "signal-quality")
	if weak == nil {
		t.Fatal("expected a signal-quality card")
	}
	if weak.Severity != telemetry.SeverityInfo {
		t.Errorf("severity = %q at -77 dBm, want info", weak.Severity)
	}

	veryWeak := evalOne(t, &telemetry.MetricsSnapshot{
		AvgClientRSSI: telemetry.Ptr(-82.0),
	}, testThresholds(), "signal-quality")
	if veryWeak == nil {
		t.Fatal("expected a signal-quality card")
	}
	if veryWeak.Severity != telemetry.SeverityWarning {
		t.Errorf("severity = %q at -82 dBm, want warning", veryWeak.Severity)
	}
}

func TestTrend1h(t *testing.T) {
	degrading := evalOne(t, &telemetry.MetricsSnapshot{
		RFQI:    telemetry.Ptr(50.0),
		History: &telemetry.SnapshotHistory{RFQI1hAgo: telemetry.Ptr(70.0)},
	}, testThresholds(), "rfqi-trend-1h")
	if degrading == nil {
		t.Fatal("expected a trend card for a -28% move")
	}
	if degrading.Severity != telemetry.SeverityWarning {
		t.Errorf("severity = %q for -28%%, want warning", degrading.Severity)
	}
	if degrading.Trend == nil || degrading.Trend.Direction != "degrading" || degrading.Trend.Baseline != "1h" {
		t.Errorf("trend annotation = %+v", degrading.Trend)
	}

	improving := evalOne(t, &telemetry.MetricsSnapshot{
		RFQI:    telemetry.Ptr(80.0),
		History: &telemetry.SnapshotHistory{RFQI1hAgo: telemetry.Ptr(65.0)},
	}, testThresholds(), "rfqi-trend-1h")
	if improving == nil {
		t.Fatal("expected a trend card for a +23% move")
	}
	if improving.Severity != telemetry.SeverityInfo {
		t.Errorf("severity = %q for improvement, want info", improving.Severity)
	}

	flat := evalOne(t, &telemetry.MetricsSnapshot{
		RFQI:    telemetry.Ptr(68.0),
		History: &telemetry.SnapshotHistory{RFQI1hAgo: telemetry.Ptr(70.0)},
	}, testThresholds(), "rfqi-trend-1h")
	if flat != nil {
		t.Errorf("trend fired on a -3%% move: %+v", flat)
	}
}

func TestComparison24h(t *testing.T) {
	card := evalOne(t, &telemetry.MetricsSnapshot{
		RFQI:    telemetry.Ptr(55.0),
		History: &telemetry.SnapshotHistory{RFQI24hAgo: telemetry.Ptr(70.0)},
	}, testThresholds(), "rfqi-comparison-24h")
	if card == nil {
		t.Fatal("expected a 24h comparison card for a -21% drop")
	}
	if card.Severity != telemetry.SeverityInfo {
		t.Errorf("severity = %q, want info", card.Severity)
	}

	mild := evalOne(t, &telemetry.MetricsSnapshot{
		RFQI:    telemetry.Ptr(65.0),
		History: &telemetry.SnapshotHistory{RFQI24hAgo: telemetry.Ptr(70.0)},
	}, testThresholds(), "rfqi-comparison-24h")
	if mild != nil {
		t.Errorf("comparison fired on a -7%% drop: %+v", mild)
	}
}

func TestAPRestartPattern(t *testing.T) {
	card := evalOne(t, &telemetry.MetricsSnapshot{
		APs: []telemetry.APMetrics{
			{ID: "ap-1", Name: "Lobby", RestartCount24h: telemetry.Ptr(5)},
			{ID: "ap-2", Name: "Cafe", RestartCount24h: telemetry.Ptr(0)},
		},
	}, testThresholds(), "ap-restart-pattern")
	if card == nil {
		t.Fatal("expected an ap-restart card")
	}
	if card.Scope != telemetry.ScopeAP {
		t.Errorf("scope = %q, want ap", card.Scope)
	}
	if card.Impact != 0.5 { // 1 of 2 APs affected
		t.Errorf("impact = %v, want 0.5", card.Impact)
	}
}

func TestAPResourceStress(t *testing.T) {
	card := evalOne(t, &telemetry.MetricsSnapshot{
		APs: []telemetry.APMetrics{
			{ID: "ap-1", MemoryPct: telemetry.Ptr(92.0)},
			{ID: "ap-2", CPUPct: telemetry.Ptr(95.0)},
			{ID: "ap-3", MemoryPct: telemetry.Ptr(40.0), CPUPct: telemetry.Ptr(30.0)},
		},
	}, testThresholds(), "ap-resource-stress")
	if card == nil {
		t.Fatal("expected an ap-resource card")
	}
	if card.Severity != telemetry.SeverityWarning {
		t.Errorf("severity = %q, want warning", card.Severity)
	}
}

func TestCapacityForecast(t *testing.T) {
	// 4 APs x 30/AP = 120 capacity; 100 clients is 83% load, growing
	// 25%/day (+20 clients): saturation in (120-100)/20 = 1 day.
	card := evalOne(t, &telemetry.MetricsSnapshot{
		ClientCount:   telemetry.Ptr(100),
		APOnlineCount: telemetry.Ptr(4),
		History:       &telemetry.SnapshotHistory{ClientCount24hAgo: telemetry.Ptr(80)},
	}, testThresholds(), "capacity-forecast")
	if card == nil {
		t.Fatal("expected a capacity-forecast card")
	}
	if card.Severity != telemetry.SeverityWarning {
		t.Errorf("severity = %q with 1 day headroom, want warning", card.Severity)
	}
	if card.Prediction == nil || card.Prediction.Basis == "" {
		t.Errorf("prediction annotation = %+v", card.Prediction)
	}

	// Low load never forecasts regardless of growth.
	idle := evalOne(t, &telemetry.MetricsSnapshot{
		ClientCount:   telemetry.Ptr(40),
		APOnlineCount: telemetry.Ptr(4),
		History:       &telemetry.SnapshotHistory{ClientCount24hAgo: telemetry.Ptr(30)},
	}, testThresholds(), "capacity-forecast")
	if idle != nil {
		t.Errorf("forecast fired at 33%% load: %+v", idle)
	}
}

func TestEmptySnapshotProducesNoCards(t *testing.T) {
	e := NewEngine(DefaultConfig(), zap.NewNop())
	cards := e.Generate(&telemetry.MetricsSnapshot{}, testThresholds(), time.Now())
	if len(cards) != 0 {
		t.Errorf("empty snapshot produced %d cards", len(cards))
	}
}
