// Package telemetry provides public SDK types for the AirSight analytics system.
// These types form the wire contract between telemetry producers, the insight
// engine, the baseline learner, and API consumers.
package telemetry

import "time"

// Severity tiers for insight cards.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Scope describes the blast radius of an insight.
const (
	ScopeNetwork = "network"
	ScopeSite    = "site"
	ScopeAP      = "ap"
	ScopeClient  = "client"
)

// Functional groups for insight cards.
const (
	GroupNetworkHealth         = "network-health"
	GroupCapacityPlanning      = "capacity-planning"
	GroupAnomalyDetection      = "anomaly-detection"
	GroupPredictiveMaintenance = "predictive-maintenance"
)

// Confidence levels for learned baselines, ordered from least to most data.
const (
	ConfidenceNone     = "none"
	ConfidenceLow      = "low"
	ConfidenceModerate = "moderate"
	ConfidenceHigh     = "high"
)

// Ptr returns a pointer to v. Convenience for building snapshots with
// optional fields.
func Ptr[T any](v T) *T { return &v }

// MetricsSnapshot is a point-in-time read of wireless network health.
// Every metric field is optional: a nil field means the producing
// backend did not report it, and detectors depending on it are skipped.
type MetricsSnapshot struct {
	RFQI                  *float64 `json:"rfqi,omitempty"`                    // RF Quality Index, 0-100
	ChannelUtilizationPct *float64 `json:"channel_utilization_pct,omitempty"` // Airtime consumed, 0-100
	Interference          *float64 `json:"interference,omitempty"`            // Interference ratio, 0-1
	NoiseFloorDbm         *float64 `json:"noise_floor_dbm,omitempty"`         // Negative dBm
	RetryRatePct          *float64 `json:"retry_rate_pct,omitempty"`          // Frame retry percentage
	ClientCount           *int     `json:"client_count,omitempty"`
	APCount               *int     `json:"ap_count,omitempty"`
	APOnlineCount         *int     `json:"ap_online_count,omitempty"`
	AvgClientRSSI         *float64 `json:"avg_client_rssi,omitempty"` // dBm
	AvgClientSNR          *float64 `json:"avg_client_snr,omitempty"`  // dB
	LatencyMs             *float64 `json:"latency_ms,omitempty"`

	SiteID    string    `json:"site_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	History *SnapshotHistory `json:"history,omitempty"`
	APs     []APMetrics      `json:"aps,omitempty"`
}

// SnapshotHistory carries the subset of snapshot quantities measured
// one hour and twenty-four hours prior, for trend and comparison rules.
type SnapshotHistory struct {
	RFQI1hAgo                *float64 `json:"rfqi_1h_ago,omitempty"`
	RFQI24hAgo               *float64 `json:"rfqi_24h_ago,omitempty"`
	ClientCount1hAgo         *int     `json:"client_count_1h_ago,omitempty"`
	ClientCount24hAgo        *int     `json:"client_count_24h_ago,omitempty"`
	ChannelUtilization1hAgo  *float64 `json:"channel_utilization_1h_ago,omitempty"`
	ChannelUtilization24hAgo *float64 `json:"channel_utilization_24h_ago,omitempty"`
}

// APMetrics holds per-access-point operational metrics.
type APMetrics struct {
	ID              string     `json:"id"`
	Name            string     `json:"name,omitempty"`
	UptimeSecs      *float64   `json:"uptime_secs,omitempty"`
	RestartCount24h *int       `json:"restart_count_24h,omitempty"`
	MemoryPct       *float64   `json:"memory_pct,omitempty"`
	CPUPct          *float64   `json:"cpu_pct,omitempty"`
	LastRestart     *time.Time `json:"last_restart,omitempty"`
}

// ProfileThresholds is an immutable bundle of alerting thresholds.
type ProfileThresholds struct {
	RFQITarget            float64 `json:"rfqi_target"`
	RFQIPoor              float64 `json:"rfqi_poor"`
	ChannelUtilizationPct float64 `json:"channel_utilization_pct"`
	NoiseFloorDbm         float64 `json:"noise_floor_dbm"`
	ClientDensityPerAP    float64 `json:"client_density_per_ap"`
	LatencyP95Ms          float64 `json:"latency_p95_ms"`
	RetryRatePct          float64 `json:"retry_rate_pct"`
	InterferenceHigh      float64 `json:"interference_high"`
}

// EnvironmentProfile is a named threshold bundle tuned for a deployment
// context (retail, warehouse, campus) or learned adaptively.
type EnvironmentProfile struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Adaptive    bool              `json:"adaptive,omitempty"` // Thresholds come from the baseline learner
	Thresholds  ProfileThresholds `json:"thresholds"`
}

// BaselineSample is one telemetry observation fed to the baseline learner.
// RFQI and ClientCount are required; samples missing them are rejected.
type BaselineSample struct {
	Timestamp             time.Time `json:"timestamp"`
	RFQI                  float64   `json:"rfqi"`
	ChannelUtilizationPct float64   `json:"channel_utilization_pct"`
	ClientCount           int       `json:"client_count"`
	APOnlineCount         int       `json:"ap_online_count"`
	RetryRatePct          *float64  `json:"retry_rate_pct,omitempty"`
	LatencyMs             *float64  `json:"latency_ms,omitempty"`
	SiteID                string    `json:"site_id,omitempty"`
}

// BaselineThresholds is a threshold bundle derived from observed telemetry,
// with an explicit confidence rating attached.
type BaselineThresholds struct {
	ProfileThresholds

	Confidence float64 `json:"confidence"`  // 0-1, scaled by sample count
	SampleSize int     `json:"sample_size"` // Samples backing this computation
}

// StoredBaselineData is the durable envelope persisted by the sample store.
type StoredBaselineData struct {
	Samples              []BaselineSample    `json:"samples"`
	LastCalculated       int64               `json:"last_calculated"` // epoch milliseconds, 0 = never
	CalculatedThresholds *BaselineThresholds `json:"calculated_thresholds"`
}

// BaselineSummary is a display-ready view of the learner's state.
type BaselineSummary struct {
	SampleCount           int                `json:"sample_count"`
	ConfidenceLevel       string             `json:"confidence_level"`
	ConfidenceDescription string             `json:"confidence_description"`
	TimeRangeHours        float64            `json:"time_range_hours"`
	AvgRFQI               float64            `json:"avg_rfqi"`
	AvgClientCount        float64            `json:"avg_client_count"`
	Thresholds            BaselineThresholds `json:"thresholds"`
}

// InsightEvidence is a single supporting data point on an insight card.
type InsightEvidence struct {
	Label     string     `json:"label"`
	Value     string     `json:"value"`
	Unit      string     `json:"unit,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"` // Originating moment in the series
}

// TrendInfo annotates a card with a direction relative to a past baseline.
type TrendInfo struct {
	Direction string  `json:"direction"` // "improving", "degrading", "stable"
	ChangePct float64 `json:"change_pct"`
	Baseline  string  `json:"baseline"` // Comparison period: "1h", "24h"
}

// PredictionInfo annotates a card with a forward-looking estimate.
type PredictionInfo struct {
	Likelihood float64 `json:"likelihood"` // 0-1
	Timeframe  string  `json:"timeframe"`
	Basis      string  `json:"basis"`
}

// InsightCard is one ranked diagnostic finding: what happened, why it
// matters, the supporting evidence, and a recommended action.
type InsightCard struct {
	ID             string            `json:"id"`
	Category       string            `json:"category"` // Detector family, e.g. "rf-quality"
	Title          string            `json:"title"`
	Explanation    string            `json:"explanation"` // Why it matters in this deployment
	Evidence       []InsightEvidence `json:"evidence"`
	Recommendation string            `json:"recommendation"`
	Group          string            `json:"group"`
	Severity       string            `json:"severity"`
	Scope          string            `json:"scope"`

	Impact     float64 `json:"impact"`     // 0-1
	Confidence float64 `json:"confidence"` // 0-1
	Recurrence float64 `json:"recurrence"` // 0-1

	Trend      *TrendInfo      `json:"trend,omitempty"`
	Prediction *PredictionInfo `json:"prediction,omitempty"`

	RankScore float64   `json:"rank_score"`
	CreatedAt time.Time `json:"created_at"`
}

// InsightSummary aggregates a ranked card list for display.
type InsightSummary struct {
	Total      int            `json:"total"`
	BySeverity map[string]int `json:"by_severity"`
	ByGroup    map[string]int `json:"by_group"`
	Top        *InsightCard   `json:"top,omitempty"`
}
