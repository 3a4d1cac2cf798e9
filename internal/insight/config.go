package insight

import "time"

// InsightConfig holds configuration for the Insight engine plugin. The
// numeric cutoffs are heuristic business rules; they ship as named,
// overridable settings rather than buried literals.
type InsightConfig struct {
	CardRetention       time.Duration `mapstructure:"card_retention"`
	MaintenanceInterval time.Duration `mapstructure:"maintenance_interval"`

	// RFQICriticalRatio scales the poor-RFQI threshold to the point where
	// a degradation becomes critical.
	RFQICriticalRatio float64 `mapstructure:"rfqi_critical_ratio"`

	// Offline-AP percentage cutoffs.
	OfflineWarnPct     float64 `mapstructure:"offline_warn_pct"`
	OfflineCriticalPct float64 `mapstructure:"offline_critical_pct"`

	// Average client RSSI cutoffs, dBm.
	SignalWeakDbm     float64 `mapstructure:"signal_weak_dbm"`
	SignalVeryWeakDbm float64 `mapstructure:"signal_very_weak_dbm"`

	// Short-term RFQI trend cutoffs, percent change vs 1h ago.
	TrendChangePct  float64 `mapstructure:"trend_change_pct"`
	TrendDegradePct float64 `mapstructure:"trend_degrade_pct"`

	// Comparison24hDropPct flags an RFQI drop vs 24h ago, percent.
	Comparison24hDropPct float64 `mapstructure:"comparison_24h_drop_pct"`

	// Client surge cutoffs: percent growth vs 1h ago plus an absolute
	// floor so tiny networks don't trip on noise.
	SurgeWarnPct     float64 `mapstructure:"surge_warn_pct"`
	SurgeCriticalPct float64 `mapstructure:"surge_critical_pct"`
	SurgeMinAbsolute int     `mapstructure:"surge_min_absolute"`

	// RestartThreshold is restarts per AP within 24h before flagging.
	RestartThreshold int `mapstructure:"restart_threshold"`

	// Per-AP resource stress cutoffs, percent.
	MemoryStressPct float64 `mapstructure:"memory_stress_pct"`
	CPUStressPct    float64 `mapstructure:"cpu_stress_pct"`

	// Capacity forecast: 24h client growth rate and fraction of the
	// density threshold already consumed.
	GrowthWarnPct      float64 `mapstructure:"growth_warn_pct"`
	LoadRatio          float64 `mapstructure:"load_ratio"`
	SaturationWarnDays float64 `mapstructure:"saturation_warn_days"`

	// DensityMultiplier scales the profile's client density threshold
	// before the density detector fires.
	DensityMultiplier float64 `mapstructure:"density_multiplier"`
}

// DefaultConfig returns sensible defaults for the Insight module.
func DefaultConfig() InsightConfig {
	return InsightConfig{
		CardRetention:       7 * 24 * time.Hour,
		MaintenanceInterval: 1 * time.Hour,

		RFQICriticalRatio:  0.7,
		OfflineWarnPct:     5,
		OfflineCriticalPct: 20,
		SignalWeakDbm:      -75,
		SignalVeryWeakDbm:  -80,

		TrendChangePct:       10,
		TrendDegradePct:      20,
		Comparison24hDropPct: 15,

		SurgeWarnPct:     50,
		SurgeCriticalPct: 100,
		SurgeMinAbsolute: 10,

		RestartThreshold: 3,
		MemoryStressPct:  85,
		CPUStressPct:     90,

		GrowthWarnPct:      10,
		LoadRatio:          0.8,
		SaturationWarnDays: 3,

		DensityMultiplier: 1.2,
	}
}
