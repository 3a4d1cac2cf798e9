package baseline

import "time"

// BaselineConfig holds configuration for the Baseline learner plugin.
type BaselineConfig struct {
	// Capacity bounds the in-memory sample window. Oldest samples are
	// evicted first once the window is full.
	Capacity int `mapstructure:"capacity"`

	// PersistDebounce coalesces bursts of writes into a single save.
	PersistDebounce time.Duration `mapstructure:"persist_debounce"`

	// ThresholdMaxAge is how long a calculated threshold bundle is served
	// from cache before being recomputed.
	ThresholdMaxAge time.Duration `mapstructure:"threshold_max_age"`
}

// DefaultConfig returns sensible defaults for the Baseline module.
func DefaultConfig() BaselineConfig {
	return BaselineConfig{
		Capacity:        500,
		PersistDebounce: 1 * time.Second,
		ThresholdMaxAge: 15 * time.Minute,
	}
}
