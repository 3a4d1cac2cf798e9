// Package profile provides the environment profile registry: named bundles
// of alerting thresholds tuned for a deployment context. Built-in catalogs
// ship as defaults; any threshold can be overridden through configuration
// under profiles.<id>.<field>. The special "adaptive" profile has no static
// thresholds here -- it is resolved at evaluation time from the baseline
// learner.
package profile

import (
	"fmt"
	"math"
	"sort"

	"github.com/corvid-labs/airsight/pkg/telemetry"
	"github.com/spf13/viper"
)

// AdaptiveID names the profile whose thresholds come from the baseline learner.
const AdaptiveID = "adaptive"

// DefaultActiveID is used when configuration names no active profile.
const DefaultActiveID = "office"

// Registry holds the catalog of environment profiles. Immutable after New.
type Registry struct {
	profiles map[string]telemetry.EnvironmentProfile
	active   string
}

// builtins returns the shipped profile catalog.
func builtins() []telemetry.EnvironmentProfile {
	return []telemetry.EnvironmentProfile{
		{
			ID:          "office",
			Name:        "Office",
			Description: "General-purpose office deployment",
			Thresholds: telemetry.ProfileThresholds{
				RFQITarget:            70,
				RFQIPoor:              45,
				ChannelUtilizationPct: 60,
				NoiseFloorDbm:         -85,
				ClientDensityPerAP:    30,
				LatencyP95Ms:          50,
				RetryRatePct:          10,
				InterferenceHigh:      0.3,
			},
		},
		{
			ID:          "retail",
			Name:        "Retail",
			Description: "Retail floor with transient client churn",
			Thresholds: telemetry.ProfileThresholds{
				RFQITarget:            65,
				RFQIPoor:              40,
				ChannelUtilizationPct: 70,
				NoiseFloorDbm:         -82,
				ClientDensityPerAP:    40,
				LatencyP95Ms:          75,
				RetryRatePct:          12,
				InterferenceHigh:      0.35,
			},
		},
		{
			ID:          "warehouse",
			Name:        "Warehouse",
			Description: "High-ceiling warehouse with scanner traffic",
			Thresholds: telemetry.ProfileThresholds{
				RFQITarget:            60,
				RFQIPoor:              35,
				ChannelUtilizationPct: 75,
				NoiseFloorDbm:         -80,
				ClientDensityPerAP:    20,
				LatencyP95Ms:          100,
				RetryRatePct:          15,
				InterferenceHigh:      0.4,
			},
		},
		{
			ID:          "campus",
			Name:        "Campus",
			Description: "Multi-building campus with roaming clients",
			Thresholds: telemetry.ProfileThresholds{
				RFQITarget:            70,
				RFQIPoor:              45,
				ChannelUtilizationPct: 65,
				NoiseFloorDbm:         -85,
				ClientDensityPerAP:    35,
				LatencyP95Ms:          60,
				RetryRatePct:          10,
				InterferenceHigh:      0.3,
			},
		},
		{
			ID:          "custom",
			Name:        "Custom",
			Description: "User-tuned thresholds",
			Thresholds: telemetry.ProfileThresholds{
				RFQITarget:            70,
				RFQIPoor:              45,
				ChannelUtilizationPct: 60,
				NoiseFloorDbm:         -85,
				ClientDensityPerAP:    30,
				LatencyP95Ms:          50,
				RetryRatePct:          10,
				InterferenceHigh:      0.3,
			},
		},
	}
}

// New builds the registry from built-in profiles with config overrides
// applied. Overridden profiles failing validation abort startup rather
// than silently alerting on nonsense thresholds.
func New(v *viper.Viper) (*Registry, error) {
	r := &Registry{profiles: make(map[string]telemetry.EnvironmentProfile)}

	for _, p := range builtins() {
		if v != nil {
			applyOverrides(v, p.ID, &p.Thresholds)
		}
		if err := Validate(p.Thresholds); err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.ID, err)
		}
		r.profiles[p.ID] = p
	}

	// The adaptive profile is a placeholder entry; its thresholds are
	// substituted by the baseline learner at evaluation time.
	r.profiles[AdaptiveID] = telemetry.EnvironmentProfile{
		ID:          AdaptiveID,
		Name:        "Adaptive",
		Description: "Thresholds learned from this deployment's telemetry",
		Adaptive:    true,
	}

	r.active = DefaultActiveID
	if v != nil {
		if a := v.GetString("profiles.active"); a != "" {
			if _, ok := r.profiles[a]; !ok {
				return nil, fmt.Errorf("profiles.active names unknown profile %q", a)
			}
			r.active = a
		}
	}

	return r, nil
}

// applyOverrides replaces individual threshold fields from config keys
// under profiles.<id>.
func applyOverrides(v *viper.Viper, id string, t *telemetry.ProfileThresholds) {
	prefix := "profiles." + id + "."
	set := func(key string, dst *float64) {
		if v.IsSet(prefix + key) {
			*dst = v.GetFloat64(prefix + key)
		}
	}
	set("rfqi_target", &t.RFQITarget)
	set("rfqi_poor", &t.RFQIPoor)
	set("channel_utilization_pct", &t.ChannelUtilizationPct)
	set("noise_floor_dbm", &t.NoiseFloorDbm)
	set("client_density_per_ap", &t.ClientDensityPerAP)
	set("latency_p95_ms", &t.LatencyP95Ms)
	set("retry_rate_pct", &t.RetryRatePct)
	set("interference_high", &t.InterferenceHigh)
}

// Validate checks that a threshold bundle is finite and logically ordered.
func Validate(t telemetry.ProfileThresholds) error {
	for name, v := range map[string]float64{
		"rfqi_target":             t.RFQITarget,
		"rfqi_poor":               t.RFQIPoor,
		"channel_utilization_pct": t.ChannelUtilizationPct,
		"noise_floor_dbm":         t.NoiseFloorDbm,
		"client_density_per_ap":   t.ClientDensityPerAP,
		"latency_p95_ms":          t.LatencyP95Ms,
		"retry_rate_pct":          t.RetryRatePct,
		"interference_high":       t.InterferenceHigh,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("threshold %s is not finite", name)
		}
	}
	if t.RFQIPoor >= t.RFQITarget {
		return fmt.Errorf("rfqi_poor (%.1f) must be below rfqi_target (%.1f)", t.RFQIPoor, t.RFQITarget)
	}
	if t.NoiseFloorDbm >= 0 {
		return fmt.Errorf("noise_floor_dbm (%.1f) must be negative", t.NoiseFloorDbm)
	}
	if t.ClientDensityPerAP <= 0 {
		return fmt.Errorf("client_density_per_ap (%.1f) must be positive", t.ClientDensityPerAP)
	}
	if t.InterferenceHigh <= 0 || t.InterferenceHigh > 1 {
		return fmt.Errorf("interference_high (%.2f) must be in (0, 1]", t.InterferenceHigh)
	}
	return nil
}

// Get returns a profile by ID.
func (r *Registry) Get(id string) (telemetry.EnvironmentProfile, bool) {
	p, ok := r.profiles[id]
	return p, ok
}

// Active returns the configured default profile.
func (r *Registry) Active() telemetry.EnvironmentProfile {
	return r.profiles[r.active]
}

// ActiveID returns the configured default profile ID.
func (r *Registry) ActiveID() string {
	return r.active
}

// List returns all profiles ordered by ID.
func (r *Registry) List() []telemetry.EnvironmentProfile {
	out := make([]telemetry.EnvironmentProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
