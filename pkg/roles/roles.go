// Package roles defines typed contracts for plugin roles.
// Plugins that fill a role (declared via PluginInfo.Roles) should implement
// the corresponding interface so callers can use type-safe access via
// PluginResolver.ResolveByRole followed by a type assertion.
package roles

import (
	"context"
	"time"

	"github.com/corvid-labs/airsight/pkg/telemetry"
)

// Role name constants match the strings used in PluginInfo.Roles.
const (
	RoleBaseline = "baseline"
	RoleInsight  = "insight"
)

// BaselineProvider is implemented by plugins that learn alerting
// thresholds from the telemetry stream.
type BaselineProvider interface {
	// RecordSnapshot feeds one telemetry snapshot into the learner.
	// Snapshots missing required fields are rejected with an error.
	RecordSnapshot(ctx context.Context, snap *telemetry.MetricsSnapshot) error

	// Thresholds returns the current learned threshold bundle,
	// recomputing lazily when the cached bundle is older than maxAge.
	Thresholds(ctx context.Context, maxAge time.Duration) (telemetry.BaselineThresholds, error)

	// Summary returns a display-ready view of the learner's state.
	Summary(ctx context.Context) (telemetry.BaselineSummary, error)
}

// InsightProvider is implemented by plugins that turn telemetry
// snapshots into ranked insight cards.
type InsightProvider interface {
	// Cards returns the most recently generated ranked card list.
	Cards(ctx context.Context) ([]telemetry.InsightCard, error)

	// Summary aggregates the most recent card list.
	Summary(ctx context.Context) (telemetry.InsightSummary, error)
}
