package baseline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/corvid-labs/airsight/pkg/plugin"
	"github.com/corvid-labs/airsight/pkg/roles"
	"github.com/corvid-labs/airsight/pkg/telemetry"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin          = (*Module)(nil)
	_ plugin.HTTPProvider    = (*Module)(nil)
	_ plugin.HealthChecker   = (*Module)(nil)
	_ plugin.EventSubscriber = (*Module)(nil)
	_ roles.BaselineProvider = (*Module)(nil)
)

// Module implements the adaptive baseline learner plugin. It accumulates a
// bounded window of telemetry samples and derives environment-specific
// alerting thresholds from the observed distributions.
type Module struct {
	logger *zap.Logger
	cfg    BaselineConfig
	store  *SampleStore
	bus    plugin.EventBus
}

// New creates a new Baseline plugin instance.
func New() *Module {
	return &Module{}
}

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "baseline",
		Version:     "0.1.0",
		Description: "Adaptive threshold learning from WLAN telemetry",
		Roles:       []string{roles.RoleBaseline},
		Required:    false,
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (m *Module) Init(ctx context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger
	m.bus = deps.Bus

	m.cfg = DefaultConfig()
	if deps.Config != nil {
		if err := deps.Config.Unmarshal(&m.cfg); err != nil {
			return fmt.Errorf("unmarshal baseline config: %w", err)
		}
	}

	var blob BlobStore
	if deps.Store != nil {
		if err := deps.Store.Migrate(context.Background(), "baseline", migrations()); err != nil {
			return fmt.Errorf("baseline migrations: %w", err)
		}
		blob = NewSQLiteBlobStore(deps.Store.DB())
	}

	m.store = NewSampleStore(m.cfg.Capacity, m.cfg.PersistDebounce, blob, m.logger)
	if err := m.store.Load(ctx); err != nil {
		return fmt.Errorf("restore baseline state: %w", err)
	}

	m.logger.Info("baseline module initialized",
		zap.Int("capacity", m.cfg.Capacity),
		zap.Duration("persist_debounce", m.cfg.PersistDebounce),
		zap.Duration("threshold_max_age", m.cfg.ThresholdMaxAge),
		zap.Int("samples_restored", m.store.Count()),
	)
	return nil
}

func (m *Module) Start(_ context.Context) error {
	m.logger.Info("baseline module started")
	return nil
}

func (m *Module) Stop(ctx context.Context) error {
	if m.store != nil {
		if err := m.store.Flush(ctx); err != nil {
			m.logger.Warn("failed to flush baseline state on shutdown", zap.Error(err))
		}
	}
	m.logger.Info("baseline module stopped")
	return nil
}

// -- plugin.HealthChecker --

// Health implements plugin.HealthChecker.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	count := 0
	if m.store != nil {
		count = m.store.Count()
	}
	return plugin.HealthStatus{
		Status: "healthy",
		Details: map[string]string{
			"samples":    strconv.Itoa(count),
			"confidence": ConfidenceLevel(count),
		},
	}
}

// -- plugin.EventSubscriber --

// Subscriptions implements plugin.EventSubscriber.
func (m *Module) Subscriptions() []plugin.Subscription {
	return []plugin.Subscription{
		{Topic: TopicSnapshotCollected, Handler: m.handleSnapshot},
	}
}

func (m *Module) handleSnapshot(ctx context.Context, event plugin.Event) {
	snap, ok := event.Payload.(*telemetry.MetricsSnapshot)
	if !ok {
		m.logger.Debug("ignored snapshot event: unexpected payload type",
			zap.String("source", event.Source))
		return
	}
	if err := m.RecordSnapshot(ctx, snap); err != nil {
		m.logger.Debug("snapshot rejected", zap.Error(err))
	}
}

// -- roles.BaselineProvider --

// RecordSnapshot implements roles.BaselineProvider. Snapshots missing the
// mandatory metrics are rejected without touching the window.
func (m *Module) RecordSnapshot(ctx context.Context, snap *telemetry.MetricsSnapshot) error {
	sample, err := SampleFromSnapshot(snap)
	if err != nil {
		return err
	}

	before := ConfidenceLevel(m.store.Count())
	m.store.Add(sample)
	after := ConfidenceLevel(m.store.Count())

	if m.bus != nil {
		m.bus.PublishAsync(ctx, plugin.Event{
			Topic:   TopicSampleRecorded,
			Source:  "baseline",
			Payload: sample,
		})
		if before != after {
			m.logger.Info("baseline confidence increased",
				zap.String("from", before), zap.String("to", after),
				zap.Int("samples", m.store.Count()))
			m.bus.PublishAsync(ctx, plugin.Event{
				Topic:   TopicConfidenceIncreased,
				Source:  "baseline",
				Payload: after,
			})
		}
	}
	return nil
}

// Thresholds implements roles.BaselineProvider. maxAge <= 0 uses the
// configured freshness window.
func (m *Module) Thresholds(ctx context.Context, maxAge time.Duration) (telemetry.BaselineThresholds, error) {
	if maxAge <= 0 {
		maxAge = m.cfg.ThresholdMaxAge
	}
	return m.thresholdsWithin(ctx, maxAge), nil
}

// FreshThresholds recomputes the bundle from the current window,
// bypassing the cache.
func (m *Module) FreshThresholds(ctx context.Context) telemetry.BaselineThresholds {
	return m.thresholdsWithin(ctx, 0)
}

// thresholdsWithin passes maxAge straight to the sample store, where a
// non-positive value forces recomputation, and announces recomputes on
// the bus.
func (m *Module) thresholdsWithin(ctx context.Context, maxAge time.Duration) telemetry.BaselineThresholds {
	t, recomputed := m.store.Thresholds(maxAge)

	if recomputed && m.bus != nil && t.SampleSize > 0 {
		m.bus.PublishAsync(ctx, plugin.Event{
			Topic:   TopicThresholdsUpdated,
			Source:  "baseline",
			Payload: t,
		})
	}
	return t
}

// Summary implements roles.BaselineProvider.
func (m *Module) Summary(_ context.Context) (telemetry.BaselineSummary, error) {
	return m.store.Summary(m.cfg.ThresholdMaxAge), nil
}
