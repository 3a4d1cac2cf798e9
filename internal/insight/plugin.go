package insight

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/corvid-labs/airsight/internal/profile"
	"github.com/corvid-labs/airsight/pkg/plugin"
	"github.com/corvid-labs/airsight/pkg/roles"
	"github.com/corvid-labs/airsight/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin          = (*Module)(nil)
	_ plugin.HTTPProvider    = (*Module)(nil)
	_ plugin.HealthChecker   = (*Module)(nil)
	_ plugin.EventSubscriber = (*Module)(nil)
	_ roles.InsightProvider  = (*Module)(nil)
)

// Module implements the insight engine plugin: each telemetry snapshot is
// evaluated against the active environment profile (possibly the learned
// adaptive one) and turned into a ranked list of diagnostic cards.
type Module struct {
	logger   *zap.Logger
	cfg      InsightConfig
	store    *InsightStore
	bus      plugin.EventBus
	plugins  plugin.PluginResolver
	profiles *profile.Registry
	engine   *Engine

	mu     sync.RWMutex
	latest []telemetry.InsightCard

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Insight plugin instance. The profile registry is
// shared with the rest of the process and injected at construction.
func New(profiles *profile.Registry) *Module {
	return &Module{profiles: profiles}
}

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "insight",
		Version:     "0.1.0",
		Description: "Ranked diagnostic insights from WLAN telemetry",
		Roles:       []string{roles.RoleInsight},
		Required:    false,
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger
	m.bus = deps.Bus
	m.plugins = deps.Plugins

	m.cfg = DefaultConfig()
	if deps.Config != nil {
		if err := deps.Config.Unmarshal(&m.cfg); err != nil {
			return fmt.Errorf("unmarshal insight config: %w", err)
		}
	}

	if deps.Store != nil {
		if err := deps.Store.Migrate(context.Background(), "insight", migrations()); err != nil {
			return fmt.Errorf("insight migrations: %w", err)
		}
		m.store = NewInsightStore(deps.Store.DB())
	}

	m.engine = NewEngine(m.cfg, m.logger)

	m.logger.Info("insight module initialized",
		zap.String("active_profile", m.profiles.ActiveID()),
		zap.Duration("card_retention", m.cfg.CardRetention),
		zap.Duration("maintenance_interval", m.cfg.MaintenanceInterval),
	)
	return nil
}

func (m *Module) Start(_ context.Context) error {
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.startMaintenance()
	m.logger.Info("insight module started")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.logger.Info("insight module stopped")
	return nil
}

// -- plugin.HealthChecker --

// Health implements plugin.HealthChecker.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	m.mu.RLock()
	cached := len(m.latest)
	m.mu.RUnlock()

	baselineAvailable := "false"
	if m.plugins != nil && len(m.plugins.ResolveByRole(roles.RoleBaseline)) > 0 {
		baselineAvailable = "true"
	}
	return plugin.HealthStatus{
		Status: "healthy",
		Details: map[string]string{
			"cards_cached":       strconv.Itoa(cached),
			"active_profile":     m.profiles.ActiveID(),
			"baseline_available": baselineAvailable,
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
	if _, err := m.Evaluate(ctx, snap, ""); err != nil {
		m.logger.Warn("snapshot evaluation failed", zap.Error(err))
	}
}

// Evaluate runs the detector engine against one snapshot under the named
// profile ("" means the configured active profile) and returns the ranked
// card list. Results are cached, persisted, and announced on the bus.
func (m *Module) Evaluate(ctx context.Context, snap *telemetry.MetricsSnapshot, profileID string) ([]telemetry.InsightCard, error) {
	thresholds, resolvedID, err := m.resolveThresholds(ctx, profileID)
	if err != nil {
		return nil, err
	}

	timer := prometheus.NewTimer(evaluationDuration)
	cards := m.engine.Generate(snap, thresholds, time.Now())
	timer.ObserveDuration()

	for i := range cards {
		cardsGeneratedTotal.WithLabelValues(cards[i].Severity).Inc()
	}

	m.mu.Lock()
	m.latest = cards
	m.mu.Unlock()

	if m.store != nil && len(cards) > 0 {
		if err := m.store.SaveCards(ctx, cards); err != nil {
			m.logger.Warn("failed to persist insight cards", zap.Error(err))
		}
	}

	m.logger.Info("insight evaluation complete",
		zap.String("profile", resolvedID),
		zap.Int("cards", len(cards)))

	if m.bus != nil {
		m.bus.PublishAsync(ctx, plugin.Event{
			Topic:   TopicCardsGenerated,
			Source:  "insight",
			Payload: cards,
		})
		for i := range cards {
			if cards[i].Severity == telemetry.SeverityCritical {
				m.bus.PublishAsync(ctx, plugin.Event{
					Topic:   TopicCardCritical,
					Source:  "insight",
					Payload: cards[i],
				})
			}
		}
	}
	return cards, nil
}

// resolveThresholds turns a profile ID into a concrete threshold bundle.
// The adaptive profile delegates to the baseline learner; when no learner
// is running, evaluation falls back to the default static profile.
func (m *Module) resolveThresholds(ctx context.Context, profileID string) (telemetry.ProfileThresholds, string, error) {
	if profileID == "" {
		profileID = m.profiles.ActiveID()
	}
	p, ok := m.profiles.Get(profileID)
	if !ok {
		return telemetry.ProfileThresholds{}, "", fmt.Errorf("unknown profile %q", profileID)
	}
	if !p.Adaptive {
		return p.Thresholds, p.ID, nil
	}

	if m.plugins != nil {
		for _, candidate := range m.plugins.ResolveByRole(roles.RoleBaseline) {
			provider, ok := candidate.(roles.BaselineProvider)
			if !ok {
				continue
			}
			learned, err := provider.Thresholds(ctx, 0)
			if err != nil {
				m.logger.Warn("baseline thresholds unavailable", zap.Error(err))
				break
			}
			return learned.ProfileThresholds, p.ID, nil
		}
	}

	fallback, _ := m.profiles.Get(profile.DefaultActiveID)
	m.logger.Warn("adaptive profile requested without a baseline provider; using static fallback",
		zap.String("fallback", fallback.ID))
	return fallback.Thresholds, fallback.ID, nil
}

// -- roles.InsightProvider --

// Cards implements roles.InsightProvider: the most recent evaluation's
// ranked cards, served from memory when warm and from the store after a
// restart.
func (m *Module) Cards(ctx context.Context) ([]telemetry.InsightCard, error) {
	m.mu.RLock()
	if m.latest != nil {
		out := make([]telemetry.InsightCard, len(m.latest))
		copy(out, m.latest)
		m.mu.RUnlock()
		return out, nil
	}
	m.mu.RUnlock()

	if m.store == nil {
		return []telemetry.InsightCard{}, nil
	}
	cards, err := m.store.LatestCards(ctx)
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []telemetry.InsightCard{}
	}
	return cards, nil
}

// Summary implements roles.InsightProvider.
func (m *Module) Summary(ctx context.Context) (telemetry.InsightSummary, error) {
	cards, err := m.Cards(ctx)
	if err != nil {
		return telemetry.InsightSummary{}, err
	}
	return Summarize(cards), nil
}
