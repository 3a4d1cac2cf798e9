package insight

import (
	"context"
	"testing"
	"time"

	"github.com/corvid-labs/airsight/internal/event"
	"github.com/corvid-labs/airsight/internal/profile"
	"github.com/corvid-labs/airsight/internal/store"
	"github.com/corvid-labs/airsight/pkg/plugin"
	"github.com/corvid-labs/airsight/pkg/plugin/plugintest"
	"github.com/corvid-labs/airsight/pkg/roles"
	"github.com/corvid-labs/airsight/pkg/telemetry"
	"go.uber.org/zap"
)

func testProfiles(t *testing.T) *profile.Registry {
	t.Helper()
	r, err := profile.New(nil)
	if err != nil {
		t.Fatalf("profile.New: %v", err)
	}
	return r
}

func TestPluginContract(t *testing.T) {
	profiles, err := profile.New(nil)
	if err != nil {
		t.Fatalf("profile.New: %v", err)
	}
	plugintest.TestPluginContract(t, func() plugin.Plugin { return New(profiles) })
}

// fakeBaseline fills the baseline role with canned thresholds.
type fakeBaseline struct {
	thresholds telemetry.BaselineThresholds
}

func (f *fakeBaseline) Info() plugin.PluginInfo {
	return plugin.PluginInfo{Name: "baseline", Version: "0.0.0", APIVersion: plugin.APIVersionCurrent}
}
func (f *fakeBaseline) Init(context.Context, plugin.Dependencies) error { return nil }
func (f *fakeBaseline) Start(context.Context) error                     { return nil }
func (f *fakeBaseline) Stop(context.Context) error                      { return nil }

func (f *fakeBaseline) RecordSnapshot(context.Context, *telemetry.MetricsSnapshot) error { return nil }
func (f *fakeBaseline) Thresholds(context.Context, time.Duration) (telemetry.BaselineThresholds, error) {
	return f.thresholds, nil
}
func (f *fakeBaseline) Summary(context.Context) (telemetry.BaselineSummary, error) {
	return telemetry.BaselineSummary{}, nil
}

// fakeResolver resolves the baseline role to a fixed provider.
type fakeResolver struct {
	baseline plugin.Plugin
}

func (r *fakeResolver) Resolve(name string) (plugin.Plugin, bool) {
	if name == "baseline" && r.baseline != nil {
		return r.baseline, true
	}
	return nil, false
}

func (r *fakeResolver) ResolveByRole(role string) []plugin.Plugin {
	if role == roles.RoleBaseline && r.baseline != nil {
		return []plugin.Plugin{r.baseline}
	}
	return nil
}

func newInsightModule(t *testing.T, resolver plugin.PluginResolver) (*Module, *event.Bus) {
	t.Helper()
	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	bus := event.NewBus(zap.NewNop())
	m := New(testProfiles(t))
	err = m.Init(context.Background(), plugin.Dependencies{
		Logger:  zap.NewNop(),
		Bus:     bus,
		Store:   st,
		Plugins: resolver,
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return m, bus
}

func TestEvaluateActiveProfile(t *testing.T) {
	m, _ := newInsightModule(t, &fakeResolver{})
	snap := &telemetry.MetricsSnapshot{
		RFQI: telemetry.Ptr(30.0), // below office rfqi_poor 45
	}
	cards, err := m.Evaluate(context.Background(), snap, "")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(cards) != 1 || cards[0].Category != "rf-quality" {
		t.Fatalf("cards = %+v, want one rf-quality card", cards)
	}
}

func TestEvaluateUnknownProfile(t *testing.T) {
	m, _ := newInsightModule(t, &fakeResolver{})
	_, err := m.Evaluate(context.Background(), &telemetry.MetricsSnapshot{}, "datacenter")
	if err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestEvaluateAdaptiveUsesLearnedThresholds(t *testing.T) {
	learned := telemetry.BaselineThresholds{
		ProfileThresholds: telemetry.ProfileThresholds{
			RFQITarget: 80, RFQIPoor: 75, // learned environment expects high quality
			ChannelUtilizationPct: 60, NoiseFloorDbm: -85,
			ClientDensityPerAP: 30, LatencyP95Ms: 50,
			RetryRatePct: 10, InterferenceHigh: 0.3,
		},
		Confidence: 1, SampleSize: 200,
	}
	m, _ := newInsightModule(t, &fakeResolver{baseline: &fakeBaseline{thresholds: learned}})

	// rfqi 60 is fine for every static profile but poor for this deployment.
	snap := &telemetry.MetricsSnapshot{RFQI: telemetry.Ptr(60.0)}

	static, err := m.Evaluate(context.Background(), snap, "office")
	if err != nil {
		t.Fatalf("Evaluate(office): %v", err)
	}
	if len(static) != 0 {
		t.Fatalf("office profile flagged rfqi 60: %+v", static)
	}

	adaptive, err := m.Evaluate(context.Background(), snap, profile.AdaptiveID)
	if err != nil {
		t.Fatalf("Evaluate(adaptive): %v", err)
	}
	if len(adaptive) != 1 || adaptive[0].Category != "rf-quality" {
		t.Fatalf("adaptive cards = %+v, want one rf-quality card", adaptive)
	}
}

func TestEvaluateAdaptiveFallsBackWithoutLearner(t *testing.T) {
	m, _ := newInsightModule(t, &fakeResolver{})
	snap := &telemetry.MetricsSnapshot{RFQI: telemetry.Ptr(60.0)}
	cards, err := m.Evaluate(context.Background(), snap, profile.AdaptiveID)
	if err != nil {
		t.Fatalf("Evaluate(adaptive): %v", err)
	}
	// Falls back to the office profile, under which rfqi 60 is healthy.
	if len(cards) != 0 {
		t.Errorf("fallback evaluation produced %+v", cards)
	}
}

func TestCardsServedFromStoreAfterRestart(t *testing.T) {
	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()
	deps := plugin.Dependencies{Logger: zap.NewNop(), Store: st, Plugins: &fakeResolver{}}

	ctx := context.Background()
	first := New(testProfiles(t))
	if err := first.Init(ctx, deps); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := first.Evaluate(ctx, &telemetry.MetricsSnapshot{RFQI: telemetry.Ptr(30.0)}, ""); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	second := New(testProfiles(t))
	if err := second.Init(ctx, deps); err != nil {
		t.Fatalf("second Init: %v", err)
	}
	cards, err := second.Cards(ctx)
	if err != nil {
		t.Fatalf("Cards: %v", err)
	}
	if len(cards) != 1 || cards[0].Category != "rf-quality" {
		t.Errorf("restored cards = %+v", cards)
	}
}

func TestSnapshotEventTriggersEvaluation(t *testing.T) {
	m, bus := newInsightModule(t, &fakeResolver{})
	for _, sub := range m.Subscriptions() {
		bus.Subscribe(sub.Topic, sub.Handler)
	}

	err := bus.Publish(context.Background(), plugin.Event{
		Topic:   TopicSnapshotCollected,
		Source:  "collector",
		Payload: &telemetry.MetricsSnapshot{RFQI: telemetry.Ptr(20.0)},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	sum, err := m.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Total != 1 || sum.BySeverity[telemetry.SeverityCritical] != 1 {
		t.Errorf("summary = %+v, want one critical card", sum)
	}
}
