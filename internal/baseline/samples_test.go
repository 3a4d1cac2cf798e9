package baseline

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/corvid-labs/airsight/pkg/telemetry"
	"go.uber.org/zap"
)

type fakeBlob struct {
	mu    sync.Mutex
	data  []byte
	saves int
	err   error
}

func (f *fakeBlob) Load(_ context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data, f.err
}

func (f *fakeBlob) Save(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.data = append([]byte(nil), data...)
	f.saves++
	return nil
}

func (f *fakeBlob) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func testSample(ts time.Time, rfqi float64) telemetry.BaselineSample {
	return telemetry.BaselineSample{
		Timestamp:             ts,
		RFQI:                  rfqi,
		ChannelUtilizationPct: 40,
		ClientCount:           25,
		APOnlineCount:         2,
	}
}

func TestSampleFromSnapshotValidation(t *testing.T) {
	now := time.Now()

	_, err := SampleFromSnapshot(&telemetry.MetricsSnapshot{
		ClientCount: telemetry.Ptr(10),
		Timestamp:   now,
	})
	if err != ErrMissingRFQI {
		t.Errorf("missing rfqi: err = %v, want ErrMissingRFQI", err)
	}

	_, err = SampleFromSnapshot(&telemetry.MetricsSnapshot{
		RFQI:      telemetry.Ptr(70.0),
		Timestamp: now,
	})
	if err != ErrMissingClientCount {
		t.Errorf("missing client count: err = %v, want ErrMissingClientCount", err)
	}

	_, err = SampleFromSnapshot(&telemetry.MetricsSnapshot{
		RFQI:        telemetry.Ptr(math.NaN()),
		ClientCount: telemetry.Ptr(10),
		Timestamp:   now,
	})
	if err != ErrNotFinite {
		t.Errorf("NaN rfqi: err = %v, want ErrNotFinite", err)
	}

	s, err := SampleFromSnapshot(&telemetry.MetricsSnapshot{
		RFQI:                  telemetry.Ptr(70.0),
		ClientCount:           telemetry.Ptr(10),
		ChannelUtilizationPct: telemetry.Ptr(35.0),
		APOnlineCount:         telemetry.Ptr(3),
		LatencyMs:             telemetry.Ptr(22.0),
		Timestamp:             now,
	})
	if err != nil {
		t.Fatalf("valid snapshot rejected: %v", err)
	}
	if s.RFQI != 70 || s.ClientCount != 10 || s.ChannelUtilizationPct != 35 || s.APOnlineCount != 3 {
		t.Errorf("unexpected sample %+v", s)
	}
	if s.LatencyMs == nil || *s.LatencyMs != 22 {
		t.Errorf("latency not carried: %+v", s.LatencyMs)
	}
	if s.RetryRatePct != nil {
		t.Errorf("retry rate should stay nil, got %v", *s.RetryRatePct)
	}
}

func TestSampleStoreCapacityFIFO(t *testing.T) {
	s := NewSampleStore(5, time.Hour, nil, zap.NewNop())
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		s.Add(testSample(base.Add(time.Duration(i)*time.Minute), float64(i)))
	}
	if s.Count() != 5 {
		t.Fatalf("count = %d, want capacity 5", s.Count())
	}
	got := s.Samples()
	// Oldest evicted first: the window holds samples 7..11.
	if got[0].RFQI != 7 || got[4].RFQI != 11 {
		t.Errorf("window = [%v..%v], want [7..11]", got[0].RFQI, got[4].RFQI)
	}
}

func TestSampleStoreThresholdsCaching(t *testing.T) {
	s := NewSampleStore(100, time.Hour, nil, zap.NewNop())
	clock := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	s.Add(testSample(clock, 70))
	first, recomputed := s.Thresholds(15 * time.Minute)
	if !recomputed {
		t.Fatal("first call should recompute")
	}
	if first.SampleSize != 1 {
		t.Errorf("sample size = %d, want 1", first.SampleSize)
	}

	// More data inside the freshness window does not trigger a recompute.
	s.Add(testSample(clock.Add(time.Minute), 90))
	cached, recomputed := s.Thresholds(15 * time.Minute)
	if recomputed {
		t.Error("fresh cache should be served without recompute")
	}
	if cached.SampleSize != 1 {
		t.Errorf("cached sample size = %d, want 1", cached.SampleSize)
	}

	// Advancing past maxAge invalidates the cache.
	clock = clock.Add(16 * time.Minute)
	stale, recomputed := s.Thresholds(15 * time.Minute)
	if !recomputed {
		t.Error("stale cache should recompute")
	}
	if stale.SampleSize != 2 {
		t.Errorf("recomputed sample size = %d, want 2", stale.SampleSize)
	}

	// maxAge <= 0 always recomputes.
	if _, recomputed = s.Thresholds(0); !recomputed {
		t.Error("maxAge 0 should force recompute")
	}
}

func TestSampleStoreDebouncedPersist(t *testing.T) {
	blob := &fakeBlob{}
	s := NewSampleStore(100, 20*time.Millisecond, blob, zap.NewNop())

	now := time.Now()
	for i := 0; i < 10; i++ {
		s.Add(testSample(now, 70))
	}

	// Burst of adds coalesces into a single save.
	deadline := time.Now().Add(2 * time.Second)
	for blob.saveCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := blob.saveCount(); got != 1 {
		t.Fatalf("saves = %d, want 1", got)
	}

	var stored telemetry.StoredBaselineData
	blob.mu.Lock()
	err := json.Unmarshal(blob.data, &stored)
	blob.mu.Unlock()
	if err != nil {
		t.Fatalf("unmarshal persisted state: %v", err)
	}
	if len(stored.Samples) != 10 {
		t.Errorf("persisted %d samples, want 10", len(stored.Samples))
	}
}

func TestSampleStoreFlush(t *testing.T) {
	blob := &fakeBlob{}
	s := NewSampleStore(100, time.Hour, blob, zap.NewNop())
	s.Add(testSample(time.Now(), 70))

	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if blob.saveCount() != 1 {
		t.Fatalf("saves = %d, want 1 after flush", blob.saveCount())
	}
}

func TestSampleStoreLoadRestoresState(t *testing.T) {
	blob := &fakeBlob{}
	src := NewSampleStore(100, time.Hour, blob, zap.NewNop())
	src.Add(testSample(time.Now(), 70))
	src.Add(testSample(time.Now(), 75))
	if _, recomputed := src.Thresholds(0); !recomputed {
		t.Fatal("expected recompute")
	}
	if err := src.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	dst := NewSampleStore(100, time.Hour, blob, zap.NewNop())
	if err := dst.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if dst.Count() != 2 {
		t.Errorf("restored %d samples, want 2", dst.Count())
	}
	// The restored cache is served without recompute while fresh.
	dst.now = func() time.Time { return time.Now() }
	if _, recomputed := dst.Thresholds(time.Hour); recomputed {
		t.Error("restored cached thresholds should be served as-is")
	}
}

func TestSampleStoreLoadToleratesCorruptState(t *testing.T) {
	blob := &fakeBlob{data: []byte("{not json")}
	s := NewSampleStore(100, time.Hour, blob, zap.NewNop())
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load should tolerate corrupt state, got %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("count = %d, want 0 after corrupt load", s.Count())
	}
}

func TestSampleStoreLoadEnforcesCapacity(t *testing.T) {
	s := NewSampleStore(2, time.Hour, &fakeBlob{data: mustMarshalWindow(t, 5)}, zap.NewNop())
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Capacity is enforced on reload: only the newest 2 of 5 survive.
	if s.Count() != 2 {
		t.Fatalf("count = %d, want 2", s.Count())
	}
	got := s.Samples()
	if got[0].RFQI != 73 || got[1].RFQI != 74 {
		t.Errorf("window = [%v, %v], want newest [73, 74]", got[0].RFQI, got[1].RFQI)
	}
}

func mustMarshalWindow(t *testing.T, n int) []byte {
	t.Helper()
	stored := telemetry.StoredBaselineData{}
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		stored.Samples = append(stored.Samples,
			testSample(base.Add(time.Duration(i)*time.Minute), float64(70+i)))
	}
	data, err := json.Marshal(stored)
	if err != nil {
		t.Fatalf("marshal window: %v", err)
	}
	return data
}
