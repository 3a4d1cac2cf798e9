package baseline

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/corvid-labs/airsight/pkg/telemetry"
	"go.uber.org/zap"
)

// BlobStore persists the serialized sample window. Load returns (nil, nil)
// when no state has been saved yet.
type BlobStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Sample validation errors.
var (
	ErrMissingRFQI        = errors.New("sample missing rf quality index")
	ErrMissingClientCount = errors.New("sample missing client count")
	ErrNotFinite          = errors.New("sample contains non-finite value")
)

// SampleFromSnapshot extracts a baseline sample from a metrics snapshot.
// RF quality and client count are mandatory; everything else is optional.
func SampleFromSnapshot(snap *telemetry.MetricsSnapshot) (telemetry.BaselineSample, error) {
	var s telemetry.BaselineSample
	if snap.RFQI == nil {
		return s, ErrMissingRFQI
	}
	if snap.ClientCount == nil {
		return s, ErrMissingClientCount
	}
	if !finite(*snap.RFQI) {
		return s, ErrNotFinite
	}

	s.Timestamp = snap.Timestamp
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}
	s.RFQI = *snap.RFQI
	s.ClientCount = *snap.ClientCount
	s.SiteID = snap.SiteID

	if snap.ChannelUtilizationPct != nil && finite(*snap.ChannelUtilizationPct) {
		s.ChannelUtilizationPct = *snap.ChannelUtilizationPct
	}
	if snap.APOnlineCount != nil {
		s.APOnlineCount = *snap.APOnlineCount
	}
	if snap.LatencyMs != nil && finite(*snap.LatencyMs) {
		s.LatencyMs = telemetry.Ptr(*snap.LatencyMs)
	}
	if snap.RetryRatePct != nil && finite(*snap.RetryRatePct) {
		s.RetryRatePct = telemetry.Ptr(*snap.RetryRatePct)
	}
	return s, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SampleStore holds the bounded in-memory sample window plus the cached
// threshold bundle, and persists both through a BlobStore with debounced
// writes. All methods are safe for concurrent use.
type SampleStore struct {
	mu           sync.Mutex
	samples      []telemetry.BaselineSample
	cached       *telemetry.BaselineThresholds
	calculatedAt time.Time

	capacity int
	debounce time.Duration
	blob     BlobStore
	logger   *zap.Logger

	timer *time.Timer
	now   func() time.Time
}

// NewSampleStore creates a sample store. blob may be nil, in which case the
// window is memory-only.
func NewSampleStore(capacity int, debounce time.Duration, blob BlobStore, logger *zap.Logger) *SampleStore {
	if capacity <= 0 {
		capacity = DefaultConfig().Capacity
	}
	return &SampleStore{
		samples:  make([]telemetry.BaselineSample, 0, capacity),
		capacity: capacity,
		debounce: debounce,
		blob:     blob,
		logger:   logger,
		now:      time.Now,
	}
}

// Load restores the sample window from the blob store. Corrupt or partial
// state degrades to an empty window rather than failing startup; individual
// invalid samples are dropped.
func (s *SampleStore) Load(ctx context.Context) error {
	if s.blob == nil {
		return nil
	}
	data, err := s.blob.Load(ctx)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	var stored telemetry.StoredBaselineData
	if err := json.Unmarshal(data, &stored); err != nil {
		s.logger.Warn("discarding unreadable baseline state", zap.Error(err))
		return nil
	}

	kept := make([]telemetry.BaselineSample, 0, len(stored.Samples))
	for _, smp := range stored.Samples {
		if !finite(smp.RFQI) || !finite(smp.ChannelUtilizationPct) {
			continue
		}
		kept = append(kept, smp)
	}
	if len(kept) > s.capacity {
		kept = kept[len(kept)-s.capacity:]
	}

	s.mu.Lock()
	s.samples = kept
	s.cached = stored.CalculatedThresholds
	if stored.LastCalculated > 0 {
		s.calculatedAt = time.UnixMilli(stored.LastCalculated)
	}
	s.mu.Unlock()

	s.logger.Info("baseline state restored",
		zap.Int("samples", len(kept)),
		zap.Int("dropped", len(stored.Samples)-len(kept)))
	return nil
}

// Add appends a sample, evicting the oldest when the window is full, and
// schedules a debounced save.
func (s *SampleStore) Add(sample telemetry.BaselineSample) {
	s.mu.Lock()
	s.samples = append(s.samples, sample)
	if len(s.samples) > s.capacity {
		s.samples = s.samples[len(s.samples)-s.capacity:]
	}
	s.scheduleSaveLocked()
	s.mu.Unlock()
}

// Count returns the number of samples in the window.
func (s *SampleStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples)
}

// Samples returns a copy of the current window, oldest first.
func (s *SampleStore) Samples() []telemetry.BaselineSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]telemetry.BaselineSample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Thresholds returns the adaptive threshold bundle, recomputing it when the
// cached bundle is older than maxAge (or absent). maxAge <= 0 forces a
// recompute. The second return reports whether a recompute happened.
func (s *SampleStore) Thresholds(maxAge time.Duration) (telemetry.BaselineThresholds, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && maxAge > 0 && s.now().Sub(s.calculatedAt) <= maxAge {
		return *s.cached, false
	}

	t := Calculate(s.samples)
	s.cached = &t
	s.calculatedAt = s.now()
	s.scheduleSaveLocked()
	return t, true
}

// Summary reports the learner's state for UI display.
func (s *SampleStore) Summary(maxAge time.Duration) telemetry.BaselineSummary {
	t, _ := s.Thresholds(maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	sum := telemetry.BaselineSummary{
		SampleCount:           len(s.samples),
		ConfidenceLevel:       ConfidenceLevel(len(s.samples)),
		ConfidenceDescription: ConfidenceDescription(len(s.samples)),
		Thresholds:            t,
	}
	if n := len(s.samples); n > 0 {
		sum.TimeRangeHours = s.samples[n-1].Timestamp.Sub(s.samples[0].Timestamp).Hours()
		var rfqiSum float64
		var clientSum int
		for _, smp := range s.samples {
			rfqiSum += smp.RFQI
			clientSum += smp.ClientCount
		}
		sum.AvgRFQI = rfqiSum / float64(n)
		sum.AvgClientCount = float64(clientSum) / float64(n)
	}
	return sum
}

// Flush cancels any pending debounced save and persists immediately.
// Called on shutdown so the last debounce window is not lost.
func (s *SampleStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	data, err := s.encodeLocked()
	s.mu.Unlock()
	if err != nil || s.blob == nil {
		return err
	}
	return s.blob.Save(ctx, data)
}

// scheduleSaveLocked arms (or re-arms) the debounce timer. Caller holds mu.
func (s *SampleStore) scheduleSaveLocked() {
	if s.blob == nil {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.persist)
}

// persist runs on the debounce timer goroutine.
func (s *SampleStore) persist() {
	s.mu.Lock()
	data, err := s.encodeLocked()
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn("failed to encode baseline state", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.blob.Save(ctx, data); err != nil {
		s.logger.Warn("failed to persist baseline state", zap.Error(err))
	}
}

func (s *SampleStore) encodeLocked() ([]byte, error) {
	stored := telemetry.StoredBaselineData{
		Samples:              s.samples,
		CalculatedThresholds: s.cached,
	}
	if !s.calculatedAt.IsZero() {
		stored.LastCalculated = s.calculatedAt.UnixMilli()
	}
	return json.Marshal(stored)
}
