package insight

import (
	"math"
	"time"

	"github.com/corvid-labs/airsight/pkg/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// evalContext is the read-only input handed to every detector.
type evalContext struct {
	snap       *telemetry.MetricsSnapshot
	thresholds telemetry.ProfileThresholds
	cfg        InsightConfig
	now        time.Time
}

// detector is one rule family. detect returns nil when the family's
// required fields are absent or its condition does not hold; otherwise it
// returns a card carrying title, explanation, evidence, recommendation,
// severity, impact, and any trend/prediction annotations. Category, group,
// scope, and the confidence/recurrence constants are filled in by the
// engine from the descriptor.
type detector struct {
	id         string
	group      string
	scope      string
	confidence float64 // How directly the metric maps to the claim
	recurrence float64 // How persistent this condition tends to be
	detect     func(evalContext) *telemetry.InsightCard
}

// Engine evaluates the fixed detector list against one snapshot and one
// threshold profile. Evaluation is pure apart from UUID assignment; a
// panicking detector is isolated and its card omitted for the cycle.
type Engine struct {
	cfg       InsightConfig
	logger    *zap.Logger
	detectors []detector
}

// NewEngine creates an engine with the built-in detector families.
func NewEngine(cfg InsightConfig, logger *zap.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		logger:    logger,
		detectors: defaultDetectors(),
	}
}

// Generate runs every detector and returns the ranked card list. Passing
// the evaluation time explicitly keeps repeated evaluations at the same
// logical time content-identical (card IDs aside).
func (e *Engine) Generate(snap *telemetry.MetricsSnapshot, thresholds telemetry.ProfileThresholds, now time.Time) []telemetry.InsightCard {
	ectx := evalContext{snap: snap, thresholds: thresholds, cfg: e.cfg, now: now}

	cards := make([]telemetry.InsightCard, 0, len(e.detectors))
	for _, d := range e.detectors {
		card := e.runDetector(d, ectx)
		if card == nil {
			continue
		}
		card.ID = uuid.NewString()
		card.Category = d.id
		card.Group = d.group
		card.Scope = d.scope
		card.Confidence = d.confidence
		card.Recurrence = d.recurrence
		card.CreatedAt = now
		cards = append(cards, *card)
	}

	rankCards(cards)
	return cards
}

// runDetector isolates a single detector: a panic is logged and treated
// as "no card this cycle" so one bad field never blunts the whole list.
func (e *Engine) runDetector(d detector, ectx evalContext) (card *telemetry.InsightCard) {
	defer func() {
		if r := recover(); r != nil {
			detectorPanicsTotal.WithLabelValues(d.id).Inc()
			e.logger.Error("detector panicked",
				zap.String("detector", d.id),
				zap.Any("panic", r))
			card = nil
		}
	}()
	return d.detect(ectx)
}

// clamp01 bounds a ranking input to [0, 1] and squashes non-finite math.
func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// pctChange returns the percent change from prior to current, and false
// when prior is zero (the caller skips the detector for the cycle).
func pctChange(current, prior float64) (float64, bool) {
	if prior == 0 {
		return 0, false
	}
	return (current - prior) / prior * 100, true
}
