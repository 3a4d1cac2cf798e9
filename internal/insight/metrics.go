package insight

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for the insight engine.
var (
	cardsGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_cards_generated_total",
			Help: "Total insight cards generated, by severity.",
		},
		[]string{"severity"},
	)
	detectorPanicsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_detector_panics_total",
			Help: "Detector evaluations aborted by panic, by detector.",
		},
		[]string{"detector"},
	)
	evaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insight_evaluation_duration_seconds",
			Help:    "Wall time of a full detector evaluation cycle.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(cardsGeneratedTotal, detectorPanicsTotal, evaluationDuration)
}
