package baseline

// Event topics consumed by the Baseline module.
const (
	TopicSnapshotCollected = "telemetry.snapshot.collected"
)

// Event topics published by the Baseline module.
const (
	TopicSampleRecorded      = "baseline.sample.recorded"
	TopicThresholdsUpdated   = "baseline.thresholds.updated"
	TopicConfidenceIncreased = "baseline.confidence.increased"
)
