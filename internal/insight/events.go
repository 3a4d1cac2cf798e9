package insight

// Event topics consumed by the Insight module.
const (
	TopicSnapshotCollected = "telemetry.snapshot.collected"
)

// Event topics published by the Insight module.
const (
	TopicCardsGenerated = "insight.cards.generated"
	TopicCardCritical   = "insight.card.critical"
)
