package ws

import (
	"time"

	"github.com/corvid-labs/airsight/pkg/telemetry"
)

// MessageType discriminates WebSocket messages.
type MessageType string

const (
	MessageInsightCards       MessageType = "insight.cards"
	MessageInsightCritical    MessageType = "insight.critical"
	MessageBaselineConfidence MessageType = "baseline.confidence"
)

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      any         `json:"data"`
}

// InsightCardsData is the payload for insight.cards messages.
type InsightCardsData struct {
	Cards []telemetry.InsightCard `json:"cards"`
	Total int                     `json:"total"`
}

// InsightCriticalData is the payload for insight.critical messages.
type InsightCriticalData struct {
	Card telemetry.InsightCard `json:"card"`
}

// BaselineConfidenceData is the payload for baseline.confidence messages.
type BaselineConfidenceData struct {
	Level string `json:"level"`
}
