package ws

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/corvid-labs/airsight/internal/baseline"
	"github.com/corvid-labs/airsight/internal/insight"
	"github.com/corvid-labs/airsight/pkg/plugin"
	"github.com/corvid-labs/airsight/pkg/telemetry"
	"go.uber.org/zap"
)

// Handler provides the WebSocket endpoint for live insight updates.
type Handler struct {
	hub    *Hub
	bus    plugin.EventBus
	logger *zap.Logger
}

// Compile-time check that Handler implements the server interface.
var _ interface {
	RegisterRoutes(mux *http.ServeMux)
} = (*Handler)(nil)

// NewHandler creates a WebSocket handler and subscribes to insight and
// baseline events.
func NewHandler(bus plugin.EventBus, logger *zap.Logger) *Handler {
	h := &Handler{
		hub:    NewHub(logger),
		bus:    bus,
		logger: logger,
	}
	h.subscribeToEvents()
	return h
}

// RegisterRoutes registers WebSocket routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/ws/insights", h.handleInsightStream)
}

// handleInsightStream upgrades the connection and streams insight events
// until the client disconnects.
func (h *Handler) handleInsightStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Error("websocket accept failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:   conn,
		send:   make(chan Message, 256),
		logger: h.logger,
	}

	h.hub.Register(client)

	// Run read and write pumps. When either exits, clean up.
	ctx := r.Context()
	done := make(chan struct{})
	go func() {
		client.writePump(ctx)
		close(done)
	}()

	// readPump blocks until client disconnects.
	client.readPump(ctx)

	h.hub.Unregister(client)
	conn.Close(websocket.StatusNormalClosure, "")
	<-done
}

// subscribeToEvents forwards insight and baseline events to all connected
// WebSocket clients.
func (h *Handler) subscribeToEvents() {
	if h.bus == nil {
		return
	}

	h.bus.Subscribe(insight.TopicCardsGenerated, func(_ context.Context, event plugin.Event) {
		cards, ok := event.Payload.([]telemetry.InsightCard)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageInsightCards,
			Timestamp: event.Timestamp,
			Data: InsightCardsData{
				Cards: cards,
				Total: len(cards),
			},
		})
	})

	h.bus.Subscribe(insight.TopicCardCritical, func(_ context.Context, event plugin.Event) {
		card, ok := event.Payload.(telemetry.InsightCard)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageInsightCritical,
			Timestamp: event.Timestamp,
			Data:      InsightCriticalData{Card: card},
		})
	})

	h.bus.Subscribe(baseline.TopicConfidenceIncreased, func(_ context.Context, event plugin.Event) {
		level, ok := event.Payload.(string)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageBaselineConfidence,
			Timestamp: event.Timestamp,
			Data:      BaselineConfidenceData{Level: level},
		})
	})

	h.logger.Info("subscribed to insight events for WebSocket broadcasting")
}
