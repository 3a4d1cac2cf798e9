package insight

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/corvid-labs/airsight/pkg/plugin"
	"github.com/corvid-labs/airsight/pkg/telemetry"
)

// Routes implements plugin.HTTPProvider.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "POST", Path: "/evaluate", Handler: m.handleEvaluate},
		{Method: "GET", Path: "/cards", Handler: m.handleListCards},
		{Method: "GET", Path: "/summary", Handler: m.handleSummary},
		{Method: "GET", Path: "/groups", Handler: m.handleGroups},
		{Method: "GET", Path: "/profiles", Handler: m.handleListProfiles},
	}
}

// handleEvaluate accepts a telemetry snapshot and returns the ranked
// insight cards. An optional profile query parameter overrides the
// configured active profile for this evaluation.
func (m *Module) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var snap telemetry.MetricsSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now()
	}

	cards, err := m.Evaluate(r.Context(), &snap, r.URL.Query().Get("profile"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if cards == nil {
		cards = []telemetry.InsightCard{}
	}
	writeJSON(w, http.StatusOK, cards)
}

// handleListCards returns the most recent evaluation's ranked cards.
func (m *Module) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := m.Cards(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cards")
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

// handleSummary returns severity and group counters plus the top insight.
func (m *Module) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := m.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// handleGroups returns the latest cards bucketed by functional group.
func (m *Module) handleGroups(w http.ResponseWriter, r *http.Request) {
	cards, err := m.Cards(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cards")
		return
	}
	writeJSON(w, http.StatusOK, GroupCards(cards))
}

// handleListProfiles returns the environment profile catalog.
func (m *Module) handleListProfiles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, m.profiles.List())
}

// -- helpers --

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://airsight.dev/problems/" + http.StatusText(status),
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
