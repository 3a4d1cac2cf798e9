package baseline

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
		{Method: "GET", Path: "/thresholds", Handler: m.handleThresholds},
		{Method: "GET", Path: "/summary", Handler: m.handleSummary},
		{Method: "GET", Path: "/samples", Handler: m.handleListSamples},
		{Method: "POST", Path: "/samples", Handler: m.handleAddSample},
	}
}

// handleThresholds returns the current adaptive threshold bundle.
// A fresh=true query forces a recompute regardless of cache age.
func (m *Module) handleThresholds(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("fresh") == "true" {
		writeJSON(w, http.StatusOK, m.FreshThresholds(r.Context()))
		return
	}
	t, err := m.Thresholds(r.Context(), m.cfg.ThresholdMaxAge)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to calculate thresholds")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleSummary returns the learner's sample count, confidence, and
// current thresholds.
func (m *Module) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := m.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// handleListSamples returns the in-memory sample window, oldest first.
func (m *Module) handleListSamples(w http.ResponseWriter, _ *http.Request) {
	samples := m.store.Samples()
	if samples == nil {
		samples = []telemetry.BaselineSample{}
	}
	writeJSON(w, http.StatusOK, samples)
}

// handleAddSample accepts a telemetry snapshot out of band, for collectors
// that push over HTTP instead of the event bus.
func (m *Module) handleAddSample(w http.ResponseWriter, r *http.Request) {
	var snap telemetry.MetricsSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now()
	}
	if err := m.RecordSnapshot(r.Context(), &snap); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"recorded": true,
		"samples":  m.store.Count(),
	})
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
