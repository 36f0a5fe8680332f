package handlers

import (
	"net/http"

	"cybermap/core/dashboard"
)

// StatsHandler serves the four analytics panels. Each endpoint is idempotent
// and computes (or reuses a memoized copy of) its aggregation on demand.
type StatsHandler struct {
	dashboard *dashboard.Service
}

func NewStatsHandler(svc *dashboard.Service) *StatsHandler {
	return &StatsHandler{dashboard: svc}
}

func (h *StatsHandler) Countries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dashboard.CountryStats())
}

func (h *StatsHandler) Severity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dashboard.SeverityStats())
}

func (h *StatsHandler) AttackTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dashboard.AttackTypeStats())
}

func (h *StatsHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dashboard.TimelineStats())
}

// Summary is the always-visible severity tally over the filtered set.
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	counts := h.dashboard.SeverityCounts()
	filtered := h.dashboard.FilteredIncidents()
	writeJSON(w, http.StatusOK, map[string]any{
		"severityCounts": counts,
		"total":          len(filtered),
	})
}
