package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"cybermap/core/analytics"
	"cybermap/core/dashboard"
	"cybermap/core/utils"
)

type ThreatsHandler struct {
	dashboard *dashboard.Service
	logger    *utils.Logger
}

func NewThreatsHandler(svc *dashboard.Service, logger *utils.Logger) *ThreatsHandler {
	return &ThreatsHandler{dashboard: svc, logger: logger}
}

// List serves the current filtered set together with snapshot metadata.
func (h *ThreatsHandler) List(w http.ResponseWriter, r *http.Request) {
	origin, fetchedAt, total := h.dashboard.SnapshotInfo()
	filtered := h.dashboard.FilteredIncidents()
	writeJSON(w, http.StatusOK, map[string]any{
		"threats":     filtered,
		"count":       len(filtered),
		"total":       total,
		"origin":      origin,
		"lastUpdated": fetchedAt.Format(time.RFC3339),
	})
}

func (h *ThreatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	in, ok := h.dashboard.Incident(id)
	if !ok {
		http.Error(w, errNotFound, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (h *ThreatsHandler) Select(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if err := h.dashboard.Select(id); err != nil {
		http.Error(w, errNotFound, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selected": id})
}

func (h *ThreatsHandler) Selected(w http.ResponseWriter, r *http.Request) {
	in, ok := h.dashboard.Selected()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"selected": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selected": in})
}

func (h *ThreatsHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.dashboard.ClearSelection()
	writeJSON(w, http.StatusOK, map[string]any{"selected": nil})
}

func (h *ThreatsHandler) GetFilter(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dashboard.Criteria())
}

// UpdateFilter installs new criteria; the filtered set and the markers are
// recomputed before the response is written.
func (h *ThreatsHandler) UpdateFilter(w http.ResponseWriter, r *http.Request) {
	var criteria analytics.Criteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	if err := h.dashboard.SetCriteria(criteria); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	filtered := h.dashboard.FilteredIncidents()
	writeJSON(w, http.StatusOK, map[string]any{
		"criteria": h.dashboard.Criteria(),
		"count":    len(filtered),
	})
}
