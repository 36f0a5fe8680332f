package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cybermap/core/dashboard"
	"cybermap/core/mapview"
	"cybermap/core/utils"
)

// MapHandler wires the surface lifecycle: the browser announces load
// completion or failure, and a manual retry path re-triggers initialization
// after an error.
type MapHandler struct {
	stream    *MapStream
	sync      *mapview.Synchronizer
	dashboard *dashboard.Service
	logger    *utils.Logger
}

func NewMapHandler(stream *MapStream, syncer *mapview.Synchronizer, svc *dashboard.Service, logger *utils.Logger) *MapHandler {
	return &MapHandler{stream: stream, sync: syncer, dashboard: svc, logger: logger}
}

func (h *MapHandler) Stream(w http.ResponseWriter, r *http.Request) {
	h.stream.ServeHTTP(w, r)
}

// Ready is posted by the client once its map surface finished loading.
func (h *MapHandler) Ready(w http.ResponseWriter, r *http.Request) {
	h.stream.NotifyReady()
	writeJSON(w, http.StatusOK, map[string]any{"state": h.sync.State().String()})
}

// Error is posted when the client-side map failed to initialize.
// Synchronization stays suspended until Retry.
func (h *MapHandler) Error(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)
	msg := strings.TrimSpace(payload.Message)
	if msg == "" {
		msg = "map surface failed"
	}
	h.stream.NotifyError(errors.New(msg))
	writeJSON(w, http.StatusOK, map[string]any{"state": h.sync.State().String()})
}

// Retry re-enters Initializing after a surface error; the pending filtered
// set is synchronized as soon as the surface reports ready again.
func (h *MapHandler) Retry(w http.ResponseWriter, r *http.Request) {
	h.sync.Init()
	h.sync.Sync(h.dashboard.FilteredIncidents())
	writeJSON(w, http.StatusOK, map[string]any{"state": h.sync.State().String()})
}

func (h *MapHandler) State(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"state":   h.sync.State().String(),
		"markers": len(h.sync.Displayed()),
		"clients": h.stream.ClientCount(),
	}
	if err := h.sync.LastError(); err != nil {
		resp["error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
