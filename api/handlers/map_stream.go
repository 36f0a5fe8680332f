package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"cybermap/core/mapview"
	"cybermap/core/utils"
)

// MapStream is the concrete map surface: marker operations are pushed as
// server-sent events to the browser, which projects them with its map
// library. Readiness and failure flow back in through the lifecycle
// endpoints and are relayed to the registered callbacks.
type MapStream struct {
	buffer int
	logger *utils.Logger

	mu      sync.Mutex
	clients map[chan []byte]struct{}
	readyFn func()
	errFn   func(error)
}

type markerEvent struct {
	Op     string         `json:"op"`
	Marker *markerPayload `json:"marker,omitempty"`
}

type markerPayload struct {
	ID         string  `json:"id"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Severity   string  `json:"severity"`
	AttackType string  `json:"attackType"`
	Color      string  `json:"color"`
	Glyph      string  `json:"glyph"`
}

func NewMapStream(buffer int, logger *utils.Logger) *MapStream {
	if buffer <= 0 {
		buffer = 64
	}
	return &MapStream{
		buffer:  buffer,
		logger:  logger,
		clients: make(map[chan []byte]struct{}),
	}
}

var _ mapview.Surface = (*MapStream)(nil)

func (ms *MapStream) PlaceMarker(m mapview.Marker) (mapview.Handle, error) {
	ms.broadcast(markerEvent{
		Op: "place",
		Marker: &markerPayload{
			ID:         m.IncidentID,
			Lat:        m.Lat,
			Lng:        m.Lng,
			Severity:   string(m.Severity),
			AttackType: string(m.AttackType),
			Color:      m.Style.Color,
			Glyph:      m.Style.Glyph,
		},
	})
	return mapview.Handle(m.IncidentID), nil
}

func (ms *MapStream) RemoveAllMarkers() {
	ms.broadcast(markerEvent{Op: "clear"})
}

func (ms *MapStream) OnReady(fn func()) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.readyFn = fn
}

func (ms *MapStream) OnError(fn func(error)) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.errFn = fn
}

// NotifyReady relays the browser's load signal to the synchronizer.
func (ms *MapStream) NotifyReady() {
	ms.mu.Lock()
	fn := ms.readyFn
	ms.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (ms *MapStream) NotifyError(err error) {
	ms.mu.Lock()
	fn := ms.errFn
	ms.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

func (ms *MapStream) broadcast(ev markerEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		ms.logger.Errorf("map stream: marshal event: %v", err)
		return
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for ch := range ms.clients {
		select {
		case ch <- data:
		default:
			// Slow consumer; it will resync on the next full rebuild.
		}
	}
}

// ClientCount reports the number of connected stream consumers.
func (ms *MapStream) ClientCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.clients)
}

// ServeHTTP streams marker events to one client until it disconnects.
func (ms *MapStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := make(chan []byte, ms.buffer)
	ms.mu.Lock()
	ms.clients[ch] = struct{}{}
	ms.mu.Unlock()
	defer func() {
		ms.mu.Lock()
		delete(ms.clients, ch)
		ms.mu.Unlock()
	}()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-ch:
			if _, err := w.Write([]byte("data: ")); err != nil {
				return
			}
			if _, err := w.Write(data); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
