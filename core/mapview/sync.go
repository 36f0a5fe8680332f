package mapview

import (
	"sync"

	"cybermap/core/metrics"
	"cybermap/core/threats"
	"cybermap/core/utils"
)

// State of the map display.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "uninitialized"
	}
}

// MarkerState is one displayed incident. Owned exclusively by the
// synchronizer; aggregation engines never look at it.
type MarkerState struct {
	IncidentID string `json:"incidentId"`
	Handle     Handle `json:"-"`
}

// Synchronizer reconciles the displayed marker set with the current filtered
// incident list using a full rebuild: remove everything, place one marker per
// incident in list order. O(n) per update, but the displayed set is exactly
// the filtered set by construction, with no stale or duplicated markers.
type Synchronizer struct {
	surface  Surface
	onSelect func(incidentID string)
	metrics  *metrics.Metrics
	logger   *utils.Logger

	rebuildMu  sync.Mutex
	mu         sync.Mutex
	state      State
	pending    []threats.Incident
	hasPending bool
	displayed  []MarkerState
	lastErr    error
}

func NewSynchronizer(surface Surface, onSelect func(string), m *metrics.Metrics, logger *utils.Logger) *Synchronizer {
	return &Synchronizer{
		surface:  surface,
		onSelect: onSelect,
		metrics:  m,
		logger:   logger,
	}
}

// SetOnSelect installs the selection callback after construction; the
// coordinator and the synchronizer reference each other, so one side is
// wired late.
func (s *Synchronizer) SetOnSelect(fn func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSelect = fn
}

// Init moves to Initializing and waits for the surface to signal readiness.
// Safe to call again after a surface error; the retry path goes through here.
func (s *Synchronizer) Init() {
	s.mu.Lock()
	s.state = StateInitializing
	s.lastErr = nil
	s.mu.Unlock()
	s.surface.OnReady(s.handleReady)
	s.surface.OnError(s.handleError)
}

func (s *Synchronizer) handleReady() {
	s.mu.Lock()
	if s.state != StateInitializing {
		s.mu.Unlock()
		return
	}
	s.state = StateReady
	list := s.pending
	apply := s.hasPending
	s.pending = nil
	s.hasPending = false
	s.mu.Unlock()

	s.logger.Printf("mapview: surface ready")
	if apply {
		s.Sync(list)
	}
}

func (s *Synchronizer) handleError(err error) {
	s.mu.Lock()
	s.state = StateError
	s.lastErr = err
	s.mu.Unlock()
	s.logger.Errorf("mapview: surface failed, sync suspended: %v", err)
}

// Sync reconciles the display with filtered. Outside Ready the call records
// the list as pending; the last snapshot received before readiness is the
// one synchronized once Ready is reached.
func (s *Synchronizer) Sync(filtered []threats.Incident) {
	s.mu.Lock()
	if s.state != StateReady {
		s.pending = filtered
		s.hasPending = true
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.rebuild(filtered)
}

func (s *Synchronizer) rebuild(filtered []threats.Incident) {
	// Serializes whole rebuilds so two concurrent syncs cannot interleave
	// their surface calls.
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()
	s.surface.RemoveAllMarkers()
	displayed := make([]MarkerState, 0, len(filtered))
	for _, in := range filtered {
		in := in
		handle, err := s.surface.PlaceMarker(Marker{
			IncidentID: in.ID,
			Lat:        in.Location.Lat,
			Lng:        in.Location.Lng,
			Severity:   in.Severity,
			AttackType: in.AttackType,
			Style:      StyleFor(in),
			OnClick:    func() { s.clicked(in.ID) },
		})
		if err != nil {
			s.logger.Errorf("mapview: place marker %s: %v", in.ID, err)
			continue
		}
		displayed = append(displayed, MarkerState{IncidentID: in.ID, Handle: handle})
	}
	s.mu.Lock()
	s.displayed = displayed
	s.mu.Unlock()
	s.metrics.MarkerRebuildsTotal.Inc()
}

func (s *Synchronizer) clicked(id string) {
	s.mu.Lock()
	fn := s.onSelect
	s.mu.Unlock()
	if fn != nil {
		fn(id)
	}
}

func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Synchronizer) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Displayed returns a copy of the current marker state.
func (s *Synchronizer) Displayed() []MarkerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MarkerState, len(s.displayed))
	copy(out, s.displayed)
	return out
}
