package dashboard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"cybermap/core/analytics"
	"cybermap/core/feed"
	"cybermap/core/mapview"
	"cybermap/core/threats"
	"cybermap/core/utils"
)

var ErrUnknownIncident = errors.New("dashboard: incident not in current snapshot")

// Service is the view coordinator core. It owns the raw snapshot, the filter
// criteria and the current selection, and it re-runs the dependency chain
// snapshot/criteria -> filtered -> marker sync on every change. Aggregations
// are computed lazily when their stats accessor is called.
type Service struct {
	sync   *mapview.Synchronizer
	logger *utils.Logger
	clock  func() time.Time

	mu       sync.Mutex
	snapshot feed.Snapshot
	criteria analytics.Criteria
	filtered []threats.Incident
	selected string
	version  uint64

	cache *lru.Cache[string, any]
}

func NewService(syncer *mapview.Synchronizer, cacheSize int, logger *utils.Logger) *Service {
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cache, _ := lru.New[string, any](cacheSize)
	return &Service{
		sync:     syncer,
		logger:   logger,
		clock:    func() time.Time { return time.Now().UTC() },
		criteria: analytics.Criteria{}.Normalize(),
		filtered: []threats.Incident{},
		cache:    cache,
	}
}

// SetClock overrides the reference instant source. Tests only.
func (s *Service) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// ApplySnapshot replaces the raw snapshot wholesale and recomputes the
// filtered set. Called by the feed pipeline, which already serializes
// snapshots in generation order.
func (s *Service) ApplySnapshot(snap feed.Snapshot) {
	s.mu.Lock()
	s.snapshot = snap
	if s.selected != "" {
		if _, ok := s.findLocked(s.selected); !ok {
			s.selected = ""
		}
	}
	filtered := s.recomputeLocked()
	s.mu.Unlock()

	s.logger.Printf("dashboard: snapshot applied origin=%s total=%d filtered=%d", snap.Origin, snap.Total, len(filtered))
	s.sync.Sync(filtered)
}

// SetCriteria validates and installs new filter criteria, then recomputes.
func (s *Service) SetCriteria(c analytics.Criteria) error {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.criteria = c
	filtered := s.recomputeLocked()
	s.mu.Unlock()

	s.sync.Sync(filtered)
	return nil
}

func (s *Service) Criteria() analytics.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

// recomputeLocked re-runs the filter and bumps the cache version. The caller
// holds s.mu and is responsible for pushing the returned list to the marker
// synchronizer after unlocking.
func (s *Service) recomputeLocked() []threats.Incident {
	s.filtered = analytics.Filter(s.snapshot.Incidents, s.criteria)
	s.version++
	return s.filtered
}

// FilteredIncidents returns a copy of the current filtered set.
func (s *Service) FilteredIncidents() []threats.Incident {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]threats.Incident, len(s.filtered))
	copy(out, s.filtered)
	return out
}

// SnapshotInfo reports metadata of the raw snapshot currently in place.
func (s *Service) SnapshotInfo() (origin string, fetchedAt time.Time, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Origin, s.snapshot.FetchedAt, s.snapshot.Total
}

func (s *Service) findLocked(id string) (threats.Incident, bool) {
	for _, in := range s.snapshot.Incidents {
		if in.ID == id {
			return in, true
		}
	}
	return threats.Incident{}, false
}

// Incident looks one record up in the current snapshot.
func (s *Service) Incident(id string) (threats.Incident, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(id)
}

// Select marks an incident as the currently selected one (marker click or
// API call). The incident must exist in the current snapshot.
func (s *Service) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.findLocked(id); !ok {
		return ErrUnknownIncident
	}
	s.selected = id
	return nil
}

func (s *Service) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
}

func (s *Service) Selected() (threats.Incident, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		return threats.Incident{}, false
	}
	return s.findLocked(s.selected)
}

// CountryStats is memoized per (snapshot, criteria) version.
func (s *Service) CountryStats() analytics.CountryStats {
	s.mu.Lock()
	key := s.cacheKeyLocked("country")
	if cached, ok := s.cache.Get(key); ok {
		s.mu.Unlock()
		return cached.(analytics.CountryStats)
	}
	list := s.filtered
	s.mu.Unlock()

	stats := analytics.CountryBreakdown(list)
	s.cache.Add(key, stats)
	return stats
}

func (s *Service) SeverityStats() analytics.SeverityStats {
	s.mu.Lock()
	key := s.cacheKeyLocked("severity")
	if cached, ok := s.cache.Get(key); ok {
		s.mu.Unlock()
		return cached.(analytics.SeverityStats)
	}
	list := s.filtered
	s.mu.Unlock()

	stats := analytics.SeverityBreakdown(list)
	s.cache.Add(key, stats)
	return stats
}

func (s *Service) AttackTypeStats() analytics.AttackTypeStats {
	s.mu.Lock()
	key := s.cacheKeyLocked("attacktype")
	if cached, ok := s.cache.Get(key); ok {
		s.mu.Unlock()
		return cached.(analytics.AttackTypeStats)
	}
	list := s.filtered
	s.mu.Unlock()

	stats := analytics.AttackTypeBreakdown(list)
	s.cache.Add(key, stats)
	return stats
}

// TimelineStats is never cached: it depends on the invocation instant.
func (s *Service) TimelineStats() analytics.TimelineStats {
	s.mu.Lock()
	list := s.filtered
	now := s.clock()
	s.mu.Unlock()
	return analytics.TimelineBreakdown(list, now)
}

// SeverityCounts is the small always-visible summary over the filtered set.
func (s *Service) SeverityCounts() map[threats.Severity]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[threats.Severity]int, len(threats.SeverityOrder))
	for _, sev := range threats.SeverityOrder {
		counts[sev] = 0
	}
	for _, in := range s.filtered {
		counts[in.Severity]++
	}
	return counts
}

func (s *Service) cacheKeyLocked(kind string) string {
	return fmt.Sprintf("%s:%d:%q:%s:%s", kind, s.version, s.criteria.SearchTerm, s.criteria.Severity, s.criteria.AttackType)
}
