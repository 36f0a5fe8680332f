package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters for the feed pipeline and the map
// synchronizer.
type Metrics struct {
	FetchesTotal          prometheus.Counter
	FetchFailuresTotal    prometheus.Counter
	StaleFetchesTotal     prometheus.Counter
	RecordsRejectedTotal  prometheus.Counter
	SnapshotsAppliedTotal prometheus.Counter
	MarkerRebuildsTotal   prometheus.Counter
}

// NewMetrics registers the counters on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers on the given registerer; tests pass a private
// registry so repeated construction does not panic on duplicates.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FetchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cybermap_fetches_total",
			Help: "Total number of feed fetch attempts",
		}),
		FetchFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cybermap_fetch_failures_total",
			Help: "Total number of failed feed fetches",
		}),
		StaleFetchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cybermap_stale_fetches_total",
			Help: "Total number of fetch results discarded by the latest-wins guard",
		}),
		RecordsRejectedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cybermap_records_rejected_total",
			Help: "Total number of inbound incident records dropped by validation",
		}),
		SnapshotsAppliedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cybermap_snapshots_applied_total",
			Help: "Total number of raw snapshots applied to the dashboard",
		}),
		MarkerRebuildsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cybermap_marker_rebuilds_total",
			Help: "Total number of full marker rebuilds",
		}),
	}
}
