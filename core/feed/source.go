package feed

import (
	"context"
	"time"

	"cybermap/core/threats"
)

// Snapshot is one complete raw incident list as delivered by a single
// successful fetch (or by the sample fallback). A new snapshot replaces the
// prior one wholesale.
type Snapshot struct {
	Incidents  []threats.Incident
	Total      int
	FetchedAt  time.Time
	Origin     string
	Generation uint64
}

const (
	OriginSample = "sample"
	OriginHTTP   = "http"
	OriginNATS   = "nats"
)

// Source produces one raw incident batch per call. Implementations validate
// per record and report how many records they dropped.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (incidents []threats.Incident, rejected int, err error)
}
