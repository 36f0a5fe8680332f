package feed

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"cybermap/core/metrics"
	"cybermap/core/threats"
	"cybermap/core/utils"
)

// Poller drives the fixed-interval feed fetch and funnels every snapshot,
// whatever its origin, through a single latest-wins gate. A fetch result that
// arrives after a newer snapshot was applied is discarded, never applied out
// of order.
type Poller struct {
	source         Source
	sink           func(Snapshot)
	interval       time.Duration
	timeout        time.Duration
	sampleFallback bool
	metrics        *metrics.Metrics
	logger         *utils.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	running bool

	genMu       sync.Mutex
	nextGen     uint64
	lastApplied uint64
}

type PollerOptions struct {
	Interval       time.Duration
	Timeout        time.Duration
	SampleFallback bool
}

func NewPoller(source Source, sink func(Snapshot), opts PollerOptions, m *metrics.Metrics, logger *utils.Logger) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		source:         source,
		sink:           sink,
		interval:       interval,
		timeout:        opts.Timeout,
		sampleFallback: opts.SampleFallback,
		metrics:        m,
		logger:         logger,
	}
}

// StartWithContext primes the pipeline (sample fallback first, then an
// immediate fetch) and schedules recurring fetches. Idempotent while running.
func (p *Poller) StartWithContext(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	p.cron = cron.New()
	p.cron.Schedule(cron.Every(p.interval), cron.FuncJob(func() { p.pollOnce(runCtx) }))
	p.mu.Unlock()

	p.prime()
	go p.pollOnce(runCtx)
	p.cron.Start()
}

func (p *Poller) StopWithContext(ctx context.Context) error {
	p.mu.Lock()
	cancel := p.cancel
	c := p.cron
	wasRunning := p.running
	p.cancel = nil
	p.running = false
	p.mu.Unlock()
	if !wasRunning {
		return nil
	}
	if cancel != nil {
		cancel()
	}
	if c == nil {
		return nil
	}
	stopped := c.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// prime applies the built-in sample snapshot so consumers never observe "no
// data" before the first successful fetch.
func (p *Poller) prime() {
	if !p.sampleFallback {
		return
	}
	incidents, err := threats.SampleIncidents(time.Now().UTC())
	if err != nil {
		p.logger.Errorf("feed: sample snapshot unavailable: %v", err)
		return
	}
	p.Submit(OriginSample, incidents)
}

// Submit assigns the next generation to an externally produced batch (sample
// fallback, NATS push) and applies it immediately.
func (p *Poller) Submit(origin string, incidents []threats.Incident) {
	p.genMu.Lock()
	defer p.genMu.Unlock()
	p.nextGen++
	p.lastApplied = p.nextGen
	p.deliver(Snapshot{
		Incidents:  incidents,
		Total:      len(incidents),
		FetchedAt:  time.Now().UTC(),
		Origin:     origin,
		Generation: p.nextGen,
	})
}

func (p *Poller) pollOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	p.metrics.FetchesTotal.Inc()

	// The generation is reserved before the fetch starts, so a slow fetch
	// superseded by a newer one loses the race and gets discarded.
	p.genMu.Lock()
	p.nextGen++
	gen := p.nextGen
	p.genMu.Unlock()

	fetchCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	incidents, rejected, err := p.source.Fetch(fetchCtx)
	if rejected > 0 {
		p.metrics.RecordsRejectedTotal.Add(float64(rejected))
	}
	if err != nil {
		// Soft failure: the prior snapshot (or sample fallback) stays in
		// place and the next tick retries.
		p.metrics.FetchFailuresTotal.Inc()
		p.logger.Errorf("feed: fetch failed: %v", err)
		return
	}

	p.genMu.Lock()
	defer p.genMu.Unlock()
	if gen <= p.lastApplied {
		p.metrics.StaleFetchesTotal.Inc()
		p.logger.Printf("feed: discarding stale fetch result (gen=%d applied=%d)", gen, p.lastApplied)
		return
	}
	p.lastApplied = gen
	p.deliver(Snapshot{
		Incidents:  incidents,
		Total:      len(incidents),
		FetchedAt:  time.Now().UTC(),
		Origin:     p.source.Name(),
		Generation: gen,
	})
}

// deliver runs under genMu so snapshots reach the sink in generation order.
func (p *Poller) deliver(snap Snapshot) {
	p.metrics.SnapshotsAppliedTotal.Inc()
	if p.sink != nil {
		p.sink(snap)
	}
}
