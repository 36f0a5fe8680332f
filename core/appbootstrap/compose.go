package appbootstrap

import (
	"github.com/nats-io/nats.go"

	"cybermap/api"
	"cybermap/api/handlers"
	"cybermap/config"
	"cybermap/core/dashboard"
	"cybermap/core/feed"
	"cybermap/core/mapview"
	"cybermap/core/metrics"
	"cybermap/core/utils"
)

type runtimeComposition struct {
	serverDeps api.ServerDeps
	poller     *feed.Poller
	subscriber *feed.Subscriber
	natsConn   *nats.Conn
}

func composeRuntime(cfg *config.AppConfig, logger *utils.Logger) (*runtimeComposition, error) {
	m := metrics.NewMetrics()
	stream := handlers.NewMapStream(cfg.Map.StreamBuffer, logger)
	syncer := mapview.NewSynchronizer(stream, nil, m, logger)
	svc := dashboard.NewService(syncer, cfg.Stats.CacheSize, logger)
	syncer.SetOnSelect(func(id string) {
		if err := svc.Select(id); err != nil {
			logger.Printf("dashboard: click on unknown incident %s ignored", id)
		}
	})
	syncer.Init()

	source := feed.NewHTTPSource(cfg.Feed.BaseURL, cfg.Feed.RequestTimeout, logger)
	poller := feed.NewPoller(source, svc.ApplySnapshot, feed.PollerOptions{
		Interval:       cfg.EffectivePollInterval(),
		Timeout:        cfg.Feed.RequestTimeout,
		SampleFallback: cfg.Feed.SampleFallback,
	}, m, logger)

	comp := &runtimeComposition{
		serverDeps: api.ServerDeps{
			Dashboard: svc,
			Sync:      syncer,
			Stream:    stream,
		},
		poller: poller,
	}

	if cfg.NATS.Enabled {
		nc, err := nats.Connect(cfg.NATS.URL)
		if err != nil {
			return nil, err
		}
		comp.natsConn = nc
		comp.subscriber = feed.NewSubscriber(nc, cfg.NATS.Subject, cfg.NATS.Queue, poller, m, logger)
	}
	return comp, nil
}
