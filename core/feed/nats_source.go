package feed

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"

	"cybermap/core/metrics"
	"cybermap/core/threats"
	"cybermap/core/utils"
)

// Subscriber receives pushed snapshots from a NATS subject carrying the same
// JSON payload as the HTTP feed. Pushed snapshots go through the poller's
// latest-wins gate like any other origin.
type Subscriber struct {
	nc      *nats.Conn
	subject string
	queue   string
	poller  *Poller
	metrics *metrics.Metrics
	logger  *utils.Logger

	sub *nats.Subscription
}

func NewSubscriber(nc *nats.Conn, subject, queue string, poller *Poller, m *metrics.Metrics, logger *utils.Logger) *Subscriber {
	return &Subscriber{
		nc:      nc,
		subject: subject,
		queue:   queue,
		poller:  poller,
		metrics: m,
		logger:  logger,
	}
}

// StartWithContext subscribes and keeps the subscription alive until the
// context is cancelled.
func (s *Subscriber) StartWithContext(ctx context.Context) error {
	sub, err := s.nc.QueueSubscribe(s.subject, s.queue, s.handleMessage)
	if err != nil {
		return err
	}
	s.sub = sub
	s.logger.Printf("feed: subscribed to %s (queue=%s)", s.subject, s.queue)
	go func() {
		<-ctx.Done()
		_ = s.sub.Unsubscribe()
	}()
	return nil
}

func (s *Subscriber) handleMessage(msg *nats.Msg) {
	var payload threatsResponse
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		s.logger.Errorf("feed: bad snapshot on %s: %v", s.subject, err)
		return
	}
	records := payload.Threats
	if len(records) == 0 {
		records = payload.Data
	}
	incidents, rejected, reasons := threats.ParseBatch(records)
	if rejected > 0 {
		s.metrics.RecordsRejectedTotal.Add(float64(rejected))
		for _, reason := range reasons {
			s.logger.Printf("feed: record dropped: %v", reason)
		}
	}
	s.poller.Submit(OriginNATS, incidents)
}
