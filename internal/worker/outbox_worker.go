package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/toystore_api/internal/events"
	"github.com/GTDGit/toystore_api/internal/models"
)

// OutboxStore claims unpublished order events.
type OutboxStore interface {
	ProcessUnpublished(ctx context.Context, limit int, publish func(ctx context.Context, batch []models.OrderEvent) []int64) (int, error)
}

// OutboxWorker drains the order event outbox into the configured publishers.
type OutboxWorker struct {
	store      OutboxStore
	publishers []events.Publisher
	interval   time.Duration
	batchSize  int
}

// NewOutboxWorker constructs an OutboxWorker.
func NewOutboxWorker(store OutboxStore, interval time.Duration, batchSize int, publishers ...events.Publisher) *OutboxWorker {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxWorker{
		store:      store,
		publishers: publishers,
		interval:   interval,
		batchSize:  batchSize,
	}
}

// Start begins the polling loop and listens for context cancellation.
func (w *OutboxWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Int("publishers", len(w.publishers)).Msg("Starting outbox worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Outbox worker stopped")
			return
		}
	}
}

func (w *OutboxWorker) run(ctx context.Context) {
	n, err := w.store.ProcessUnpublished(ctx, w.batchSize, w.publish)
	if err != nil {
		log.Error().Err(err).Msg("Failed to process order outbox")
		return
	}
	if n > 0 {
		log.Debug().Int("published", n).Msg("Order events published")
	}
}

// publish delivers events in order and stops at the first failure so later
// events of the same order are never published ahead of earlier ones.
func (w *OutboxWorker) publish(ctx context.Context, batch []models.OrderEvent) []int64 {
	done := make([]int64, 0, len(batch))
	for _, ev := range batch {
		for _, p := range w.publishers {
			if err := p.Publish(ctx, ev); err != nil {
				log.Error().
					Err(err).
					Int64("event_id", ev.ID).
					Str("event_type", ev.EventType).
					Str("publisher", p.Name()).
					Msg("Failed to publish order event")
				return done
			}
		}
		done = append(done, ev.ID)
	}
	return done
}
