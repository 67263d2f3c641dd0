package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/toystore_api/internal/database"
	"github.com/GTDGit/toystore_api/internal/models"
)

// OrderEventRepository reads and acknowledges the order event outbox.
type OrderEventRepository struct {
	db *sqlx.DB
}

// NewOrderEventRepository creates a new OrderEventRepository.
func NewOrderEventRepository(db *sqlx.DB) *OrderEventRepository {
	return &OrderEventRepository{db: db}
}

// ProcessUnpublished claims up to limit unpublished events, oldest first,
// hands them to publish and marks the ids it returns as published. Rows are
// locked with SKIP LOCKED so concurrent workers never see the same event.
func (r *OrderEventRepository) ProcessUnpublished(ctx context.Context, limit int, publish func(ctx context.Context, events []models.OrderEvent) []int64) (int, error) {
	published := 0
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const q = `
            SELECT id, event_type, order_id, payload, created_at, published_at
            FROM order_events
            WHERE published_at IS NULL
            ORDER BY id
            LIMIT $1
            FOR UPDATE SKIP LOCKED`
		var events []models.OrderEvent
		if err := tx.SelectContext(ctx, &events, q, limit); err != nil {
			return fmt.Errorf("claim order events: %w", err)
		}
		if len(events) == 0 {
			return nil
		}

		ids := publish(ctx, events)
		if len(ids) == 0 {
			return nil
		}
		const mark = `UPDATE order_events SET published_at = NOW() WHERE id = ANY($1)`
		res, err := tx.ExecContext(ctx, mark, pq.Array(ids))
		if err != nil {
			return fmt.Errorf("mark order events published: %w", err)
		}
		n, _ := res.RowsAffected()
		published = int(n)
		return nil
	})
	return published, err
}

// CountUnpublished returns the outbox backlog.
func (r *OrderEventRepository) CountUnpublished(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM order_events WHERE published_at IS NULL`)
	return n, err
}

func insertOrderEvent(ctx context.Context, tx *sqlx.Tx, ev *models.OrderEvent) error {
	const q = `
        INSERT INTO order_events (event_type, order_id, payload)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	if err := tx.QueryRowxContext(ctx, q, ev.EventType, ev.OrderID, string(ev.Payload)).Scan(&ev.ID, &ev.CreatedAt); err != nil {
		return fmt.Errorf("insert order event: %w", err)
	}
	return nil
}
