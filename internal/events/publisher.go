// Package events fans order outbox rows out to their consumers.
package events

import (
	"context"

	"github.com/GTDGit/toystore_api/internal/models"
)

// Publisher delivers one order event. Publishing must be safe to repeat:
// an event whose batch fails is handed to every publisher again.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, ev models.OrderEvent) error
}
