package sse

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/GTDGit/toystore_api/internal/models"
)

// HubPublisher forwards outbox events to connected admin clients.
type HubPublisher struct {
	hub *Hub
}

// NewHubPublisher creates a publisher backed by the given Hub.
func NewHubPublisher(hub *Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Name() string { return "sse" }

// Publish never fails on delivery; slow clients lose events instead.
func (p *HubPublisher) Publish(_ context.Context, ev models.OrderEvent) error {
	if p.hub.ClientCount() == 0 {
		return nil
	}
	event, err := toSSEEvent(ev)
	if err != nil {
		return err
	}
	p.hub.Broadcast(event)
	return nil
}

func toSSEEvent(ev models.OrderEvent) (*OrderEvent, error) {
	var payload models.OrderEventPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode order event %d: %w", ev.ID, err)
	}
	return &OrderEvent{
		Event:          ev.EventType,
		OrderID:        ev.OrderID,
		OrderNumber:    payload.OrderNumber,
		Status:         string(payload.Status),
		PreviousStatus: string(payload.PreviousStatus),
		CustomerName:   payload.CustomerName,
		Total:          payload.Total,
		AWBNumber:      payload.AWBNumber,
		Timestamp:      ev.CreatedAt,
	}, nil
}
