package models

import (
	"encoding/json"
	"time"
)

// Order event types written to the outbox.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is an outbox row awaiting publication.
type OrderEvent struct {
	ID          int64           `db:"id" json:"id"`
	EventType   string          `db:"event_type" json:"event"`
	OrderID     int             `db:"order_id" json:"orderId"`
	Payload     json.RawMessage `db:"payload" json:"payload"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	PublishedAt *time.Time      `db:"published_at" json:"-"`
}

// OrderEventPayload is the JSON body stored with each event.
type OrderEventPayload struct {
	OrderNumber    string      `json:"orderNumber"`
	Status         OrderStatus `json:"status"`
	PreviousStatus OrderStatus `json:"previousStatus,omitempty"`
	CustomerName   string      `json:"customerName"`
	Total          string      `json:"total"`
	AWBNumber      string      `json:"awbNumber,omitempty"`
}

// NewOrderEvent builds an outbox row describing o. prev is empty for new orders.
func NewOrderEvent(eventType string, o *Order, prev OrderStatus) (*OrderEvent, error) {
	payload := OrderEventPayload{
		OrderNumber:    o.OrderNumber,
		Status:         o.Status,
		PreviousStatus: prev,
		CustomerName:   o.CustomerName,
		Total:          o.Total.StringFixed(2),
	}
	if o.AWBNumber != nil {
		payload.AWBNumber = *o.AWBNumber
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &OrderEvent{
		EventType: eventType,
		OrderID:   o.ID,
		Payload:   raw,
	}, nil
}
