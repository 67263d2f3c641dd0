package sse

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/toystore_api/internal/models"
)

func TestHub_RegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	c := hub.Register("admin-1")
	assert.Equal(t, 1, hub.ClientCount())

	hub.Broadcast(&OrderEvent{Event: models.EventOrderPlaced, OrderNumber: "ORD-1"})

	select {
	case data := <-c.Events:
		var got OrderEvent
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, "ORD-1", got.OrderNumber)
	case <-time.After(time.Second):
		t.Fatal("expected event")
	}

	hub.Unregister("admin-1")
	assert.Zero(t, hub.ClientCount())
	_, open := <-c.Events
	assert.False(t, open)
}

func TestHub_BroadcastDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	c := hub.Register("slow")

	for i := 0; i < cap(c.Events)+10; i++ {
		hub.Broadcast(&OrderEvent{OrderID: i})
	}
	assert.Len(t, c.Events, cap(c.Events))
}

func TestHubPublisher_Publish(t *testing.T) {
	hub := NewHub()
	pub := NewHubPublisher(hub)

	o := &models.Order{ID: 3, OrderNumber: "ORD-20260101-AAAA0000", Status: models.OrderStatusShipped, CustomerName: "Sari"}
	awb := "JNE123"
	o.AWBNumber = &awb
	ev, err := models.NewOrderEvent(models.EventOrderStatusChanged, o, models.OrderStatusProcessing)
	require.NoError(t, err)

	// No clients: nothing to do.
	require.NoError(t, pub.Publish(context.Background(), *ev))

	c := hub.Register("admin")
	require.NoError(t, pub.Publish(context.Background(), *ev))

	var got OrderEvent
	require.NoError(t, json.Unmarshal(<-c.Events, &got))
	assert.Equal(t, "order.status_changed", got.Event)
	assert.Equal(t, "shipped", got.Status)
	assert.Equal(t, "processing", got.PreviousStatus)
	assert.Equal(t, "JNE123", got.AWBNumber)
	assert.Equal(t, "0.00", got.Total)
	assert.Equal(t, "sse", pub.Name())
}

func TestHubPublisher_BadPayload(t *testing.T) {
	hub := NewHub()
	hub.Register("admin")
	err := NewHubPublisher(hub).Publish(context.Background(), models.OrderEvent{ID: 1, Payload: json.RawMessage("{")})
	assert.Error(t, err)
}
