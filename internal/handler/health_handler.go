package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/toystore_api/internal/utils"
)

var startTime = time.Now()

// Pinger is a dependency whose reachability is reported by the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// OutboxCounter reports how many order events are waiting to be published.
type OutboxCounter interface {
	CountUnpublished(ctx context.Context) (int, error)
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
	deps   map[string]Pinger
	outbox OutboxCounter
}

// NewHealthHandler creates a new HealthHandler checking the named dependencies.
// outbox may be nil.
func NewHealthHandler(deps map[string]Pinger, outbox OutboxCounter) *HealthHandler {
	return &HealthHandler{deps: deps, outbox: outbox}
}

// GetHealth responds with service and dependency status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	code := 200
	deps := gin.H{}
	for name, p := range h.deps {
		if err := p.Ping(ctx); err != nil {
			deps[name] = "disconnected"
			status = "degraded"
			code = 503
			continue
		}
		deps[name] = "connected"
	}

	data := gin.H{
		"status":       status,
		"version":      "1.0.0",
		"uptime":       int(time.Since(startTime).Seconds()),
		"dependencies": deps,
	}
	if h.outbox != nil {
		// -1 when the count query fails.
		backlog, err := h.outbox.CountUnpublished(ctx)
		if err != nil {
			backlog = -1
		}
		data["outboxBacklog"] = backlog
	}

	utils.Success(c, code, "Service is "+status, data)
}
