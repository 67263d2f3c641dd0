package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GTDGit/toystore_api/internal/models"
)

const dashboardKey = "admin:dashboard"

// DashboardCache keeps the last computed dashboard for a short TTL.
type DashboardCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewDashboardCache creates a new DashboardCache.
func NewDashboardCache(redis *RedisClient, ttl time.Duration) *DashboardCache {
	return &DashboardCache{
		redis: redis,
		ttl:   ttl,
	}
}

// Get returns the cached stats. A miss is reported as (nil, nil).
func (c *DashboardCache) Get(ctx context.Context) (*models.DashboardStats, error) {
	raw, err := c.redis.Get(ctx, dashboardKey)
	if err != nil {
		if IsMiss(err) {
			return nil, nil
		}
		return nil, err
	}

	var stats models.DashboardStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dashboard stats: %w", err)
	}
	return &stats, nil
}

// Set stores stats under the dashboard key.
func (c *DashboardCache) Set(ctx context.Context, stats *models.DashboardStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard stats: %w", err)
	}
	return c.redis.Set(ctx, dashboardKey, string(data), c.ttl)
}

// Invalidate drops the cached stats after product or order mutations.
func (c *DashboardCache) Invalidate(ctx context.Context) error {
	return c.redis.Delete(ctx, dashboardKey)
}
