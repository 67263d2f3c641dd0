package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/GTDGit/toystore_api/internal/models"
)

// Dashboard sizing.
const (
	LowStockThreshold = 5
	LowStockLimit     = 5
	RecentOrdersLimit = 5
)

// DashboardService aggregates admin overview statistics.
type DashboardService struct {
	products ProductStats
	users    UserStats
	orders   OrderStats
	cache    DashboardCache
	now      func() time.Time
}

// NewDashboardService constructs a DashboardService. cache may be nil.
func NewDashboardService(products ProductStats, users UserStats, orders OrderStats, cache DashboardCache) *DashboardService {
	return &DashboardService{
		products: products,
		users:    users,
		orders:   orders,
		cache:    cache,
		now:      time.Now,
	}
}

// Stats returns the dashboard, served from cache when fresh.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Dashboard cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats); err != nil {
			log.Warn().Err(err).Msg("Dashboard cache write failed")
		}
	}
	return stats, nil
}

func (s *DashboardService) compute(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.TotalProducts, err = s.products.CountActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.users.CountActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalOrders, err = s.orders.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalRevenue, err = s.orders.SumTotalByStatus(gctx, models.OrderStatusDelivered)
		return err
	})
	g.Go(func() (err error) {
		stats.RecentOrders, err = s.orders.Recent(gctx, RecentOrdersLimit)
		return err
	})
	g.Go(func() (err error) {
		stats.LowStockProducts, err = s.products.LowStock(gctx, LowStockThreshold, LowStockLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if stats.RecentOrders == nil {
		stats.RecentOrders = []models.RecentOrder{}
	}
	if stats.LowStockProducts == nil {
		stats.LowStockProducts = []models.LowStockProduct{}
	}
	stats.GeneratedAt = s.now()
	return stats, nil
}
