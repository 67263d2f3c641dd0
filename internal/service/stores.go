package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/toystore_api/internal/models"
	"github.com/GTDGit/toystore_api/internal/repository"
)

// The interfaces below are satisfied by the repository and cache packages.

type AdminUserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	UpdateLastLogin(ctx context.Context, id int, at time.Time) error
	Create(ctx context.Context, user *models.AdminUser) error
}

type CatalogStore interface {
	ListActive(ctx context.Context) ([]models.Product, error)
	ListNew(ctx context.Context, limit int) ([]models.Product, error)
	GetActiveBySlug(ctx context.Context, slug string) (*models.Product, error)
	Categories(ctx context.Context) ([]models.CategorySummary, error)
}

type ProductStore interface {
	ListAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int) (*models.Product, error)
	SlugExists(ctx context.Context, slug string, excludeID int) (bool, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product, replaceVariants bool) error
	Delete(ctx context.Context, id int) (bool, error)
}

type VariantStore interface {
	GetDetail(ctx context.Context, id int) (*models.VariantDetail, error)
	GetDetails(ctx context.Context, ids []int) (map[int]models.VariantDetail, error)
}

type OrderStore interface {
	Create(ctx context.Context, o *models.Order, customer *models.User) error
	GetByID(ctx context.Context, id int) (*models.Order, error)
	GetByAWB(ctx context.Context, awb string) (*models.Order, error)
	GetByNumberAndEmail(ctx context.Context, orderNumber, email string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id int, decide func(o *models.Order) (*repository.StatusChange, error)) (*models.Order, error)
	GetAllAdmin(ctx context.Context, filter *repository.AdminOrderFilter) (*repository.AdminOrderResult, error)
}

type ProductStats interface {
	CountActive(ctx context.Context) (int, error)
	LowStock(ctx context.Context, threshold, limit int) ([]models.LowStockProduct, error)
}

type UserStats interface {
	CountActive(ctx context.Context) (int, error)
}

type OrderStats interface {
	Count(ctx context.Context) (int, error)
	SumTotalByStatus(ctx context.Context, status models.OrderStatus) (decimal.Decimal, error)
	Recent(ctx context.Context, limit int) ([]models.RecentOrder, error)
}

type DashboardCache interface {
	Get(ctx context.Context) (*models.DashboardStats, error)
	Set(ctx context.Context, stats *models.DashboardStats) error
	Invalidate(ctx context.Context) error
}

// Invalidator drops derived data after a write. Nil means nothing to drop.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// ImageStore removes uploaded product images that are no longer referenced.
type ImageStore interface {
	KeyFromURL(url string) (string, bool)
	Delete(ctx context.Context, key string) error
}
