package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/GTDGit/toystore_api/internal/catalog"
	"github.com/GTDGit/toystore_api/internal/models"
	"github.com/GTDGit/toystore_api/internal/utils"
)

// DefaultNewProductsLimit is the size of the "new arrivals" list.
const DefaultNewProductsLimit = 6

// CatalogService serves storefront product listings.
type CatalogService struct {
	products CatalogStore
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(products CatalogStore) *CatalogService {
	return &CatalogService{products: products}
}

// ListProducts applies filter to the active catalog and returns one page.
func (s *CatalogService) ListProducts(ctx context.Context, filter catalog.Filter, page int) (catalog.Page, error) {
	products, err := s.products.ListActive(ctx)
	if err != nil {
		return catalog.Page{}, err
	}
	return catalog.Paginate(filter.Apply(products), page, catalog.PageSize), nil
}

// GetProduct returns an active product by slug.
func (s *CatalogService) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	p, err := s.products.GetActiveBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// NewProducts returns up to limit products flagged as new.
func (s *CatalogService) NewProducts(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 || limit > 50 {
		limit = DefaultNewProductsLimit
	}
	products, err := s.products.ListNew(ctx, limit)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// Categories lists categories that have active products.
func (s *CatalogService) Categories(ctx context.Context) ([]models.CategorySummary, error) {
	return s.products.Categories(ctx)
}
