package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/toystore_api/internal/catalog"
	"github.com/GTDGit/toystore_api/internal/models"
	"github.com/GTDGit/toystore_api/internal/repository"
	"github.com/GTDGit/toystore_api/internal/utils"
)

// maxSlugAttempts bounds the -2, -3... suffix search before a random suffix is used.
const maxSlugAttempts = 50

// ProductManagementService handles product CRUD operations.
type ProductManagementService struct {
	productRepo ProductStore
	dashboard   Invalidator
	images      ImageStore
}

// NewProductManagementService constructs a ProductManagementService. dashboard
// and images may be nil.
func NewProductManagementService(productRepo ProductStore, dashboard Invalidator, images ImageStore) *ProductManagementService {
	return &ProductManagementService{
		productRepo: productRepo,
		dashboard:   dashboard,
		images:      images,
	}
}

// VariantInput is a variant in a create or update request. ID is only used on update.
type VariantInput struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	SKU   string          `json:"sku"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// CreateProductRequest represents the request to create a new product.
type CreateProductRequest struct {
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Category      string              `json:"category"`
	AgeRating     string              `json:"ageRating"`
	OriginalPrice decimal.NullDecimal `json:"originalPrice"`
	Weight        decimal.NullDecimal `json:"weight"`
	Images        []string            `json:"images"`
	IsNew         bool                `json:"isNew"`
	Status        string              `json:"status"`
	Variants      []VariantInput      `json:"variants"`
}

// UpdateProductRequest represents a partial update. Nil fields are left unchanged;
// a non-nil Variants replaces the variant set.
type UpdateProductRequest struct {
	Name          *string              `json:"name"`
	Description   *string              `json:"description"`
	Category      *string              `json:"category"`
	AgeRating     *string              `json:"ageRating"`
	OriginalPrice *decimal.NullDecimal `json:"originalPrice"`
	Weight        *decimal.NullDecimal `json:"weight"`
	Images        []string             `json:"images"`
	IsNew         *bool                `json:"isNew"`
	Status        *string              `json:"status"`
	Variants      []VariantInput       `json:"variants"`
}

// ListProducts returns the admin product list, newest first.
func (s *ProductManagementService) ListProducts(ctx context.Context) ([]models.AdminProductRow, error) {
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]models.AdminProductRow, 0, len(products))
	for i := range products {
		rows = append(rows, products[i].ToAdminRow())
	}
	return rows, nil
}

// GetProduct retrieves a product by ID.
func (s *ProductManagementService) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapProductErr(err)
	}
	return product, nil
}

// CreateProduct validates req and stores the product with its variants atomically.
func (s *ProductManagementService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	category := strings.TrimSpace(req.Category)
	if name == "" || category == "" {
		return nil, utils.NewInvalid("Missing required fields: name and category are required")
	}
	if len(req.Variants) == 0 {
		return nil, utils.NewInvalid("At least one variant is required")
	}
	variants, err := buildVariants(req.Variants, false)
	if err != nil {
		return nil, err
	}
	status, err := parseProductStatus(req.Status, models.ProductStatusActive)
	if err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, name, 0)
	if err != nil {
		return nil, err
	}

	images := models.StringList(req.Images)
	if images == nil {
		images = models.StringList{}
	}
	product := &models.Product{
		Slug:          slug,
		Name:          name,
		Description:   req.Description,
		Category:      category,
		AgeRating:     strings.TrimSpace(req.AgeRating),
		OriginalPrice: req.OriginalPrice,
		Weight:        req.Weight,
		Images:        images,
		IsNew:         req.IsNew,
		Status:        status,
		Variants:      variants,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, mapProductErr(err)
	}

	log.Info().Int("product_id", product.ID).Str("slug", product.Slug).Msg("Product created")
	invalidate(ctx, s.dashboard)
	return product, nil
}

// UpdateProduct applies a partial update to a product.
func (s *ProductManagementService) UpdateProduct(ctx context.Context, id int, req *UpdateProductRequest) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapProductErr(err)
	}
	previousImages := product.Images

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, utils.NewInvalid("Name cannot be empty")
		}
		product.Name = name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return nil, utils.NewInvalid("Category cannot be empty")
		}
		product.Category = category
	}
	if req.AgeRating != nil {
		product.AgeRating = strings.TrimSpace(*req.AgeRating)
	}
	if req.OriginalPrice != nil {
		product.OriginalPrice = *req.OriginalPrice
	}
	if req.Weight != nil {
		product.Weight = *req.Weight
	}
	if req.Images != nil {
		product.Images = models.StringList(req.Images)
	}
	if req.IsNew != nil {
		product.IsNew = *req.IsNew
	}
	if req.Status != nil {
		if product.Status, err = parseProductStatus(*req.Status, product.Status); err != nil {
			return nil, err
		}
	}

	replaceVariants := req.Variants != nil
	if replaceVariants {
		if len(req.Variants) == 0 {
			return nil, utils.NewInvalid("At least one variant is required")
		}
		if product.Variants, err = buildVariants(req.Variants, true); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Update(ctx, product, replaceVariants); err != nil {
		return nil, mapProductErr(err)
	}

	log.Info().Int("product_id", product.ID).Bool("variants_replaced", replaceVariants).Msg("Product updated")
	invalidate(ctx, s.dashboard)
	if req.Images != nil {
		s.removeImages(ctx, droppedImages(previousImages, product.Images))
	}
	return product, nil
}

// DeleteProduct removes a product, or deactivates it when orders reference it.
// It reports whether the product was deactivated rather than deleted.
func (s *ProductManagementService) DeleteProduct(ctx context.Context, id int) (bool, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return false, mapProductErr(err)
	}
	deactivated, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return false, mapProductErr(err)
	}
	log.Info().Int("product_id", id).Bool("deactivated", deactivated).Msg("Product deleted")
	invalidate(ctx, s.dashboard)
	// Deactivated products are still referenced by orders, so their images stay.
	if !deactivated {
		s.removeImages(ctx, product.Images)
	}
	return deactivated, nil
}

// removeImages deletes uploaded objects behind urls. External URLs are left
// alone; failures are logged since the database change is already committed.
func (s *ProductManagementService) removeImages(ctx context.Context, urls []string) {
	if s.images == nil {
		return
	}
	for _, url := range urls {
		key, ok := s.images.KeyFromURL(url)
		if !ok {
			continue
		}
		if err := s.images.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to remove product image")
		}
	}
}

func droppedImages(before, after []string) []string {
	kept := make(map[string]bool, len(after))
	for _, url := range after {
		kept[url] = true
	}
	var dropped []string
	for _, url := range before {
		if !kept[url] {
			dropped = append(dropped, url)
		}
	}
	return dropped
}

// uniqueSlug slugifies name and appends -2, -3... until the slug is free.
func (s *ProductManagementService) uniqueSlug(ctx context.Context, name string, excludeID int) (string, error) {
	base := catalog.Slugify(name)
	if base == "" {
		base = "product"
	}
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := base
		if n > 1 {
			candidate = fmt.Sprintf("%s-%d", base, n)
		}
		taken, err := s.productRepo.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return base + "-" + uuid.NewString()[:8], nil
}

func buildVariants(in []VariantInput, keepIDs bool) ([]models.Variant, error) {
	seen := make(map[string]bool, len(in))
	out := make([]models.Variant, 0, len(in))
	for i, v := range in {
		name := strings.TrimSpace(v.Name)
		sku := strings.TrimSpace(v.SKU)
		switch {
		case name == "" || sku == "":
			return nil, utils.NewInvalid(fmt.Sprintf("Variant %d: name and sku are required", i+1))
		case !v.Price.IsPositive():
			return nil, utils.NewInvalid(fmt.Sprintf("Variant %d: price must be greater than 0", i+1))
		case v.Stock < 0:
			return nil, utils.NewInvalid(fmt.Sprintf("Variant %d: stock cannot be negative", i+1))
		}
		key := strings.ToUpper(sku)
		if seen[key] {
			return nil, utils.ErrSKUExists.WithMessage("Duplicate SKU in request: " + sku)
		}
		seen[key] = true

		variant := models.Variant{Name: name, SKU: sku, Price: v.Price, Stock: v.Stock}
		if keepIDs {
			variant.ID = v.ID
		}
		out = append(out, variant)
	}
	return out, nil
}

func parseProductStatus(raw string, def models.ProductStatus) (models.ProductStatus, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	switch models.ProductStatus(raw) {
	case "":
		return def, nil
	case models.ProductStatusActive, models.ProductStatusInactive:
		return models.ProductStatus(raw), nil
	}
	return "", utils.NewInvalid("Status must be ACTIVE or INACTIVE")
}

func mapProductErr(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return utils.ErrProductNotFound
	case errors.Is(err, repository.ErrDuplicateSKU):
		return utils.ErrSKUExists.Wrap(err)
	}
	return err
}
