package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/toystore_api/internal/catalog"
	"github.com/GTDGit/toystore_api/internal/models"
	"github.com/GTDGit/toystore_api/internal/service"
	"github.com/GTDGit/toystore_api/internal/utils"
)

// ProductHandler serves the public catalog.
type ProductHandler struct {
	catalogService *service.CatalogService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(catalogService *service.CatalogService) *ProductHandler {
	return &ProductHandler{catalogService: catalogService}
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter := catalog.Filter{
		Category: strings.TrimSpace(c.Query("category")),
		InStock:  c.Query("inStock") == "true",
		Search:   strings.TrimSpace(c.Query("search")),
	}

	var err error
	if filter.MinPrice, err = parsePrice(c.Query("minPrice")); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "minPrice must be a number")
		return
	}
	if filter.MaxPrice, err = parsePrice(c.Query("maxPrice")); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "maxPrice must be a number")
		return
	}

	page := 1
	if p, err := strconv.Atoi(c.Query("page")); err == nil {
		page = p
	}

	result, err := h.catalogService.ListProducts(c.Request.Context(), filter, page)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessWithPagination(c, 200, "Products retrieved", result.Items, result.Page, result.PageSize, result.TotalItems)
}

// GetProduct handles GET /api/products/:slug
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Product retrieved", product)
}

// NewProducts handles GET /api/products/new
func (h *ProductHandler) NewProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	products, err := h.catalogService.NewProducts(c.Request.Context(), limit)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "New products retrieved", products)
}

// Categories handles GET /api/categories
func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.catalogService.Categories(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if categories == nil {
		categories = []models.CategorySummary{}
	}
	utils.Success(c, 200, "Categories retrieved", categories)
}

func parsePrice(raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
