package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/toystore_api/internal/service"
	"github.com/GTDGit/toystore_api/internal/utils"
)

// ProductManagementHandler handles product CRUD HTTP endpoints.
type ProductManagementHandler struct {
	productMgmtService *service.ProductManagementService
}

// NewProductManagementHandler constructs a ProductManagementHandler.
func NewProductManagementHandler(productMgmtService *service.ProductManagementService) *ProductManagementHandler {
	return &ProductManagementHandler{productMgmtService: productMgmtService}
}

// ListProducts handles GET /api/admin/products
func (h *ProductManagementHandler) ListProducts(c *gin.Context) {
	rows, err := h.productMgmtService.ListProducts(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Products retrieved", rows)
}

// CreateProduct handles POST /api/admin/products
func (h *ProductManagementHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product, err := h.productMgmtService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 201, "Product created successfully", product)
}

// GetProduct handles GET /api/admin/products/:id
func (h *ProductManagementHandler) GetProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	product, err := h.productMgmtService.GetProduct(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Product retrieved", product)
}

// UpdateProduct handles PUT /api/admin/products/:id
func (h *ProductManagementHandler) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product, err := h.productMgmtService.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Product updated successfully", product)
}

// DeleteProduct handles DELETE /api/admin/products/:id
func (h *ProductManagementHandler) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	deactivated, err := h.productMgmtService.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	msg := "Product deleted successfully"
	if deactivated {
		msg = "Product has orders and was deactivated instead of deleted"
	}
	utils.Success(c, 200, msg, gin.H{"id": id, "deactivated": deactivated})
}
