package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/toystore_api/internal/repository"
	"github.com/GTDGit/toystore_api/internal/service"
	"github.com/GTDGit/toystore_api/internal/utils"
)

// OrderHandler handles admin order management and public tracking.
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// ListOrders handles GET /api/admin/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter := &repository.AdminOrderFilter{Page: 1, Limit: 20}

	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("search"); v != "" {
		filter.Search = &v
	}
	if v := c.Query("startDate"); v != "" {
		filter.StartDate = &v
	}
	if v := c.Query("endDate"); v != "" {
		filter.EndDate = &v
	}
	if page := c.Query("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil {
			filter.Page = p
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			filter.Limit = l
		}
	}

	result, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessWithPagination(c, 200, "Orders retrieved", result.Orders, result.Page, result.Limit, result.TotalItems)
}

// GetOrder handles GET /api/admin/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	order, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Order retrieved", order)
}

// UpdateOrder handles PUT /api/admin/orders/:id
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "status is required")
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Order updated", order)
}

// Track handles GET /api/orders/track
func (h *OrderHandler) Track(c *gin.Context) {
	var q service.TrackingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid query")
		return
	}
	result, err := h.orderService.Track(c.Request.Context(), q)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Order found", result)
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid id")
		return 0, false
	}
	return id, true
}
