package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/toystore_api/internal/service"
	"github.com/GTDGit/toystore_api/internal/utils"
)

// CheckoutHandler turns the caller's cart into an order.
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Options handles GET /api/checkout/options
func (h *CheckoutHandler) Options(c *gin.Context) {
	utils.Success(c, 200, "Checkout options retrieved", h.checkoutService.Options())
}

// PlaceOrder handles POST /api/checkout
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	id := c.GetHeader(CartIDHeader)
	if id == "" || !cartIDPattern.MatchString(id) {
		utils.HandleError(c, utils.ErrEmptyCart)
		return
	}

	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	order, err := h.checkoutService.PlaceOrder(c.Request.Context(), id, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, 201, "Order placed successfully", order)
}
