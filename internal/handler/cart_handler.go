package handler

import (
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GTDGit/toystore_api/internal/service"
	"github.com/GTDGit/toystore_api/internal/utils"
)

// CartIDHeader carries the anonymous cart id between the storefront and the API.
const CartIDHeader = "X-Cart-Id"

var cartIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// CartHandler exposes the persisted storefront cart.
type CartHandler struct {
	cartService *service.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// cartID returns the caller's cart id, issuing a new one when the header is
// absent. The id is always echoed back in the response header.
func cartID(c *gin.Context) (string, bool) {
	id := c.GetHeader(CartIDHeader)
	if id == "" {
		id = uuid.NewString()
	} else if !cartIDPattern.MatchString(id) {
		utils.Error(c, 400, "INVALID_CART_ID", "Invalid cart id")
		return "", false
	}
	c.Header(CartIDHeader, id)
	return id, true
}

func variantParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("variantId"))
	if err != nil || id <= 0 {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid variant id")
		return 0, false
	}
	return id, true
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	id, ok := cartID(c)
	if !ok {
		return
	}
	view, err := h.cartService.Get(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Cart retrieved", view)
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req struct {
		VariantID int `json:"variantId" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "variantId is required")
		return
	}
	id, ok := cartID(c)
	if !ok {
		return
	}
	view, err := h.cartService.AddItem(c.Request.Context(), id, req.VariantID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Item added to cart", view)
}

// UpdateItem handles PUT /api/cart/items/:variantId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	variantID, ok := variantParam(c)
	if !ok {
		return
	}
	var req struct {
		Qty *int `json:"qty" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "qty is required")
		return
	}
	id, ok := cartID(c)
	if !ok {
		return
	}
	view, err := h.cartService.UpdateQty(c.Request.Context(), id, variantID, *req.Qty)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Cart updated", view)
}

// RemoveItem handles DELETE /api/cart/items/:variantId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	variantID, ok := variantParam(c)
	if !ok {
		return
	}
	id, ok := cartID(c)
	if !ok {
		return
	}
	view, err := h.cartService.RemoveItem(c.Request.Context(), id, variantID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Item removed from cart", view)
}

// ClearCart handles DELETE /api/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	id, ok := cartID(c)
	if !ok {
		return
	}
	view, err := h.cartService.Clear(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Cart cleared", view)
}
