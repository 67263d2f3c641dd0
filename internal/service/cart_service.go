package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/toystore_api/internal/cart"
	"github.com/GTDGit/toystore_api/internal/models"
	"github.com/GTDGit/toystore_api/internal/utils"
)

// CartView is the cart as returned to the storefront.
type CartView struct {
	CartID     string          `json:"cartId"`
	Items      []cart.Item     `json:"items"`
	TotalQty   int             `json:"totalQty"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func newCartView(cartID string, c *cart.Cart) *CartView {
	items := c.Items
	if items == nil {
		items = []cart.Item{}
	}
	return &CartView{
		CartID:     cartID,
		Items:      items,
		TotalQty:   c.TotalQty(),
		TotalPrice: c.TotalPrice(),
	}
}

// CartService resolves variants from the catalog and keeps carts in the cart store.
// Prices and names always come from the database, never from the client.
type CartService struct {
	store    *cart.Store
	variants VariantStore
}

// NewCartService constructs a CartService.
func NewCartService(store *cart.Store, variants VariantStore) *CartService {
	return &CartService{store: store, variants: variants}
}

func (s *CartService) Get(ctx context.Context, cartID string) (*CartView, error) {
	c, err := s.store.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return newCartView(cartID, c), nil
}

// AddItem adds one unit of variantID.
func (s *CartService) AddItem(ctx context.Context, cartID string, variantID int) (*CartView, error) {
	detail, err := s.purchasableVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}

	c, err := s.store.Update(ctx, cartID, func(c *cart.Cart) error {
		if c.ItemQty(variantID)+1 > detail.Stock {
			return utils.ErrInsufficientStock
		}
		c.AddItem(itemFromDetail(detail))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newCartView(cartID, c), nil
}

// UpdateQty sets the quantity of a line; zero or less removes it.
func (s *CartService) UpdateQty(ctx context.Context, cartID string, variantID, qty int) (*CartView, error) {
	var detail *models.VariantDetail
	if qty > 0 {
		var err error
		if detail, err = s.purchasableVariant(ctx, variantID); err != nil {
			return nil, err
		}
	}

	c, err := s.store.Update(ctx, cartID, func(c *cart.Cart) error {
		if detail != nil && qty > c.ItemQty(variantID) && qty > detail.Stock {
			return utils.ErrInsufficientStock
		}
		c.UpdateQty(variantID, qty)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newCartView(cartID, c), nil
}

func (s *CartService) RemoveItem(ctx context.Context, cartID string, variantID int) (*CartView, error) {
	c, err := s.store.Update(ctx, cartID, func(c *cart.Cart) error {
		c.RemoveItem(variantID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newCartView(cartID, c), nil
}

func (s *CartService) Clear(ctx context.Context, cartID string) (*CartView, error) {
	if err := s.store.Clear(ctx, cartID); err != nil {
		return nil, err
	}
	return newCartView(cartID, &cart.Cart{}), nil
}

func (s *CartService) purchasableVariant(ctx context.Context, variantID int) (*models.VariantDetail, error) {
	detail, err := s.variants.GetDetail(ctx, variantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrVariantNotFound
		}
		return nil, err
	}
	if detail.ProductStatus != models.ProductStatusActive {
		return nil, utils.ErrProductUnavailable
	}
	return detail, nil
}

func itemFromDetail(d *models.VariantDetail) cart.Item {
	image := ""
	if len(d.Images) > 0 {
		image = d.Images[0]
	}
	return cart.Item{
		VariantID:   d.ID,
		SKU:         d.SKU,
		Name:        d.ProductName,
		Price:       d.Price,
		Image:       image,
		ProductSlug: d.ProductSlug,
		Category:    d.ProductCategory,
	}
}
