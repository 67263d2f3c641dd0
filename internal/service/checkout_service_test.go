package service

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/toystore_api/internal/cart"
	"github.com/GTDGit/toystore_api/internal/models"
	"github.com/GTDGit/toystore_api/internal/repository"
	"github.com/GTDGit/toystore_api/internal/utils"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		method   string
		subtotal int64
		shipping string
		tax      string
		total    string
	}{
		{"express", 800000, "50000", "88000", "938000"},
		{"regular", 800000, "0", "88000", "888000"},
		{"overnight", 100000, "150000", "11000", "261000"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			got, err := ComputeTotals(decimal.NewFromInt(tt.subtotal), tt.method)
			require.NoError(t, err)
			assert.Equal(t, tt.shipping, got.ShippingCost.String())
			assert.Equal(t, tt.tax, got.Tax.String())
			assert.Equal(t, tt.total, got.Total.String())
			assert.True(t, got.Total.Equal(got.Subtotal.Add(got.ShippingCost).Add(got.Tax)))
		})
	}
}

func TestComputeTotals_RoundsTaxToCents(t *testing.T) {
	got, err := ComputeTotals(decimal.RequireFromString("99.99"), "regular")
	require.NoError(t, err)
	assert.Equal(t, "11", got.Tax.String())
	assert.Equal(t, "110.99", got.Total.String())
}

func TestComputeTotals_UnknownMethod(t *testing.T) {
	_, err := ComputeTotals(decimal.NewFromInt(1), "teleport")
	assert.ErrorIs(t, err, utils.ErrInvalidShippingMethod)
}

type checkoutFixture struct {
	svc      *CheckoutService
	carts    *cart.Store
	variants *fakeVariants
	orders   *fakeOrders
	inv      *countingInvalidator
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		carts: cart.NewStore(cart.NewMemoryStorage()),
		variants: &fakeVariants{details: map[int]models.VariantDetail{
			1: variantDetail(1, "Robot", 400000, 5),
			2: variantDetail(2, "Kite", 50000, 1),
		}},
		orders: newFakeOrders(),
		inv:    &countingInvalidator{},
	}
	f.svc = NewCheckoutService(f.carts, f.variants, f.orders, f.inv)
	f.svc.now = func() time.Time { return time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC) }
	return f
}

func (f *checkoutFixture) fill(t *testing.T, cartID string, variantID, qty int, price int64) {
	t.Helper()
	_, err := f.carts.Update(context.Background(), cartID, func(c *cart.Cart) error {
		c.AddItem(cart.Item{VariantID: variantID, Name: "stale", Price: decimal.NewFromInt(price)})
		c.UpdateQty(variantID, qty)
		return nil
	})
	require.NoError(t, err)
}

func validCheckout() *CheckoutRequest {
	return &CheckoutRequest{
		FirstName:      "Siti",
		LastName:       "Rahma",
		Email:          " Siti@Example.com ",
		Phone:          "081234567890",
		Address:        "Jl. Merdeka 1",
		City:           "Bandung",
		Province:       "Jawa Barat",
		PostalCode:     "40111",
		ShippingMethod: "express",
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	// The cart holds a stale price; checkout reprices from the catalog.
	f.fill(t, "c1", 1, 2, 1)

	order, err := f.svc.PlaceOrder(ctx, "c1", validCheckout())
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^ORD-20260315-[0-9A-F]{8}$`), order.OrderNumber)
	assert.Equal(t, "800000", order.Subtotal.String())
	assert.Equal(t, "50000", order.ShippingCost.String())
	assert.Equal(t, "88000", order.Tax.String())
	assert.Equal(t, "938000", order.Total.String())
	assert.Equal(t, "cod", order.PaymentMethod)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "siti@example.com", order.CustomerEmail)

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.Equal(t, "Robot - Standard", item.Name)
	assert.Equal(t, 2, item.Quantity)
	require.NotNil(t, item.VariantID)
	assert.Equal(t, 1, *item.VariantID)
	assert.Equal(t, 10, item.ProductID)

	require.Len(t, f.orders.customers, 1)
	assert.Equal(t, "Siti Rahma", f.orders.customers[0].Name)

	c, err := f.carts.Get(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 1, f.inv.calls)
}

func TestPlaceOrder_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *CheckoutRequest)
		want   error
	}{
		{"missing email", func(r *CheckoutRequest) { r.Email = " " }, utils.ErrInvalidRequest},
		{"bad email", func(r *CheckoutRequest) { r.Email = "not-an-email" }, utils.ErrInvalidRequest},
		{"unknown shipping", func(r *CheckoutRequest) { r.ShippingMethod = "drone" }, utils.ErrInvalidShippingMethod},
		{"unknown payment", func(r *CheckoutRequest) { r.PaymentMethod = "crypto" }, utils.ErrInvalidPaymentMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture()
			f.fill(t, "c1", 1, 1, 1)
			req := validCheckout()
			tt.mutate(req)

			_, err := f.svc.PlaceOrder(context.Background(), "c1", req)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.orders.orders)
		})
	}
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newCheckoutFixture()
	_, err := f.svc.PlaceOrder(context.Background(), "nobody", validCheckout())
	assert.ErrorIs(t, err, utils.ErrEmptyCart)
}

func TestPlaceOrder_AgeGate(t *testing.T) {
	f := newCheckoutFixture()
	d := f.variants.details[1]
	d.AgeRating = models.AgeRatingAdult
	f.variants.details[1] = d
	f.fill(t, "c1", 1, 1, 1)

	_, err := f.svc.PlaceOrder(context.Background(), "c1", validCheckout())
	assert.ErrorIs(t, err, utils.ErrAgeConfirmationRequired)

	req := validCheckout()
	req.AgeConfirmed = true
	_, err = f.svc.PlaceOrder(context.Background(), "c1", req)
	assert.NoError(t, err)
}

func TestPlaceOrder_InactiveProduct(t *testing.T) {
	f := newCheckoutFixture()
	d := f.variants.details[1]
	d.ProductStatus = models.ProductStatusInactive
	f.variants.details[1] = d
	f.fill(t, "c1", 1, 1, 1)

	_, err := f.svc.PlaceOrder(context.Background(), "c1", validCheckout())
	assert.ErrorIs(t, err, utils.ErrProductUnavailable)

	c, _ := f.carts.Get(context.Background(), "c1")
	assert.False(t, c.IsEmpty(), "cart is kept when checkout fails")
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	f := newCheckoutFixture()
	f.fill(t, "c1", 2, 3, 1)

	_, err := f.svc.PlaceOrder(context.Background(), "c1", validCheckout())
	assert.ErrorIs(t, err, utils.ErrInsufficientStock)
	assert.Empty(t, f.orders.orders)
}

func TestPlaceOrder_StockRaceLostInTransaction(t *testing.T) {
	f := newCheckoutFixture()
	f.fill(t, "c1", 1, 1, 1)
	f.orders.createErr = fmt.Errorf("decrement: %w", &repository.StockError{VariantID: 1})

	_, err := f.svc.PlaceOrder(context.Background(), "c1", validCheckout())
	require.ErrorIs(t, err, utils.ErrInsufficientStock)

	ae, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Contains(t, ae.Message, "Robot")
	assert.Equal(t, 0, f.inv.calls)
}

func TestCheckoutOptions(t *testing.T) {
	opts := newCheckoutFixture().svc.Options()
	require.Len(t, opts.ShippingMethods, 3)
	assert.Equal(t, "Express Shipping", opts.ShippingMethods[1].Name)
	assert.Equal(t, "Cash on Delivery", opts.PaymentMethods[0].Name)
	assert.Equal(t, "0.11", opts.TaxRate.String())
}
