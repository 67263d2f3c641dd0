package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/toystore_api/internal/cart"
	"github.com/GTDGit/toystore_api/internal/models"
	"github.com/GTDGit/toystore_api/internal/repository"
	"github.com/GTDGit/toystore_api/internal/utils"
)

// TaxRate is the VAT applied to the order subtotal.
var TaxRate = decimal.RequireFromString("0.11")

// ShippingOption is a delivery method offered at checkout.
type ShippingOption struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Cost decimal.Decimal `json:"price"`
	Days string          `json:"days"`
}

// PaymentOption is a payment method offered at checkout.
type PaymentOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var shippingOptions = []ShippingOption{
	{ID: "regular", Name: "Regular Shipping", Cost: decimal.Zero, Days: "3-5 business days"},
	{ID: "express", Name: "Express Shipping", Cost: decimal.NewFromInt(50000), Days: "1-2 business days"},
	{ID: "overnight", Name: "Overnight Shipping", Cost: decimal.NewFromInt(150000), Days: "Next business day"},
}

var paymentOptions = []PaymentOption{
	{ID: "cod", Name: "Cash on Delivery", Description: "Pay when you receive your order"},
	{ID: "bank", Name: "Bank Transfer", Description: "Transfer to our bank account"},
	{ID: "ewallet", Name: "E-Wallet", Description: "Pay with a supported e-wallet"},
}

// CheckoutOptions lists the shipping and payment choices.
type CheckoutOptions struct {
	ShippingMethods []ShippingOption `json:"shippingMethods"`
	PaymentMethods  []PaymentOption  `json:"paymentMethods"`
	TaxRate         decimal.Decimal  `json:"taxRate"`
}

// Totals are the money fields of an order.
type Totals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
}

func findShipping(method string) (ShippingOption, bool) {
	for _, opt := range shippingOptions {
		if opt.ID == method {
			return opt, true
		}
	}
	return ShippingOption{}, false
}

func validPayment(method string) bool {
	for _, opt := range paymentOptions {
		if opt.ID == method {
			return true
		}
	}
	return false
}

// ComputeTotals prices an order: total = subtotal + shipping + 11% of subtotal.
// Tax is rounded to cents so the stored columns add up exactly.
func ComputeTotals(subtotal decimal.Decimal, shippingMethod string) (Totals, error) {
	opt, ok := findShipping(shippingMethod)
	if !ok {
		return Totals{}, utils.ErrInvalidShippingMethod
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	return Totals{
		Subtotal:     subtotal,
		ShippingCost: opt.Cost,
		Tax:          tax,
		Total:        subtotal.Add(opt.Cost).Add(tax),
	}, nil
}

// CheckoutRequest is the checkout form.
type CheckoutRequest struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	City           string `json:"city"`
	Province       string `json:"province"`
	PostalCode     string `json:"postalCode"`
	ShippingMethod string `json:"shippingMethod"`
	PaymentMethod  string `json:"paymentMethod"`
	AgeConfirmed   bool   `json:"ageConfirmed"`
}

func (r *CheckoutRequest) normalize() {
	for _, f := range []*string{&r.FirstName, &r.LastName, &r.Email, &r.Phone, &r.Address, &r.City, &r.Province, &r.PostalCode} {
		*f = strings.TrimSpace(*f)
	}
	r.Email = strings.ToLower(r.Email)
	if r.ShippingMethod == "" {
		r.ShippingMethod = "regular"
	}
	if r.PaymentMethod == "" {
		r.PaymentMethod = "cod"
	}
}

func (r *CheckoutRequest) validate() error {
	required := []struct{ name, value string }{
		{"firstName", r.FirstName},
		{"lastName", r.LastName},
		{"email", r.Email},
		{"phone", r.Phone},
		{"address", r.Address},
		{"city", r.City},
		{"province", r.Province},
		{"postalCode", r.PostalCode},
	}
	var missing []string
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return utils.NewInvalid("Missing required fields: " + strings.Join(missing, ", "))
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return utils.NewInvalid("Invalid email address")
	}
	if _, ok := findShipping(r.ShippingMethod); !ok {
		return utils.ErrInvalidShippingMethod
	}
	if !validPayment(r.PaymentMethod) {
		return utils.ErrInvalidPaymentMethod
	}
	return nil
}

// CheckoutService turns a cart into an order.
type CheckoutService struct {
	carts     *cart.Store
	variants  VariantStore
	orders    OrderStore
	dashboard Invalidator
	now       func() time.Time
}

// NewCheckoutService constructs a CheckoutService. dashboard may be nil.
func NewCheckoutService(carts *cart.Store, variants VariantStore, orders OrderStore, dashboard Invalidator) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		variants:  variants,
		orders:    orders,
		dashboard: dashboard,
		now:       time.Now,
	}
}

// Options returns the checkout choices.
func (s *CheckoutService) Options() CheckoutOptions {
	return CheckoutOptions{
		ShippingMethods: append([]ShippingOption(nil), shippingOptions...),
		PaymentMethods:  append([]PaymentOption(nil), paymentOptions...),
		TaxRate:         TaxRate,
	}
}

// PlaceOrder validates the form, reprices the cart from the catalog, stores the
// order (decrementing stock atomically) and clears the cart.
func (s *CheckoutService) PlaceOrder(ctx context.Context, cartID string, req *CheckoutRequest) (*models.Order, error) {
	req.normalize()
	if err := req.validate(); err != nil {
		return nil, err
	}

	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, utils.ErrEmptyCart
	}

	ids := make([]int, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.VariantID
	}
	details, err := s.variants.GetDetails(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(c.Items))
	subtotal := decimal.Zero
	for _, it := range c.Items {
		d, ok := details[it.VariantID]
		if !ok || d.ProductStatus != models.ProductStatusActive {
			return nil, utils.ErrProductUnavailable.WithMessage(fmt.Sprintf("%s is no longer available", it.Name))
		}
		if d.AgeRating == models.AgeRatingAdult && !req.AgeConfirmed {
			return nil, utils.ErrAgeConfirmationRequired
		}
		if it.Qty > d.Stock {
			return nil, insufficientStock(d.ProductName, d.Name)
		}
		variantID := d.ID
		item := models.OrderItem{
			ProductID: d.ProductID,
			VariantID: &variantID,
			Name:      d.ProductName + " - " + d.Name,
			SKU:       d.SKU,
			Quantity:  it.Qty,
			Price:     d.Price,
		}
		subtotal = subtotal.Add(item.LineTotal())
		items = append(items, item)
	}

	totals, err := ComputeTotals(subtotal, req.ShippingMethod)
	if err != nil {
		return nil, err
	}

	customerName := req.FirstName + " " + req.LastName
	order := &models.Order{
		OrderNumber:      s.newOrderNumber(),
		CustomerName:     customerName,
		CustomerEmail:    req.Email,
		CustomerPhone:    req.Phone,
		ShippingAddress:  req.Address,
		ShippingCity:     req.City,
		ShippingProvince: req.Province,
		ShippingPostal:   req.PostalCode,
		ShippingMethod:   req.ShippingMethod,
		PaymentMethod:    req.PaymentMethod,
		Subtotal:         totals.Subtotal,
		ShippingCost:     totals.ShippingCost,
		Tax:              totals.Tax,
		Total:            totals.Total,
		Status:           models.OrderStatusPending,
		Items:            items,
	}
	customer := &models.User{Email: req.Email, Name: customerName, Phone: req.Phone}

	if err := s.orders.Create(ctx, order, customer); err != nil {
		var stockErr *repository.StockError
		if errors.As(err, &stockErr) {
			for _, it := range items {
				if it.VariantID != nil && *it.VariantID == stockErr.VariantID {
					d := details[stockErr.VariantID]
					return nil, insufficientStock(d.ProductName, d.Name)
				}
			}
			return nil, utils.ErrInsufficientStock
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	log.Info().
		Str("order_number", order.OrderNumber).
		Str("total", order.Total.StringFixed(2)).
		Int("items", len(order.Items)).
		Msg("Order placed")

	if err := s.carts.Clear(ctx, cartID); err != nil {
		log.Error().Err(err).Str("order_number", order.OrderNumber).Msg("Failed to clear cart after checkout")
	}
	invalidate(ctx, s.dashboard)

	return order, nil
}

// newOrderNumber returns ORD-YYYYMMDD-XXXXXXXX using the WIB calendar date.
func (s *CheckoutService) newOrderNumber() string {
	wib := time.FixedZone("WIB", 7*3600)
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", s.now().In(wib).Format("20060102"), suffix)
}

func insufficientStock(product, variant string) error {
	return utils.ErrInsufficientStock.WithMessage(fmt.Sprintf("Insufficient stock for %s - %s", product, variant))
}

func invalidate(ctx context.Context, inv Invalidator) {
	if inv == nil {
		return
	}
	if err := inv.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate dashboard cache")
	}
}
