package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates order states.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions lists the statuses reachable from each status.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order may move from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s.
func (s OrderStatus) NextStatuses() []OrderStatus {
	return append([]OrderStatus(nil), orderTransitions[s]...)
}

// Order is a placed customer order. Money columns are frozen at checkout.
type Order struct {
	ID               int             `db:"id" json:"id"`
	OrderNumber      string          `db:"order_number" json:"orderNumber"`
	UserID           *int            `db:"user_id" json:"-"`
	CustomerName     string          `db:"customer_name" json:"customerName"`
	CustomerEmail    string          `db:"customer_email" json:"customerEmail"`
	CustomerPhone    string          `db:"customer_phone" json:"customerPhone"`
	ShippingAddress  string          `db:"shipping_address" json:"shippingAddress"`
	ShippingCity     string          `db:"shipping_city" json:"shippingCity"`
	ShippingProvince string          `db:"shipping_province" json:"shippingProvince"`
	ShippingPostal   string          `db:"shipping_postal" json:"shippingPostalCode"`
	ShippingMethod   string          `db:"shipping_method" json:"shippingMethod"`
	PaymentMethod    string          `db:"payment_method" json:"paymentMethod"`
	Subtotal         decimal.Decimal `db:"subtotal" json:"subtotal"`
	ShippingCost     decimal.Decimal `db:"shipping_cost" json:"shippingCost"`
	Tax              decimal.Decimal `db:"tax" json:"tax"`
	Total            decimal.Decimal `db:"total" json:"total"`
	Status           OrderStatus     `db:"status" json:"status"`
	AWBNumber        *string         `db:"awb_number" json:"awbNumber,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updatedAt"`

	Items   []OrderItem          `db:"-" json:"items,omitempty"`
	History []OrderStatusHistory `db:"-" json:"history,omitempty"`
}

// OrderItem is a line of an order with the price paid per unit.
type OrderItem struct {
	ID        int             `db:"id" json:"id"`
	OrderID   int             `db:"order_id" json:"-"`
	ProductID int             `db:"product_id" json:"productId"`
	VariantID *int            `db:"variant_id" json:"variantId"`
	Name      string          `db:"name" json:"name"`
	SKU       string          `db:"sku" json:"sku"`
	Quantity  int             `db:"quantity" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"`
}

// LineTotal returns price × quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderStatusHistory is one entry of the tracking timeline.
type OrderStatusHistory struct {
	ID        int         `db:"id" json:"-"`
	OrderID   int         `db:"order_id" json:"-"`
	Status    OrderStatus `db:"status" json:"status"`
	Note      string      `db:"note" json:"note,omitempty"`
	CreatedAt time.Time   `db:"created_at" json:"timestamp"`
}
