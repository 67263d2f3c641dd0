package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/toystore_api/internal/models"
	"github.com/GTDGit/toystore_api/internal/repository"
	"github.com/GTDGit/toystore_api/internal/utils"
)

// OrderService serves admin order management and public order tracking.
type OrderService struct {
	orders    OrderStore
	dashboard Invalidator
}

// NewOrderService constructs an OrderService. dashboard may be nil.
func NewOrderService(orders OrderStore, dashboard Invalidator) *OrderService {
	return &OrderService{orders: orders, dashboard: dashboard}
}

// UpdateStatusRequest is the admin order update body.
type UpdateStatusRequest struct {
	Status    string `json:"status" binding:"required"`
	AWBNumber string `json:"awbNumber"`
	Note      string `json:"note"`
}

// List returns a filtered page of orders.
func (s *OrderService) List(ctx context.Context, filter *repository.AdminOrderFilter) (*repository.AdminOrderResult, error) {
	if filter.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*filter.Status))
		if !models.OrderStatus(status).Valid() {
			return nil, utils.NewInvalid("Unknown order status: " + *filter.Status)
		}
		filter.Status = &status
	}
	for _, d := range []*string{filter.StartDate, filter.EndDate} {
		if d == nil {
			continue
		}
		if _, err := time.Parse(time.DateOnly, *d); err != nil {
			return nil, utils.NewInvalid("Dates must use the YYYY-MM-DD format")
		}
	}
	return s.orders.GetAllAdmin(ctx, filter)
}

// Get returns an order with items and status history.
func (s *OrderService) Get(ctx context.Context, id int) (*models.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, mapOrderErr(err)
	}
	return o, nil
}

// UpdateStatus moves an order along its lifecycle. The transition is checked
// against the locked row so concurrent updates cannot skip a state.
func (s *OrderService) UpdateStatus(ctx context.Context, id int, req *UpdateStatusRequest) (*models.Order, error) {
	next := models.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !next.Valid() {
		return nil, utils.NewInvalid("Unknown order status: " + req.Status)
	}
	awb := strings.TrimSpace(req.AWBNumber)

	order, err := s.orders.UpdateStatus(ctx, id, func(o *models.Order) (*repository.StatusChange, error) {
		if !o.Status.CanTransitionTo(next) {
			return nil, utils.ErrInvalidStatusTransition.WithMessage(
				fmt.Sprintf("Cannot change order status from %s to %s", o.Status, next))
		}
		change := &repository.StatusChange{Status: next, Note: strings.TrimSpace(req.Note)}
		if awb != "" {
			change.AWBNumber = &awb
		}
		if next == models.OrderStatusShipped && change.AWBNumber == nil && (o.AWBNumber == nil || *o.AWBNumber == "") {
			return nil, utils.ErrAWBRequired
		}
		if next == models.OrderStatusCancelled {
			change.Restock = true
		}
		return change, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateAWB) {
			return nil, utils.ErrAWBExists
		}
		return nil, mapOrderErr(err)
	}

	log.Info().
		Int("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("status", string(order.Status)).
		Msg("Order status updated")

	invalidate(ctx, s.dashboard)
	return order, nil
}

// TrackingQuery identifies an order by AWB or by order number plus email.
type TrackingQuery struct {
	AWB         string `form:"awb"`
	OrderNumber string `form:"orderNumber"`
	Email       string `form:"email"`
}

// TrackingResult is the public view of an order.
type TrackingResult struct {
	OrderNumber    string                      `json:"orderNumber"`
	Status         models.OrderStatus          `json:"status"`
	AWBNumber      *string                     `json:"awbNumber"`
	ShippingMethod string                      `json:"shippingMethod"`
	Items          []models.OrderItem          `json:"items"`
	Totals         Totals                      `json:"totals"`
	History        []models.OrderStatusHistory `json:"history"`
	CreatedAt      time.Time                   `json:"createdAt"`
}

// Track looks up an order for a customer. Unknown orders and mismatched
// emails are both reported as not found.
func (s *OrderService) Track(ctx context.Context, q TrackingQuery) (*TrackingResult, error) {
	awb := strings.TrimSpace(q.AWB)
	number := strings.TrimSpace(q.OrderNumber)
	email := strings.TrimSpace(q.Email)

	var (
		o   *models.Order
		err error
	)
	switch {
	case awb != "":
		o, err = s.orders.GetByAWB(ctx, awb)
	case number != "" && email != "":
		o, err = s.orders.GetByNumberAndEmail(ctx, number, email)
	default:
		return nil, utils.NewInvalid("Provide an AWB number, or an order number and email")
	}
	if err != nil {
		return nil, mapOrderErr(err)
	}

	return &TrackingResult{
		OrderNumber:    o.OrderNumber,
		Status:         o.Status,
		AWBNumber:      o.AWBNumber,
		ShippingMethod: o.ShippingMethod,
		Items:          o.Items,
		Totals: Totals{
			Subtotal:     o.Subtotal,
			ShippingCost: o.ShippingCost,
			Tax:          o.Tax,
			Total:        o.Total,
		},
		History:   o.History,
		CreatedAt: o.CreatedAt,
	}, nil
}

func mapOrderErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return utils.ErrOrderNotFound
	}
	return err
}
