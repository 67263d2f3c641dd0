package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/toystore_api/internal/database"
	"github.com/GTDGit/toystore_api/internal/models"
)

const orderColumns = `id, order_number, user_id, customer_name, customer_email, customer_phone,
        shipping_address, shipping_city, shipping_province, shipping_postal, shipping_method,
        payment_method, subtotal, shipping_cost, tax, total, status, awb_number, created_at, updated_at`

// OrderRepository handles data access for orders, their items and history.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create places an order in one transaction: the customer is upserted, the
// order and items inserted, stock decremented per item, and the first history
// entry and an order.placed event written. Any failure rolls everything back;
// a short variant yields a *StockError.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order, customer *models.User) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := upsertUser(ctx, tx, customer); err != nil {
			return fmt.Errorf("upsert customer: %w", err)
		}
		o.UserID = &customer.ID

		const q = `
            INSERT INTO orders (order_number, user_id, customer_name, customer_email, customer_phone,
                shipping_address, shipping_city, shipping_province, shipping_postal, shipping_method,
                payment_method, subtotal, shipping_cost, tax, total, status)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
            RETURNING id, created_at, updated_at`
		err := tx.QueryRowxContext(ctx, q,
			o.OrderNumber, o.UserID, o.CustomerName, o.CustomerEmail, o.CustomerPhone,
			o.ShippingAddress, o.ShippingCity, o.ShippingProvince, o.ShippingPostal, o.ShippingMethod,
			o.PaymentMethod, o.Subtotal, o.ShippingCost, o.Tax, o.Total, o.Status,
		).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		const itemQ = `
            INSERT INTO order_items (order_id, product_id, variant_id, name, sku, quantity, price)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
            RETURNING id`
		for i := range o.Items {
			it := &o.Items[i]
			it.OrderID = o.ID
			if it.VariantID != nil {
				if err := decrementStock(ctx, tx, *it.VariantID, it.Quantity); err != nil {
					return err
				}
			}
			err := tx.QueryRowxContext(ctx, itemQ,
				it.OrderID, it.ProductID, it.VariantID, it.Name, it.SKU, it.Quantity, it.Price,
			).Scan(&it.ID)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}

		entry, err := insertHistory(ctx, tx, o.ID, o.Status, "Order placed")
		if err != nil {
			return err
		}
		o.History = []models.OrderStatusHistory{*entry}

		ev, err := models.NewOrderEvent(models.EventOrderPlaced, o, "")
		if err != nil {
			return err
		}
		return insertOrderEvent(ctx, tx, ev)
	})
}

// GetByID returns an order with items and history. Returns sql.ErrNoRows when absent.
func (r *OrderRepository) GetByID(ctx context.Context, id int) (*models.Order, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByAWB returns the order shipped under awb.
func (r *OrderRepository) GetByAWB(ctx context.Context, awb string) (*models.Order, error) {
	return r.getOne(ctx, `WHERE awb_number = $1`, awb)
}

// GetByNumberAndEmail returns an order only when the email matches its customer.
func (r *OrderRepository) GetByNumberAndEmail(ctx context.Context, orderNumber, email string) (*models.Order, error) {
	return r.getOne(ctx, `WHERE order_number = $1 AND LOWER(customer_email) = LOWER($2)`, orderNumber, email)
}

func (r *OrderRepository) getOne(ctx context.Context, where string, args ...interface{}) (*models.Order, error) {
	var o models.Order
	if err := r.db.GetContext(ctx, &o, `SELECT `+orderColumns+` FROM orders `+where+` LIMIT 1`, args...); err != nil {
		return nil, err
	}
	if err := loadOrderChildren(ctx, r.db, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// StatusChange describes a status update decided under the order row lock.
type StatusChange struct {
	Status    models.OrderStatus
	AWBNumber *string
	Note      string
	// Restock returns every item's quantity to its variant.
	Restock bool
}

// UpdateStatus locks the order, asks decide for the change to apply and then
// writes it together with a history entry and an order.status_changed event.
// An error from decide aborts the transaction unchanged.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int, decide func(o *models.Order) (*StatusChange, error)) (*models.Order, error) {
	var order models.Order
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &order, q, id); err != nil {
			return err
		}
		if err := loadOrderChildren(ctx, tx, &order); err != nil {
			return err
		}

		change, err := decide(&order)
		if err != nil {
			return err
		}
		prev := order.Status

		const upd = `
            UPDATE orders SET status = $2, awb_number = COALESCE($3, awb_number), updated_at = NOW()
            WHERE id = $1
            RETURNING awb_number, updated_at`
		err = tx.QueryRowxContext(ctx, upd, order.ID, change.Status, change.AWBNumber).
			Scan(&order.AWBNumber, &order.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err, "idx_orders_awb") {
				return ErrDuplicateAWB
			}
			return fmt.Errorf("update order status: %w", err)
		}
		order.Status = change.Status

		if change.Restock {
			for _, it := range order.Items {
				if it.VariantID == nil {
					continue
				}
				if err := restock(ctx, tx, *it.VariantID, it.Quantity); err != nil {
					return err
				}
			}
		}

		entry, err := insertHistory(ctx, tx, order.ID, order.Status, change.Note)
		if err != nil {
			return err
		}
		order.History = append(order.History, *entry)

		ev, err := models.NewOrderEvent(models.EventOrderStatusChanged, &order, prev)
		if err != nil {
			return err
		}
		return insertOrderEvent(ctx, tx, ev)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// AdminOrderFilter holds filters for admin order queries.
type AdminOrderFilter struct {
	Status    *string
	Search    *string
	StartDate *string
	EndDate   *string
	Page      int
	Limit     int
}

// AdminOrderResult contains paginated order results.
type AdminOrderResult struct {
	Orders     []models.Order
	TotalItems int
	TotalPages int
	Page       int
	Limit      int
}

// GetAllAdmin returns orders for admin with filters and pagination, newest first.
func (r *OrderRepository) GetAllAdmin(ctx context.Context, filter *AdminOrderFilter) (*AdminOrderResult, error) {
	baseQ := `FROM orders WHERE 1=1`

	args := []interface{}{}
	argIdx := 1

	if filter.Status != nil && *filter.Status != "" {
		baseQ += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Search != nil && *filter.Search != "" {
		baseQ += fmt.Sprintf(" AND (order_number ILIKE $%d OR customer_name ILIKE $%d OR customer_email ILIKE $%d)", argIdx, argIdx, argIdx)
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseQ += fmt.Sprintf(" AND created_at >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseQ += fmt.Sprintf(" AND created_at < ($%d::date + interval '1 day')", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQ, args...); err != nil {
		return nil, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	totalPages := (total + filter.Limit - 1) / filter.Limit
	if filter.Page > total/filter.Limit+1 {
		return &AdminOrderResult{
			Orders:     []models.Order{},
			TotalItems: total,
			TotalPages: totalPages,
			Page:       filter.Page,
			Limit:      filter.Limit,
		}, nil
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQ := fmt.Sprintf(`SELECT %s %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		orderColumns, baseQ, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	orders := []models.Order{}
	if err := r.db.SelectContext(ctx, &orders, selectQ, args...); err != nil {
		return nil, err
	}

	return &AdminOrderResult{
		Orders:     orders,
		TotalItems: total,
		TotalPages: totalPages,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// Count returns the number of orders.
func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM orders`)
	return n, err
}

// SumTotalByStatus sums order totals in the given status.
func (r *OrderRepository) SumTotalByStatus(ctx context.Context, status models.OrderStatus) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.GetContext(ctx, &sum, `SELECT COALESCE(SUM(total), 0) FROM orders WHERE status = $1`, status)
	return sum, err
}

// Recent returns the newest orders in dashboard shape.
func (r *OrderRepository) Recent(ctx context.Context, limit int) ([]models.RecentOrder, error) {
	const q = `
        SELECT id, order_number, customer_name, total, LOWER(status) AS status, created_at
        FROM orders
        ORDER BY created_at DESC, id DESC
        LIMIT $1`
	orders := []models.RecentOrder{}
	if err := r.db.SelectContext(ctx, &orders, q, limit); err != nil {
		return nil, err
	}
	return orders, nil
}

func loadOrderChildren(ctx context.Context, q sqlx.QueryerContext, o *models.Order) error {
	const itemsQ = `
        SELECT id, order_id, product_id, variant_id, name, sku, quantity, price
        FROM order_items WHERE order_id = $1 ORDER BY id`
	o.Items = []models.OrderItem{}
	if err := sqlx.SelectContext(ctx, q, &o.Items, itemsQ, o.ID); err != nil {
		return fmt.Errorf("load order items: %w", err)
	}

	const historyQ = `
        SELECT id, order_id, status, note, created_at
        FROM order_status_history WHERE order_id = $1 ORDER BY created_at, id`
	o.History = []models.OrderStatusHistory{}
	if err := sqlx.SelectContext(ctx, q, &o.History, historyQ, o.ID); err != nil {
		return fmt.Errorf("load order history: %w", err)
	}
	return nil
}

func insertHistory(ctx context.Context, tx *sqlx.Tx, orderID int, status models.OrderStatus, note string) (*models.OrderStatusHistory, error) {
	h := models.OrderStatusHistory{OrderID: orderID, Status: status, Note: note}
	const q = `
        INSERT INTO order_status_history (order_id, status, note)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	if err := tx.QueryRowxContext(ctx, q, orderID, status, note).Scan(&h.ID, &h.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert status history: %w", err)
	}
	return &h, nil
}
