package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats is the admin dashboard payload.
type DashboardStats struct {
	TotalProducts    int               `json:"totalProducts"`
	TotalUsers       int               `json:"totalUsers"`
	TotalOrders      int               `json:"totalOrders"`
	TotalRevenue     decimal.Decimal   `json:"totalRevenue"`
	RecentOrders     []RecentOrder     `json:"recentOrders"`
	LowStockProducts []LowStockProduct `json:"lowStockProducts"`
	GeneratedAt      time.Time         `json:"generatedAt"`
}

// RecentOrder is a dashboard row. Status is lowercase.
type RecentOrder struct {
	ID          int             `db:"id" json:"id"`
	OrderNumber string          `db:"order_number" json:"orderNumber"`
	Customer    string          `db:"customer_name" json:"customer"`
	Total       decimal.Decimal `db:"total" json:"total"`
	Status      string          `db:"status" json:"status"`
	Date        time.Time       `db:"created_at" json:"date"`
}

// LowStockProduct reports the lowest stock across the product's variants.
type LowStockProduct struct {
	ID    int    `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Stock int    `db:"stock" json:"stock"`
}
