package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Variant is a purchasable SKU-level option of a Product.
type Variant struct {
	ID        int             `db:"id" json:"id"`
	ProductID int             `db:"product_id" json:"productId"`
	SKU       string          `db:"sku" json:"sku"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Stock     int             `db:"stock" json:"stock"`
	CreatedAt time.Time       `db:"created_at" json:"-"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

// VariantDetail joins a variant with the product fields a cart line needs.
type VariantDetail struct {
	Variant
	ProductSlug     string        `db:"product_slug"`
	ProductName     string        `db:"product_name"`
	ProductCategory string        `db:"product_category"`
	ProductStatus   ProductStatus `db:"product_status"`
	AgeRating       string        `db:"age_rating"`
	Images          StringList    `db:"images"`
}
