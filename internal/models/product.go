package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus enumerates the lifecycle states of a product.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
)

// AgeRatingAdult marks products that require an age confirmation before purchase.
const AgeRatingAdult = "18+"

// StringList is a JSONB-backed ordered list of strings (product images).
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("StringList: unsupported scan type")
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// Product represents a catalog entry. Price mirrors the cheapest variant.
type Product struct {
	ID            int                 `db:"id" json:"id"`
	Slug          string              `db:"slug" json:"slug"`
	Name          string              `db:"name" json:"name"`
	Description   string              `db:"description" json:"description"`
	Category      string              `db:"category" json:"category"`
	AgeRating     string              `db:"age_rating" json:"ageRating"`
	Price         decimal.Decimal     `db:"price" json:"price"`
	OriginalPrice decimal.NullDecimal `db:"original_price" json:"originalPrice"`
	Weight        decimal.NullDecimal `db:"weight" json:"weight"`
	Images        StringList          `db:"images" json:"images"`
	IsNew         bool                `db:"is_new" json:"isNew"`
	Status        ProductStatus       `db:"status" json:"status"`
	CreatedAt     time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time           `db:"updated_at" json:"updatedAt"`
	Variants      []Variant           `db:"-" json:"variants"`
}

// InStock reports whether any variant has stock left.
func (p *Product) InStock() bool {
	for _, v := range p.Variants {
		if v.Stock > 0 {
			return true
		}
	}
	return false
}

// TotalStock sums stock across variants.
func (p *Product) TotalStock() int {
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

// MinVariantPrice returns the cheapest variant price, or the product price when there are no variants.
func (p *Product) MinVariantPrice() decimal.Decimal {
	if len(p.Variants) == 0 {
		return p.Price
	}
	lowest := p.Variants[0].Price
	for _, v := range p.Variants[1:] {
		if v.Price.LessThan(lowest) {
			lowest = v.Price
		}
	}
	return lowest
}

// FirstImage returns the cover image or an empty string.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// RequiresAgeConfirmation reports whether the product is age-restricted.
func (p *Product) RequiresAgeConfirmation() bool {
	return p.AgeRating == AgeRatingAdult
}

// CategorySummary is a category with the number of active products in it.
type CategorySummary struct {
	Name         string `db:"category" json:"name"`
	ProductCount int    `db:"product_count" json:"productCount"`
}

// AdminProductRow is the compact product shape of the admin list.
type AdminProductRow struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Status    ProductStatus   `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	Image     string          `json:"image"`
}

// ToAdminRow summarizes p for the admin list: cheapest variant price and total stock.
func (p *Product) ToAdminRow() AdminProductRow {
	return AdminProductRow{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.MinVariantPrice(),
		Stock:     p.TotalStock(),
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		Image:     p.FirstImage(),
	}
}
