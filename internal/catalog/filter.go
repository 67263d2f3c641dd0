// Package catalog filters and paginates storefront product listings.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/toystore_api/internal/models"
)

// PageSize is the number of products per catalog page.
const PageSize = 12

// Filter narrows a product list. Zero-value fields are ignored.
type Filter struct {
	Category string
	MinPrice decimal.NullDecimal
	MaxPrice decimal.NullDecimal
	InStock  bool
	Search   string
}

// Predicate decides whether a product is kept.
type Predicate func(p *models.Product) bool

// Predicates returns the predicate chain for f, in evaluation order.
func (f Filter) Predicates() []Predicate {
	var preds []Predicate
	if f.Category != "" {
		category := f.Category
		preds = append(preds, func(p *models.Product) bool { return p.Category == category })
	}
	if f.MinPrice.Valid {
		lo := f.MinPrice.Decimal
		preds = append(preds, func(p *models.Product) bool { return p.Price.GreaterThanOrEqual(lo) })
	}
	if f.MaxPrice.Valid {
		hi := f.MaxPrice.Decimal
		preds = append(preds, func(p *models.Product) bool { return p.Price.LessThanOrEqual(hi) })
	}
	if f.InStock {
		preds = append(preds, func(p *models.Product) bool { return p.InStock() })
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		preds = append(preds, func(p *models.Product) bool {
			return strings.Contains(strings.ToLower(p.Name), term) ||
				strings.Contains(strings.ToLower(p.Description), term) ||
				strings.Contains(strings.ToLower(p.Category), term)
		})
	}
	return preds
}

// Apply returns the products matching every predicate, preserving order.
func (f Filter) Apply(products []models.Product) []models.Product {
	preds := f.Predicates()
	out := make([]models.Product, 0, len(products))
next:
	for i := range products {
		for _, keep := range preds {
			if !keep(&products[i]) {
				continue next
			}
		}
		out = append(out, products[i])
	}
	return out
}
