// Package cart implements the shopping cart state model and its persistence.
//
// A Cart is a plain value: mutations are synchronous and never touch storage.
// Store loads and saves carts through a pluggable Storage backend under the
// fixed "cart-storage" namespace.
package cart

import (
	"github.com/shopspring/decimal"
)

// Item is a cart line. Name, price, image and category are denormalized from
// the variant at the time it was added.
type Item struct {
	VariantID   int             `json:"variantId"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Qty         int             `json:"qty"`
	Image       string          `json:"image"`
	ProductSlug string          `json:"productSlug"`
	Category    string          `json:"category"`
}

// Cart holds at most one line per variant; every line has Qty >= 1.
type Cart struct {
	Items []Item `json:"items"`
}

// AddItem increments the quantity of an existing line or appends item with Qty 1.
func (c *Cart) AddItem(item Item) {
	for i := range c.Items {
		if c.Items[i].VariantID == item.VariantID {
			c.Items[i].Qty++
			return
		}
	}
	item.Qty = 1
	c.Items = append(c.Items, item)
}

// UpdateQty sets the quantity of a line. A quantity of zero or less removes it.
func (c *Cart) UpdateQty(variantID, qty int) {
	if qty <= 0 {
		c.RemoveItem(variantID)
		return
	}
	for i := range c.Items {
		if c.Items[i].VariantID == variantID {
			c.Items[i].Qty = qty
			return
		}
	}
}

// RemoveItem drops the line for variantID if present.
func (c *Cart) RemoveItem(variantID int) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.VariantID != variantID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}

// ClearCart removes every line.
func (c *Cart) ClearCart() {
	c.Items = []Item{}
}

// TotalQty sums quantities over all lines.
func (c *Cart) TotalQty() int {
	total := 0
	for _, it := range c.Items {
		total += it.Qty
	}
	return total
}

// TotalPrice returns Σ price × qty.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return total
}

// ItemQty returns the quantity for variantID, or 0 when absent.
func (c *Cart) ItemQty(variantID int) int {
	for _, it := range c.Items {
		if it.VariantID == variantID {
			return it.Qty
		}
	}
	return 0
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// normalize drops lines with non-positive quantity and merges duplicate
// variants; it guards against hand-edited storage entries.
func (c *Cart) normalize() {
	seen := make(map[int]int, len(c.Items))
	out := make([]Item, 0, len(c.Items))
	for _, it := range c.Items {
		if it.Qty <= 0 {
			continue
		}
		if idx, ok := seen[it.VariantID]; ok {
			out[idx].Qty += it.Qty
			continue
		}
		seen[it.VariantID] = len(out)
		out = append(out, it)
	}
	c.Items = out
}
