package catalog

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/toystore_api/internal/models"
)

func product(id int, name, category string, price int64, stock ...int) models.Product {
	p := models.Product{
		ID:          id,
		Name:        name,
		Description: "A toy called " + name,
		Category:    category,
		Price:       decimal.NewFromInt(price),
	}
	for i, s := range stock {
		p.Variants = append(p.Variants, models.Variant{ID: id*10 + i, Stock: s, Price: p.Price})
	}
	return p
}

func fixtures() []models.Product {
	return []models.Product{
		product(1, "RC Monster Truck", "rc-cars", 800000, 3),
		product(2, "Barbie Dreamhouse", "dolls", 1500000, 0, 0),
		product(3, "Lego City", "building", 450000, 0, 2),
		product(4, "Puzzle 1000", "puzzles", 150000, 10),
	}
}

func ids(ps []models.Product) []int {
	out := make([]int, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []int
	}{
		{"no filter keeps all", Filter{}, []int{1, 2, 3, 4}},
		{"category", Filter{Category: "dolls"}, []int{2}},
		{"min price inclusive", Filter{MinPrice: decimal.NewNullDecimal(decimal.NewFromInt(800000))}, []int{1, 2}},
		{"max price inclusive", Filter{MaxPrice: decimal.NewNullDecimal(decimal.NewFromInt(450000))}, []int{3, 4}},
		{"in stock uses any variant", Filter{InStock: true}, []int{1, 3, 4}},
		{"search name case insensitive", Filter{Search: "LEGO"}, []int{3}},
		{"search category", Filter{Search: "rc-"}, []int{1}},
		{"search description", Filter{Search: "called puzzle"}, []int{4}},
		{
			"combined",
			Filter{
				InStock:  true,
				MinPrice: decimal.NewNullDecimal(decimal.NewFromInt(200000)),
				MaxPrice: decimal.NewNullDecimal(decimal.NewFromInt(900000)),
			},
			[]int{1, 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Apply(fixtures())))
		})
	}
}

func TestFilter_EmptyResultIsNotNil(t *testing.T) {
	got := Filter{Category: "none"}.Apply(fixtures())
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPaginate(t *testing.T) {
	var products []models.Product
	for i := 1; i <= 30; i++ {
		products = append(products, product(i, "Toy", "misc", 1000))
	}

	first := Paginate(products, 1, PageSize)
	assert.Len(t, first.Items, 12)
	assert.Equal(t, 30, first.TotalItems)
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, 1, first.Items[0].ID)

	last := Paginate(products, 3, PageSize)
	assert.Len(t, last.Items, 6)
	assert.Equal(t, 25, last.Items[0].ID)

	beyond := Paginate(products, 4, PageSize)
	assert.Empty(t, beyond.Items)
	assert.NotNil(t, beyond.Items)
	assert.Equal(t, 30, beyond.TotalItems)
	assert.Equal(t, 3, beyond.TotalPages)

	huge := Paginate(products[:3], 768614336404564652, PageSize)
	assert.Empty(t, huge.Items)
	assert.Equal(t, 3, huge.TotalItems)

	huge = Paginate(products, math.MaxInt, PageSize)
	assert.Empty(t, huge.Items)

	clamped := Paginate(products, 0, 0)
	assert.Equal(t, 1, clamped.Page)
	assert.Equal(t, PageSize, clamped.PageSize)
}

func TestPaginate_Empty(t *testing.T) {
	p := Paginate(nil, 1, PageSize)
	assert.Empty(t, p.Items)
	assert.Equal(t, 0, p.TotalPages)
}
