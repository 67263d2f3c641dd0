package catalog

import "github.com/GTDGit/toystore_api/internal/models"

// Page is one slice of a filtered listing.
type Page struct {
	Items      []models.Product
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
}

// Paginate slices products into fixed-size pages. Pages below 1 are treated
// as 1; pages past the end are empty but keep the totals.
func Paginate(products []models.Product, page, size int) Page {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = PageSize
	}
	total := len(products)
	result := Page{
		Items:      []models.Product{},
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: (total + size - 1) / size,
	}

	// Checked before multiplying so huge page numbers cannot overflow.
	if page > total/size+1 {
		return result
	}
	start := (page - 1) * size
	if start >= total {
		return result
	}
	end := start + size
	if end > total {
		end = total
	}
	result.Items = products[start:end]
	return result
}
