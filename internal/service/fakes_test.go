package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/toystore_api/internal/models"
	"github.com/GTDGit/toystore_api/internal/repository"
)

type fakeVariants struct {
	details map[int]models.VariantDetail
}

func (f *fakeVariants) GetDetail(_ context.Context, id int) (*models.VariantDetail, error) {
	d, ok := f.details[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &d, nil
}

func (f *fakeVariants) GetDetails(_ context.Context, ids []int) (map[int]models.VariantDetail, error) {
	out := make(map[int]models.VariantDetail)
	for _, id := range ids {
		if d, ok := f.details[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func variantDetail(id int, product string, price int64, stock int) models.VariantDetail {
	return models.VariantDetail{
		Variant: models.Variant{
			ID:        id,
			ProductID: id * 10,
			SKU:       "SKU-" + product,
			Name:      "Standard",
			Price:     decimal.NewFromInt(price),
			Stock:     stock,
		},
		ProductSlug:     strings.ToLower(product),
		ProductName:     product,
		ProductCategory: "Puzzles",
		ProductStatus:   models.ProductStatusActive,
		Images:          models.StringList{"/uploads/" + strings.ToLower(product) + ".jpg"},
	}
}

type fakeOrders struct {
	mu        sync.Mutex
	orders    map[int]*models.Order
	customers []*models.User
	createErr error
	updateErr error
	changes   []repository.StatusChange
	filters   []*repository.AdminOrderFilter
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: make(map[int]*models.Order)}
}

func (f *fakeOrders) Create(_ context.Context, o *models.Order, customer *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	o.ID = len(f.orders) + 1
	o.CreatedAt = time.Now()
	f.orders[o.ID] = o
	f.customers = append(f.customers, customer)
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id int) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return o, nil
}

func (f *fakeOrders) GetByAWB(_ context.Context, awb string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.AWBNumber != nil && *o.AWBNumber == awb {
			return o, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeOrders) GetByNumberAndEmail(_ context.Context, number, email string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.OrderNumber == number && strings.EqualFold(o.CustomerEmail, email) {
			return o, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id int, decide func(o *models.Order) (*repository.StatusChange, error)) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *o
	change, err := decide(&cp)
	if err != nil {
		return nil, err
	}
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.changes = append(f.changes, *change)
	cp.Status = change.Status
	if change.AWBNumber != nil {
		cp.AWBNumber = change.AWBNumber
	}
	cp.History = append(cp.History, models.OrderStatusHistory{Status: change.Status, Note: change.Note})
	f.orders[id] = &cp
	return &cp, nil
}

func (f *fakeOrders) GetAllAdmin(_ context.Context, filter *repository.AdminOrderFilter) (*repository.AdminOrderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	res := &repository.AdminOrderResult{}
	for _, o := range f.orders {
		if filter.Status == nil || string(o.Status) == *filter.Status {
			res.Orders = append(res.Orders, *o)
		}
	}
	res.TotalItems = len(res.Orders)
	return res, nil
}

type fakeProducts struct {
	products  map[int]*models.Product
	slugs     map[string]bool
	createErr error
	updateErr error
	replaced  []bool
	deleted   []int
	ordered   map[int]bool
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{
		products: make(map[int]*models.Product),
		slugs:    make(map[string]bool),
		ordered:  make(map[int]bool),
	}
}

func (f *fakeProducts) ListAll(context.Context) ([]models.Product, error) {
	out := make([]models.Product, 0, len(f.products))
	for id := len(f.products); id >= 1; id-- {
		if p, ok := f.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProducts) GetByID(_ context.Context, id int) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	cp.Variants = append([]models.Variant(nil), p.Variants...)
	return &cp, nil
}

func (f *fakeProducts) SlugExists(_ context.Context, slug string, _ int) (bool, error) {
	return f.slugs[slug], nil
}

func (f *fakeProducts) Create(_ context.Context, p *models.Product) error {
	if f.createErr != nil {
		return f.createErr
	}
	p.ID = len(f.products) + 1
	p.Price = p.MinVariantPrice()
	f.products[p.ID] = p
	f.slugs[p.Slug] = true
	return nil
}

func (f *fakeProducts) Update(_ context.Context, p *models.Product, replaceVariants bool) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.products[p.ID]; !ok {
		return sql.ErrNoRows
	}
	f.replaced = append(f.replaced, replaceVariants)
	p.Price = p.MinVariantPrice()
	f.products[p.ID] = p
	return nil
}

func (f *fakeProducts) Delete(_ context.Context, id int) (bool, error) {
	if _, ok := f.products[id]; !ok {
		return false, sql.ErrNoRows
	}
	f.deleted = append(f.deleted, id)
	if f.ordered[id] {
		f.products[id].Status = models.ProductStatusInactive
		return true, nil
	}
	delete(f.products, id)
	return false, nil
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

type fakeAdmins struct {
	users     map[string]*models.AdminUser
	lastLogin map[int]time.Time
}

func (f *fakeAdmins) GetByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	u, ok := f.users[strings.ToLower(email)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeAdmins) UpdateLastLogin(_ context.Context, id int, at time.Time) error {
	if f.lastLogin == nil {
		f.lastLogin = make(map[int]time.Time)
	}
	f.lastLogin[id] = at
	return nil
}

func (f *fakeAdmins) Create(_ context.Context, u *models.AdminUser) error {
	if f.users == nil {
		f.users = make(map[string]*models.AdminUser)
	}
	u.ID = len(f.users) + 1
	f.users[u.Email] = u
	return nil
}

type recordingImages struct {
	removed []string
	failOn  string
}

func (r *recordingImages) KeyFromURL(url string) (string, bool) {
	return strings.CutPrefix(url, "/uploads/")
}

func (r *recordingImages) Delete(_ context.Context, key string) error {
	if key == r.failOn {
		return errors.New("disk busy")
	}
	r.removed = append(r.removed, key)
	return nil
}
