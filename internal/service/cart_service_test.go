package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/toystore_api/internal/cart"
	"github.com/GTDGit/toystore_api/internal/models"
	"github.com/GTDGit/toystore_api/internal/utils"
)

func newCartService() (*CartService, *fakeVariants) {
	variants := &fakeVariants{details: map[int]models.VariantDetail{
		1: variantDetail(1, "Robot", 400000, 2),
		2: variantDetail(2, "Kite", 50000, 10),
	}}
	return NewCartService(cart.NewStore(cart.NewMemoryStorage()), variants), variants
}

func TestCartService_AddTwiceMerges(t *testing.T) {
	svc, _ := newCartService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "c", 1)
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, "c", 1)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Qty)
	assert.Equal(t, "Robot", view.Items[0].Name)
	assert.Equal(t, "/uploads/robot.jpg", view.Items[0].Image)
	assert.Equal(t, 2, view.TotalQty)
	assert.Equal(t, "800000", view.TotalPrice.String())
}

func TestCartService_StockLimit(t *testing.T) {
	svc, _ := newCartService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "c", 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "c", 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "c", 1)
	assert.ErrorIs(t, err, utils.ErrInsufficientStock)

	_, err = svc.UpdateQty(ctx, "c", 2, 11)
	assert.ErrorIs(t, err, utils.ErrInsufficientStock)

	view, err := svc.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 2, view.TotalQty)
}

func TestCartService_UpdateAndRemove(t *testing.T) {
	svc, _ := newCartService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "c", 2)
	require.NoError(t, err)
	view, err := svc.UpdateQty(ctx, "c", 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, view.TotalQty)

	view, err = svc.UpdateQty(ctx, "c", 2, 0)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = svc.AddItem(ctx, "c", 2)
	require.NoError(t, err)
	view, err = svc.RemoveItem(ctx, "c", 2)
	require.NoError(t, err)
	assert.Equal(t, []cart.Item{}, view.Items)

	_, err = svc.AddItem(ctx, "c", 1)
	require.NoError(t, err)
	view, err = svc.Clear(ctx, "c")
	require.NoError(t, err)
	assert.True(t, view.TotalPrice.IsZero())
}

func TestCartService_RejectsUnknownAndInactive(t *testing.T) {
	svc, variants := newCartService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "c", 99)
	assert.ErrorIs(t, err, utils.ErrVariantNotFound)

	d := variants.details[2]
	d.ProductStatus = models.ProductStatusInactive
	variants.details[2] = d
	_, err = svc.AddItem(ctx, "c", 2)
	assert.ErrorIs(t, err, utils.ErrProductUnavailable)
}
