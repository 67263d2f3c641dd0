package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PersistsAcrossLoads(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	store := NewStore(storage)

	_, err := store.Update(ctx, "abc", func(c *Cart) error {
		c.AddItem(newItem(1, 100))
		c.AddItem(newItem(1, 100))
		return nil
	})
	require.NoError(t, err)

	// A fresh Store over the same backend sees the saved cart.
	reloaded, err := NewStore(storage).Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.ItemQty(1))

	raw, err := storage.Load(ctx, "cart-storage:abc")
	require.NoError(t, err)
	assert.Len(t, raw.Items, 1)
}

func TestStore_GetUnknownIsEmpty(t *testing.T) {
	c, err := NewStore(NewMemoryStorage()).Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, c.Items)
	assert.True(t, c.IsEmpty())
}

func TestStore_UpdateErrorDoesNotSave(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage())
	boom := errors.New("boom")

	_, err := store.Update(ctx, "abc", func(c *Cart) error {
		c.AddItem(newItem(1, 100))
		return boom
	})
	require.ErrorIs(t, err, boom)

	c, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage())
	_, err := store.Update(ctx, "abc", func(c *Cart) error {
		c.AddItem(newItem(1, 100))
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx, "abc"))

	c, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestStore_RequiresCartID(t *testing.T) {
	_, err := NewStore(NewMemoryStorage()).Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidCartID)
}
