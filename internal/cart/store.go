package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Namespace prefixes every storage key.
const Namespace = "cart-storage"

// ErrInvalidCartID is returned for an empty cart id.
var ErrInvalidCartID = errors.New("cart id is required")

// Storage persists carts by key. Load returns an empty cart, not an error,
// when nothing is stored under key.
type Storage interface {
	Load(ctx context.Context, key string) (*Cart, error)
	Save(ctx context.Context, key string, c *Cart) error
	Delete(ctx context.Context, key string) error
}

// Store is the cart repository used by the HTTP layer.
type Store struct {
	storage Storage
}

// NewStore builds a Store on top of a storage backend.
func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Key returns the namespaced storage key for a cart id.
func Key(cartID string) string {
	return Namespace + ":" + cartID
}

// Get loads the cart for cartID.
func (s *Store) Get(ctx context.Context, cartID string) (*Cart, error) {
	if cartID == "" {
		return nil, ErrInvalidCartID
	}
	c, err := s.storage.Load(ctx, Key(cartID))
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	c.normalize()
	return c, nil
}

// Update loads the cart, applies fn and saves the result. If fn fails nothing is written.
func (s *Store) Update(ctx context.Context, cartID string, fn func(c *Cart) error) (*Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		if err := s.storage.Delete(ctx, Key(cartID)); err != nil {
			return nil, fmt.Errorf("delete cart: %w", err)
		}
		return c, nil
	}
	if err := s.storage.Save(ctx, Key(cartID), c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return c, nil
}

// Clear removes the stored cart.
func (s *Store) Clear(ctx context.Context, cartID string) error {
	if cartID == "" {
		return ErrInvalidCartID
	}
	if err := s.storage.Delete(ctx, Key(cartID)); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

// MemoryStorage keeps carts in process memory.
type MemoryStorage struct {
	mu    sync.RWMutex
	carts map[string]Cart
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{carts: make(map[string]Cart)}
}

func (m *MemoryStorage) Load(_ context.Context, key string) (*Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored, ok := m.carts[key]
	if !ok {
		return &Cart{Items: []Item{}}, nil
	}
	items := make([]Item, len(stored.Items))
	copy(items, stored.Items)
	return &Cart{Items: items}, nil
}

func (m *MemoryStorage) Save(_ context.Context, key string, c *Cart) error {
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	m.mu.Lock()
	m.carts[key] = Cart{Items: items}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.carts, key)
	m.mu.Unlock()
	return nil
}
