package repository

import (
	"context"
	"sync"
	"time"

	"turfdesk/internal/models"
)

type memoryEntry struct {
	cart      models.Cart
	expiresAt time.Time
}

// MemoryCartStore keeps carts in process memory. Entries expire lazily on read.
type MemoryCartStore struct {
	carts sync.Map
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryCartStore(ttl time.Duration) *MemoryCartStore {
	return &MemoryCartStore{
		ttl: ttl,
		now: time.Now,
	}
}

func (r *MemoryCartStore) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	val, ok := r.carts.Load(sessionID)
	if !ok {
		return nil, nil
	}
	entry := val.(*memoryEntry)
	if r.ttl > 0 && r.now().After(entry.expiresAt) {
		r.carts.Delete(sessionID)
		return nil, nil
	}
	cart := cloneCart(&entry.cart)
	return cart, nil
}

func (r *MemoryCartStore) SaveCart(ctx context.Context, cart *models.Cart) error {
	r.carts.Store(cart.SessionID, &memoryEntry{
		cart:      *cloneCart(cart),
		expiresAt: r.now().Add(r.ttl),
	})
	return nil
}

func (r *MemoryCartStore) ClearCart(ctx context.Context, sessionID string) error {
	r.carts.Delete(sessionID)
	return nil
}

// cloneCart copies the item slices so callers cannot mutate stored state.
func cloneCart(c *models.Cart) *models.Cart {
	out := &models.Cart{SessionID: c.SessionID, UpdatedAt: c.UpdatedAt}
	if c.Items != nil {
		out.Items = make([]models.CartItem, len(c.Items))
		for i, it := range c.Items {
			it.Slots = append([]string(nil), it.Slots...)
			out.Items[i] = it
		}
	}
	return out
}
