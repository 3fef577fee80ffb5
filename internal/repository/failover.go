package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"turfdesk/internal/domain"
	"turfdesk/internal/models"

	"github.com/rs/zerolog"
)

// recoveryInterval is how long the primary stays benched after a failure.
const recoveryInterval = time.Minute

// FailoverCartStore sends calls to the primary store until it errors, then
// serves from the fallback and retries the primary once per recoveryInterval.
// Carts written during an outage are moved back to the primary on the next
// read that reaches it.
type FailoverCartStore struct {
	primary  domain.CartStore
	fallback domain.CartStore
	logger   *zerolog.Logger
	isDown   atomic.Bool

	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverCartStore(primary, fallback domain.CartStore, logger *zerolog.Logger) *FailoverCartStore {
	return &FailoverCartStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// usePrimary решает, идти ли в основное хранилище
func (r *FailoverCartStore) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Since(r.lastCheck) > recoveryInterval
}

func (r *FailoverCartStore) markDown(err error, op string) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Str("op", op).Msg("Primary cart store failed, falling back")
	}
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

func (r *FailoverCartStore) markUp() {
	if r.isDown.Swap(false) {
		r.logger.Info().Msg("Primary cart store recovered")
	}
}

func (r *FailoverCartStore) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	if r.usePrimary() {
		cart, err := r.primary.GetCart(ctx, sessionID)
		if err == nil {
			r.markUp()
			return r.promote(ctx, sessionID, cart), nil
		}
		r.markDown(err, "get")
	}
	return r.fallback.GetCart(ctx, sessionID)
}

// promote returns the newer of the primary cart and a cart left in the
// fallback during an outage. A fallback cart is copied to the primary and
// dropped from the fallback once the copy succeeds.
func (r *FailoverCartStore) promote(ctx context.Context, sessionID string, cart *models.Cart) *models.Cart {
	held, err := r.fallback.GetCart(ctx, sessionID)
	if err != nil {
		r.logger.Warn().Err(err).Str("session", sessionID).Msg("Fallback cart read failed")
		return cart
	}
	if held == nil || (cart != nil && !held.UpdatedAt.After(cart.UpdatedAt)) {
		return cart
	}

	if err := r.primary.SaveCart(ctx, held); err != nil {
		r.markDown(err, "promote")
		return held
	}
	if err := r.fallback.ClearCart(ctx, sessionID); err != nil {
		r.logger.Warn().Err(err).Str("session", sessionID).Msg("Fallback cart not cleared after promotion")
	}
	r.logger.Info().Str("session", sessionID).Int("items", len(held.Items)).Msg("Cart moved back to primary store")
	return held
}

func (r *FailoverCartStore) SaveCart(ctx context.Context, cart *models.Cart) error {
	if r.usePrimary() {
		err := r.primary.SaveCart(ctx, cart)
		if err == nil {
			r.markUp()
			return nil
		}
		r.markDown(err, "save")
	}
	return r.fallback.SaveCart(ctx, cart)
}

// ClearCart clears both stores so a cart written during an outage does not
// reappear once the primary recovers.
func (r *FailoverCartStore) ClearCart(ctx context.Context, sessionID string) error {
	if r.usePrimary() {
		if err := r.primary.ClearCart(ctx, sessionID); err != nil {
			r.markDown(err, "clear")
		} else {
			r.markUp()
		}
	}
	return r.fallback.ClearCart(ctx, sessionID)
}
