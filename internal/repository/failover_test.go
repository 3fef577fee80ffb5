package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"turfdesk/internal/config"
	"turfdesk/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *mockStore) SaveCart(ctx context.Context, cart *models.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockStore) ClearCart(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func TestFailoverCartStore(t *testing.T) {
	primary := new(mockStore)
	fallback := new(mockStore)
	logger := zerolog.New(io.Discard)
	store := NewFailoverCartStore(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		cart := &models.Cart{SessionID: "s1"}
		primary.On("GetCart", ctx, "s1").Return(cart, nil).Once()
		fallback.On("GetCart", ctx, "s1").Return(nil, nil).Once()

		got, err := store.GetCart(ctx, "s1")
		assert.NoError(t, err)
		assert.Equal(t, cart, got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		cart := &models.Cart{SessionID: "s2"}
		primary.On("GetCart", ctx, "s2").Return(nil, errors.New("fail")).Once()
		fallback.On("GetCart", ctx, "s2").Return(cart, nil).Once()

		got, err := store.GetCart(ctx, "s2")
		assert.NoError(t, err)
		assert.Equal(t, cart, got)
		assert.True(t, store.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("StaysOnFallbackWhileDown", func(t *testing.T) {
		cart := &models.Cart{SessionID: "s3"}
		fallback.On("SaveCart", ctx, cart).Return(nil).Once()

		assert.NoError(t, store.SaveCart(ctx, cart))
		fallback.AssertExpectations(t)
		primary.AssertNotCalled(t, "SaveCart", ctx, cart)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		store.isDown.Store(true)
		store.lastCheck = time.Now().Add(-2 * time.Minute)

		cart := &models.Cart{SessionID: "s4"}
		primary.On("GetCart", ctx, "s4").Return(cart, nil).Once()
		fallback.On("GetCart", ctx, "s4").Return(nil, nil).Once()

		got, err := store.GetCart(ctx, "s4")
		assert.NoError(t, err)
		assert.Equal(t, cart, got)
		assert.False(t, store.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("RecoveryAttemptFail", func(t *testing.T) {
		store.isDown.Store(true)
		store.lastCheck = time.Now().Add(-2 * time.Minute)

		primary.On("GetCart", ctx, "s5").Return(nil, errors.New("still fail")).Once()
		fallback.On("GetCart", ctx, "s5").Return(nil, nil).Once()

		got, err := store.GetCart(ctx, "s5")
		assert.NoError(t, err)
		assert.Nil(t, got)
		assert.True(t, store.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("SaveFailover", func(t *testing.T) {
		store.isDown.Store(false)
		cart := &models.Cart{SessionID: "s6"}
		primary.On("SaveCart", ctx, cart).Return(errors.New("fail")).Once()
		fallback.On("SaveCart", ctx, cart).Return(nil).Once()

		assert.NoError(t, store.SaveCart(ctx, cart))
		assert.True(t, store.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("ClearHitsBothStores", func(t *testing.T) {
		store.isDown.Store(false)
		primary.On("ClearCart", ctx, "s7").Return(nil).Once()
		fallback.On("ClearCart", ctx, "s7").Return(nil).Once()

		assert.NoError(t, store.ClearCart(ctx, "s7"))
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("ClearFailover", func(t *testing.T) {
		store.isDown.Store(false)
		primary.On("ClearCart", ctx, "s8").Return(errors.New("fail")).Once()
		fallback.On("ClearCart", ctx, "s8").Return(nil).Once()

		assert.NoError(t, store.ClearCart(ctx, "s8"))
		assert.True(t, store.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})
}

func TestFailoverCartStore_CartSurvivesRedisOutage(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := NewRedisClient(config.RedisConfig{Address: s.Addr()})
	defer client.Close()
	primary := NewRedisCartStore(client, time.Hour)
	fallback := NewMemoryCartStore(time.Hour)
	logger := zerolog.New(io.Discard)
	store := NewFailoverCartStore(primary, fallback, &logger)
	ctx := context.Background()

	before := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveCart(ctx, &models.Cart{
		SessionID: "desk-1",
		Items:     []models.CartItem{{ID: "i1", SpaceID: "s1", Slots: []string{"06:00 PM - 07:00 PM"}, Amount: 500}},
		UpdatedAt: before,
	}))

	s.SetError("down")
	require.NoError(t, store.SaveCart(ctx, &models.Cart{
		SessionID: "desk-1",
		Items: []models.CartItem{
			{ID: "i1", SpaceID: "s1", Slots: []string{"06:00 PM - 07:00 PM"}, Amount: 500},
			{ID: "i2", SpaceID: "s1", Slots: []string{"07:00 PM - 08:00 PM"}, Amount: 800},
		},
		UpdatedAt: before.Add(time.Minute),
	}))
	assert.True(t, store.isDown.Load())

	got, err := store.GetCart(ctx, "desk-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Items, 2)

	s.SetError("")
	store.mu.Lock()
	store.lastCheck = time.Now().Add(-2 * recoveryInterval)
	store.mu.Unlock()

	got, err = store.GetCart(ctx, "desk-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Items, 2)
	assert.False(t, store.isDown.Load())

	// the outage cart now lives in redis only
	held, err := fallback.GetCart(ctx, "desk-1")
	require.NoError(t, err)
	assert.Nil(t, held)
	inRedis, err := primary.GetCart(ctx, "desk-1")
	require.NoError(t, err)
	require.NotNil(t, inRedis)
	assert.Len(t, inRedis.Items, 2)

	require.NoError(t, store.ClearCart(ctx, "desk-1"))
	got, err = store.GetCart(ctx, "desk-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
