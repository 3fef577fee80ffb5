package repository

import (
	"context"
	"testing"
	"time"

	"turfdesk/internal/config"
	"turfdesk/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCartStore(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := NewRedisClient(config.RedisConfig{Address: s.Addr()})
	store := NewRedisCartStore(client, time.Hour)
	ctx := context.Background()

	cart := &models.Cart{
		SessionID: "desk-1",
		Items: []models.CartItem{
			{ID: "i1", SpaceID: "s1", SpaceName: "Court A", Date: "2024-06-01", Slots: []string{"06:00 PM - 07:00 PM"}, Amount: 1200},
		},
		UpdatedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}

	t.Run("SaveAndGetCart", func(t *testing.T) {
		require.NoError(t, store.SaveCart(ctx, cart))

		got, err := store.GetCart(ctx, "desk-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, cart.Items, got.Items)
		assert.True(t, cart.UpdatedAt.Equal(got.UpdatedAt))
		assert.Equal(t, time.Hour, s.TTL(cartKeyPrefix+"desk-1"))
	})

	t.Run("GetMissingCart", func(t *testing.T) {
		got, err := store.GetCart(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("CartExpires", func(t *testing.T) {
		require.NoError(t, store.SaveCart(ctx, &models.Cart{SessionID: "short"}))
		s.FastForward(time.Hour + time.Second)

		got, err := store.GetCart(ctx, "short")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearCart", func(t *testing.T) {
		require.NoError(t, store.ClearCart(ctx, "desk-1"))
		got, err := store.GetCart(ctx, "desk-1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("CorruptPayload", func(t *testing.T) {
		require.NoError(t, s.Set(cartKeyPrefix+"broken", "{not json"))
		_, err := store.GetCart(ctx, "broken")
		assert.Error(t, err)
	})

	t.Run("NilClient", func(t *testing.T) {
		nilStore := NewRedisCartStore(nil, time.Hour)
		_, err := nilStore.GetCart(ctx, "x")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis client is nil")
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})

	t.Run("Close", func(t *testing.T) {
		assert.NoError(t, Close(client))
	})
}
