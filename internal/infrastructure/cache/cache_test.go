package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return client, mr
}

func TestDeliveryDedup(t *testing.T) {
	client, mr := setupTestRedis(t)
	dedup := NewDeliveryDedup(client, time.Hour)
	ctx := context.Background()

	delivered, err := dedup.IsDelivered(ctx, 1)
	require.NoError(t, err)
	assert.False(t, delivered)

	require.NoError(t, dedup.MarkDelivered(ctx, 1))

	delivered, err = dedup.IsDelivered(ctx, 1)
	require.NoError(t, err)
	assert.True(t, delivered)

	// Other payments are unaffected.
	delivered, err = dedup.IsDelivered(ctx, 2)
	require.NoError(t, err)
	assert.False(t, delivered)

	// The marker expires with its TTL.
	mr.FastForward(2 * time.Hour)
	delivered, err = dedup.IsDelivered(ctx, 1)
	require.NoError(t, err)
	assert.False(t, delivered)
}

func TestMerchantCircuit(t *testing.T) {
	t.Run("opens at the failure limit", func(t *testing.T) {
		client, _ := setupTestRedis(t)
		circuit := NewMerchantCircuit(client, 3, 30*time.Minute)
		ctx := context.Background()

		for i := int64(1); i < 3; i++ {
			fails, opened, err := circuit.RecordFailure(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, i, fails)
			assert.False(t, opened)
		}

		fails, opened, err := circuit.RecordFailure(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(3), fails)
		assert.True(t, opened)

		open, err := circuit.IsOpen(ctx, 1)
		require.NoError(t, err)
		assert.True(t, open)

		// Other merchants are isolated.
		open, err = circuit.IsOpen(ctx, 2)
		require.NoError(t, err)
		assert.False(t, open)
	})

	t.Run("reset clears the failure streak", func(t *testing.T) {
		client, _ := setupTestRedis(t)
		circuit := NewMerchantCircuit(client, 3, 30*time.Minute)
		ctx := context.Background()

		_, _, err := circuit.RecordFailure(ctx, 1)
		require.NoError(t, err)
		_, _, err = circuit.RecordFailure(ctx, 1)
		require.NoError(t, err)

		require.NoError(t, circuit.Reset(ctx, 1))

		// The streak starts over after a success.
		fails, opened, err := circuit.RecordFailure(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), fails)
		assert.False(t, opened)
	})

	t.Run("block expires after the window", func(t *testing.T) {
		client, mr := setupTestRedis(t)
		circuit := NewMerchantCircuit(client, 1, 30*time.Minute)
		ctx := context.Background()

		_, opened, err := circuit.RecordFailure(ctx, 1)
		require.NoError(t, err)
		require.True(t, opened)

		mr.FastForward(31 * time.Minute)

		open, err := circuit.IsOpen(ctx, 1)
		require.NoError(t, err)
		assert.False(t, open)
	})
}

func TestNotificationRateLimit(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := NewNotificationRateLimit(client, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(ctx, 1)
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d should be within the limit", i+1)
	}

	allowed, err := limiter.Allow(ctx, 1)
	require.NoError(t, err)
	assert.False(t, allowed, "the sixth attempt in a minute is rejected")

	// Per-merchant windows are independent.
	allowed, err = limiter.Allow(ctx, 2)
	require.NoError(t, err)
	assert.True(t, allowed)
}
