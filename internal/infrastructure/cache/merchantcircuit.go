package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MerchantCircuit is the per-merchant circuit breaker. Consecutive transient
// failures within the block window accumulate in a counter; at failLimit the
// circuit opens for the block window and deliveries are rejected without an
// HTTP call until the flag expires.
type MerchantCircuit struct {
	client      *redis.Client
	failLimit   int64
	blockWindow time.Duration
}

func NewMerchantCircuit(client *redis.Client, failLimit int, blockWindow time.Duration) *MerchantCircuit {
	return &MerchantCircuit{
		client:      client,
		failLimit:   int64(failLimit),
		blockWindow: blockWindow,
	}
}

func (c *MerchantCircuit) failKey(merchantID uint64) string {
	return fmt.Sprintf("merchant:fail:%d", merchantID)
}

func (c *MerchantCircuit) blockKey(merchantID uint64) string {
	return fmt.Sprintf("merchant:block:%d", merchantID)
}

// IsOpen reports whether the merchant's circuit is currently open.
func (c *MerchantCircuit) IsOpen(ctx context.Context, merchantID uint64) (bool, error) {
	n, err := c.client.Exists(ctx, c.blockKey(merchantID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check circuit flag: %w", err)
	}
	return n > 0, nil
}

// RecordFailure increments the failure counter and opens the circuit when
// the limit is reached. Returns the count and whether the circuit opened.
func (c *MerchantCircuit) RecordFailure(ctx context.Context, merchantID uint64) (int64, bool, error) {
	key := c.failKey(merchantID)

	fails, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, false, fmt.Errorf("failed to increment failure counter: %w", err)
	}
	if err := c.client.Expire(ctx, key, c.blockWindow).Err(); err != nil {
		return fails, false, fmt.Errorf("failed to expire failure counter: %w", err)
	}

	if fails >= c.failLimit {
		if err := c.client.SetEx(ctx, c.blockKey(merchantID), "1", c.blockWindow).Err(); err != nil {
			return fails, false, fmt.Errorf("failed to open circuit: %w", err)
		}
		return fails, true, nil
	}

	return fails, false, nil
}

// Reset clears the failure counter after a successful delivery.
func (c *MerchantCircuit) Reset(ctx context.Context, merchantID uint64) error {
	if err := c.client.Del(ctx, c.failKey(merchantID)).Err(); err != nil {
		return fmt.Errorf("failed to clear failure counter: %w", err)
	}
	return nil
}
