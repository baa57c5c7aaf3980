// Package cache holds the Redis-backed coordination state shared by all
// consumer instances: dedup markers, failure counters, circuit flags and
// rate-limit windows. State lives externally so no in-process locking is
// needed across instances.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DeliveryDedup marks payments whose merchant notification already went out
// so broker redeliveries are acknowledged without a second callback.
type DeliveryDedup struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDeliveryDedup(client *redis.Client, ttl time.Duration) *DeliveryDedup {
	return &DeliveryDedup{client: client, ttl: ttl}
}

func (d *DeliveryDedup) key(paymentID uint64) string {
	return fmt.Sprintf("payment:dedup:%d", paymentID)
}

// IsDelivered reports whether the payment's notification was already sent.
func (d *DeliveryDedup) IsDelivered(ctx context.Context, paymentID uint64) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(paymentID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check dedup marker: %w", err)
	}
	return n > 0, nil
}

// MarkDelivered sets the dedup marker with the configured TTL.
func (d *DeliveryDedup) MarkDelivered(ctx context.Context, paymentID uint64) error {
	if err := d.client.SetEx(ctx, d.key(paymentID), "1", d.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set dedup marker: %w", err)
	}
	return nil
}
