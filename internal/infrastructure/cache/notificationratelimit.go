package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"payflow/internal/shared/biztime"
)

// NotificationRateLimit bounds notification attempts per merchant per
// minute. The counter keys on the current unix minute; the first increment
// in a window sets its 60-second expiry.
type NotificationRateLimit struct {
	client *redis.Client
	limit  int64
}

func NewNotificationRateLimit(client *redis.Client, perMinute int) *NotificationRateLimit {
	return &NotificationRateLimit{client: client, limit: int64(perMinute)}
}

func (l *NotificationRateLimit) key(merchantID uint64) string {
	return fmt.Sprintf("merchant:rate:%d:%d", merchantID, biztime.UnixMinute())
}

// Allow counts an attempt and reports whether it falls within the limit.
// The (limit+1)-th attempt in a window is the first one rejected.
func (l *NotificationRateLimit) Allow(ctx context.Context, merchantID uint64) (bool, error) {
	key := l.key(merchantID)

	current, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate counter: %w", err)
	}
	if current == 1 {
		if err := l.client.Expire(ctx, key, time.Minute).Err(); err != nil {
			return false, fmt.Errorf("failed to expire rate counter: %w", err)
		}
	}

	return current <= l.limit, nil
}
