package subscription

import (
	"errors"
	"time"

	"payflow/internal/shared/biztime"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ErrSubscriptionInactive is returned when a debit is attempted against a
// subscription that is not active.
var ErrSubscriptionInactive = errors.New("subscription inactive")

// UserSubscription tracks a merchant's usage against a subscription plan.
// usedTokens is monotonically non-decreasing; the status flips to Inactive
// exactly when usedTokens reaches the plan quota and never flips back.
type UserSubscription struct {
	id             uint64
	merchantID     uint64
	subscriptionID uint64
	usedTokens     int64
	tokenQuota     int64
	status         Status

	createdAt time.Time
	updatedAt time.Time
}

// ConsumeToken debits one usage unit. The quota boundary is inclusive: the
// debit that brings usedTokens up to the quota is allowed and deactivates
// the subscription for all later calls.
func (us *UserSubscription) ConsumeToken() error {
	if us.status != StatusActive {
		return ErrSubscriptionInactive
	}

	us.usedTokens++
	if us.usedTokens >= us.tokenQuota {
		us.status = StatusInactive
	}
	us.updatedAt = biztime.NowUTC()
	return nil
}

func (us *UserSubscription) ID() uint64 {
	return us.id
}

func (us *UserSubscription) MerchantID() uint64 {
	return us.merchantID
}

func (us *UserSubscription) SubscriptionID() uint64 {
	return us.subscriptionID
}

func (us *UserSubscription) UsedTokens() int64 {
	return us.usedTokens
}

func (us *UserSubscription) TokenQuota() int64 {
	return us.tokenQuota
}

func (us *UserSubscription) Status() Status {
	return us.status
}

func (us *UserSubscription) UpdatedAt() time.Time {
	return us.updatedAt
}

// ReconstructUserSubscription restores a UserSubscription from persistence.
// tokenQuota comes from the joined subscription row.
func ReconstructUserSubscription(
	id, merchantID, subscriptionID uint64,
	usedTokens, tokenQuota int64,
	status Status,
	createdAt, updatedAt time.Time,
) *UserSubscription {
	return &UserSubscription{
		id:             id,
		merchantID:     merchantID,
		subscriptionID: subscriptionID,
		usedTokens:     usedTokens,
		tokenQuota:     tokenQuota,
		status:         status,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}
