package subscription

import "context"

// Repository loads and persists merchant usage rows. GetActive returns the
// merchant's subscription joined with its plan quota; (nil, nil) means no
// active subscription exists.
type Repository interface {
	GetActive(ctx context.Context, merchantID, subscriptionID uint64) (*UserSubscription, error)
	Update(ctx context.Context, us *UserSubscription) error
}
