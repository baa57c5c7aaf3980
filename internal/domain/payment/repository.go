package payment

import (
	"context"

	vo "payflow/internal/domain/payment/valueobjects"
)

// Repository persists payments in the payment store. GetByOrderID returning
// (nil, nil) means no payment exists for the order.
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uint64) (*Payment, error)
	GetByOrderID(ctx context.Context, orderID uint64) (*Payment, error)

	// ResolvePending transitions the payment to the given terminal status
	// only when it is still Pending, reporting whether the transition was
	// applied. Concurrent resolvers (webhook vs. provider-failure
	// compensation) race safely: exactly one wins.
	ResolvePending(ctx context.Context, id uint64, status vo.PaymentStatus) (bool, error)
}
