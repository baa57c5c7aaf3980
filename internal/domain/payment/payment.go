package payment

import (
	"fmt"
	"time"

	vo "payflow/internal/domain/payment/valueobjects"
	"payflow/internal/shared/biztime"
)

// Payment is the aggregate at the center of the lifecycle. One payment
// exists per order; once it reaches a terminal status it never changes.
type Payment struct {
	id         uint64
	orderID    uint64
	merchantID uint64
	providerID uint64
	amount     vo.Amount
	price      vo.Amount
	status     vo.PaymentStatus

	createdAt time.Time
	updatedAt time.Time
}

func NewPayment(orderID, merchantID, providerID uint64, amount, price vo.Amount) (*Payment, error) {
	if orderID == 0 {
		return nil, fmt.Errorf("order ID is required")
	}
	if merchantID == 0 {
		return nil, fmt.Errorf("merchant ID is required")
	}
	if providerID == 0 {
		return nil, fmt.Errorf("provider ID is required")
	}
	if amount.IsZero() {
		return nil, fmt.Errorf("amount is required")
	}
	if price.IsZero() {
		return nil, fmt.Errorf("price is required")
	}

	now := biztime.NowUTC()
	return &Payment{
		orderID:    orderID,
		merchantID: merchantID,
		providerID: providerID,
		amount:     amount,
		price:      price,
		status:     vo.PaymentStatusPending,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Resolve applies the provider-reported terminal status. Calling it on an
// already-terminal payment returns ErrAlreadyResolved so replayed webhooks
// can be short-circuited instead of double-applied.
func (p *Payment) Resolve(target vo.PaymentStatus) error {
	if !target.IsFinal() {
		return fmt.Errorf("cannot resolve payment to non-terminal status %s", target)
	}
	if p.status.IsFinal() {
		return ErrAlreadyResolved
	}

	p.status = target
	p.updatedAt = biztime.NowUTC()
	return nil
}

func (p *Payment) ID() uint64 {
	return p.id
}

func (p *Payment) OrderID() uint64 {
	return p.orderID
}

func (p *Payment) MerchantID() uint64 {
	return p.merchantID
}

func (p *Payment) ProviderID() uint64 {
	return p.providerID
}

func (p *Payment) Amount() vo.Amount {
	return p.amount
}

func (p *Payment) Price() vo.Amount {
	return p.price
}

func (p *Payment) Status() vo.PaymentStatus {
	return p.status
}

func (p *Payment) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Payment) UpdatedAt() time.Time {
	return p.updatedAt
}

// SetID sets the payment ID after persistence (used by repository after Create)
func (p *Payment) SetID(id uint64) {
	p.id = id
}

// DTO returns the wire representation delivered to merchants.
func (p *Payment) DTO() DTO {
	return DTO{
		PaymentID:  p.id,
		OrderID:    p.orderID,
		MerchantID: p.merchantID,
		Status:     p.status.String(),
		Amount:     p.amount.String(),
		Price:      p.price.String(),
	}
}

func ReconstructPayment(
	id, orderID, merchantID, providerID uint64,
	amount, price vo.Amount,
	status vo.PaymentStatus,
	createdAt, updatedAt time.Time,
) *Payment {
	return &Payment{
		id:         id,
		orderID:    orderID,
		merchantID: merchantID,
		providerID: providerID,
		amount:     amount,
		price:      price,
		status:     status,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}
