package usecases

import (
	"context"
	"time"

	"payflow/internal/domain/outbox"
	"payflow/internal/domain/payment"
)

// TimelineEntry is one payment log row in presentation form.
type TimelineEntry struct {
	ID          uint64     `json:"id"`
	EventType   string     `json:"event_type"`
	Status      string     `json:"status"`
	Message     string     `json:"message"`
	RetryCount  int        `json:"retry_count"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// PaymentTimelineUseCase exposes the full delivery timeline for a payment,
// the observable closing of the notification loop.
type PaymentTimelineUseCase struct {
	paymentRepo payment.Repository
	outboxRepo  outbox.Repository
}

func NewPaymentTimelineUseCase(paymentRepo payment.Repository, outboxRepo outbox.Repository) *PaymentTimelineUseCase {
	return &PaymentTimelineUseCase{paymentRepo: paymentRepo, outboxRepo: outboxRepo}
}

func (uc *PaymentTimelineUseCase) Execute(ctx context.Context, paymentID uint64) ([]TimelineEntry, error) {
	if _, err := uc.paymentRepo.GetByID(ctx, paymentID); err != nil {
		return nil, err
	}

	entries, err := uc.outboxRepo.ListByPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	timeline := make([]TimelineEntry, len(entries))
	for i, e := range entries {
		timeline[i] = TimelineEntry{
			ID:          e.ID(),
			EventType:   e.EventType().String(),
			Status:      e.Status().String(),
			Message:     e.Message(),
			RetryCount:  e.RetryCount(),
			NextRetryAt: e.NextRetryAt(),
			CreatedAt:   e.CreatedAt(),
		}
	}
	return timeline, nil
}
