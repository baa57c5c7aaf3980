// Package notification implements merchant delivery: deduplication, the
// per-merchant circuit breaker and rate limiter, the HTTP callback, and the
// delivery timeline recorded against the outbox store.
package notification

import (
	"context"
	"fmt"

	"payflow/internal/domain/outbox"
	"payflow/internal/domain/payment"
	apperrors "payflow/internal/shared/errors"
	"payflow/internal/shared/logger"
)

// Outcome tells the consumer how to settle the broker message.
type Outcome int

const (
	// OutcomeDelivered: callback accepted, ack the message.
	OutcomeDelivered Outcome = iota
	// OutcomeDuplicate: already delivered earlier, ack and skip.
	OutcomeDuplicate
	// OutcomeRejected: merchant returned 4xx, permanent, dead-letter.
	OutcomeRejected
	// OutcomeRetry: transient failure, redeliver with backoff.
	OutcomeRetry
	// OutcomeBlocked: circuit open, redeliver later without calling out.
	OutcomeBlocked
	// OutcomeRateLimited: over the per-minute budget, redeliver later.
	OutcomeRateLimited
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeRejected:
		return "rejected"
	case OutcomeRetry:
		return "retry"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeRateLimited:
		return "rate_limited"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// DedupStore marks notifications already delivered.
type DedupStore interface {
	IsDelivered(ctx context.Context, paymentID uint64) (bool, error)
	MarkDelivered(ctx context.Context, paymentID uint64) error
}

// CircuitBreaker is the shared per-merchant failure tracker.
type CircuitBreaker interface {
	IsOpen(ctx context.Context, merchantID uint64) (bool, error)
	RecordFailure(ctx context.Context, merchantID uint64) (fails int64, opened bool, err error)
	Reset(ctx context.Context, merchantID uint64) error
}

// RateLimiter bounds notification attempts per merchant per minute.
type RateLimiter interface {
	Allow(ctx context.Context, merchantID uint64) (bool, error)
}

// MerchantNotifier posts the payment DTO to the merchant callback.
type MerchantNotifier interface {
	Notify(ctx context.Context, dto payment.DTO) error
}

// DeliverUseCase applies the delivery policy for one broker message.
type DeliverUseCase struct {
	dedup      DedupStore
	circuit    CircuitBreaker
	rateLimit  RateLimiter
	notifier   MerchantNotifier
	outboxRepo outbox.Repository
	logger     logger.Interface
}

func NewDeliverUseCase(
	dedup DedupStore,
	circuit CircuitBreaker,
	rateLimit RateLimiter,
	notifier MerchantNotifier,
	outboxRepo outbox.Repository,
	logger logger.Interface,
) *DeliverUseCase {
	return &DeliverUseCase{
		dedup:      dedup,
		circuit:    circuit,
		rateLimit:  rateLimit,
		notifier:   notifier,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

func (uc *DeliverUseCase) Execute(ctx context.Context, dto payment.DTO) (Outcome, error) {
	delivered, err := uc.dedup.IsDelivered(ctx, dto.PaymentID)
	if err != nil {
		return OutcomeRetry, err
	}
	if delivered {
		return OutcomeDuplicate, nil
	}

	open, err := uc.circuit.IsOpen(ctx, dto.MerchantID)
	if err != nil {
		return OutcomeRetry, err
	}
	if open {
		uc.recordTimeline(ctx, dto.PaymentID, outbox.StatusBlocked, "merchant blocked (circuit open)")
		return OutcomeBlocked, nil
	}

	allowed, err := uc.rateLimit.Allow(ctx, dto.MerchantID)
	if err != nil {
		return OutcomeRetry, err
	}
	if !allowed {
		uc.recordTimeline(ctx, dto.PaymentID, outbox.StatusRetrying, "merchant rate limit exceeded")
		return OutcomeRateLimited, nil
	}

	uc.recordTimeline(ctx, dto.PaymentID, outbox.StatusProcessing, "sending notification to merchant")

	err = uc.notifier.Notify(ctx, dto)
	if err == nil {
		if resetErr := uc.circuit.Reset(ctx, dto.MerchantID); resetErr != nil {
			uc.logger.Errorw("failed to reset failure counter", "error", resetErr, "merchant_id", dto.MerchantID)
		}
		if dedupErr := uc.dedup.MarkDelivered(ctx, dto.PaymentID); dedupErr != nil {
			uc.logger.Errorw("failed to set dedup marker", "error", dedupErr, "payment_id", dto.PaymentID)
		}
		uc.recordTimeline(ctx, dto.PaymentID, outbox.StatusSuccess, "merchant accepted notification")
		return OutcomeDelivered, nil
	}

	if !apperrors.IsRetryable(err) {
		uc.recordTimeline(ctx, dto.PaymentID, outbox.StatusFailed, "merchant rejected notification: "+err.Error())
		return OutcomeRejected, nil
	}

	fails, opened, cbErr := uc.circuit.RecordFailure(ctx, dto.MerchantID)
	if cbErr != nil {
		uc.logger.Errorw("failed to record merchant failure", "error", cbErr, "merchant_id", dto.MerchantID)
	}
	if opened {
		uc.recordTimeline(ctx, dto.PaymentID, outbox.StatusBlocked,
			fmt.Sprintf("circuit opened after %d consecutive failures", fails))
	} else {
		uc.recordTimeline(ctx, dto.PaymentID, outbox.StatusRetrying,
			fmt.Sprintf("merchant unavailable, retry scheduled (failure %d)", fails))
	}
	return OutcomeRetry, nil
}

// MarkExhausted records that the message spent its retry budget and was
// dead-lettered.
func (uc *DeliverUseCase) MarkExhausted(ctx context.Context, paymentID uint64, attempts int) {
	uc.recordTimeline(ctx, paymentID, outbox.StatusFailed,
		fmt.Sprintf("notification failed permanently after %d attempts, dead-lettered", attempts))
}

// recordTimeline appends an outcome line to the payment's
// MerchantNotificationSent row. Timeline writes never fail a delivery.
func (uc *DeliverUseCase) recordTimeline(ctx context.Context, paymentID uint64, status outbox.Status, line string) {
	entry, err := uc.outboxRepo.GetByPaymentAndType(ctx, paymentID, outbox.EventMerchantNotificationSent)
	if err != nil {
		uc.logger.Errorw("failed to load notification log", "error", err, "payment_id", paymentID)
		return
	}
	if entry == nil {
		entry = outbox.NewEntry(paymentID, outbox.EventMerchantNotificationSent, status, line, "")
		if err := uc.outboxRepo.Append(ctx, entry); err != nil {
			uc.logger.Errorw("failed to append notification log", "error", err, "payment_id", paymentID)
		}
		return
	}

	entry.RecordDelivery(status, line)
	if err := uc.outboxRepo.Update(ctx, entry); err != nil {
		uc.logger.Errorw("failed to update notification log", "error", err, "payment_id", paymentID)
	}
}
