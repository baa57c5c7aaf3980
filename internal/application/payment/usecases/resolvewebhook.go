package usecases

import (
	"context"
	"encoding/json"

	"payflow/internal/domain/outbox"
	"payflow/internal/domain/payment"
	vo "payflow/internal/domain/payment/valueobjects"
	apperrors "payflow/internal/shared/errors"
	"payflow/internal/shared/logger"
)

type ResolveWebhookCommand struct {
	PaymentID      uint64
	ReportedStatus string
}

// ResolveWebhookResult is always returned with a 200 to the provider:
// unknown payments and replays are reported in Message, never as errors,
// so providers do not retry forever on typos or duplicates.
type ResolveWebhookResult struct {
	Applied   bool
	PaymentID uint64
	Status    string
	Message   string
}

// ResolveWebhookUseCase applies the provider-reported terminal status and
// queues the merchant notification through the outbox.
type ResolveWebhookUseCase struct {
	paymentRepo payment.Repository
	outboxRepo  outbox.Repository
	logger      logger.Interface
}

func NewResolveWebhookUseCase(
	paymentRepo payment.Repository,
	outboxRepo outbox.Repository,
	logger logger.Interface,
) *ResolveWebhookUseCase {
	return &ResolveWebhookUseCase{
		paymentRepo: paymentRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
	}
}

func (uc *ResolveWebhookUseCase) Execute(ctx context.Context, cmd ResolveWebhookCommand) (*ResolveWebhookResult, error) {
	p, err := uc.paymentRepo.GetByID(ctx, cmd.PaymentID)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return &ResolveWebhookResult{Message: "payment not found"}, nil
		}
		return nil, err
	}

	if p.Status().IsFinal() {
		return &ResolveWebhookResult{
			PaymentID: p.ID(),
			Status:    p.Status().String(),
			Message:   "already processed",
		}, nil
	}

	target, err := vo.ParsePaymentStatus(cmd.ReportedStatus)
	if err != nil {
		return &ResolveWebhookResult{
			PaymentID: p.ID(),
			Status:    p.Status().String(),
			Message:   "unsupported status",
		}, nil
	}

	applied, err := uc.paymentRepo.ResolvePending(ctx, p.ID(), target)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Another webhook or the provider-failure compensation won the race.
		current, err := uc.paymentRepo.GetByID(ctx, p.ID())
		if err != nil {
			return nil, err
		}
		return &ResolveWebhookResult{
			PaymentID: current.ID(),
			Status:    current.Status().String(),
			Message:   "already processed",
		}, nil
	}

	if err := p.Resolve(target); err != nil {
		return nil, err
	}

	acceptedStatus := outbox.StatusSuccess
	if target == vo.PaymentStatusFailed {
		acceptedStatus = outbox.StatusFailed
	}
	uc.appendLog(ctx, outbox.NewEntry(p.ID(), outbox.EventProviderPaymentAccepted, acceptedStatus,
		"provider reported payment "+target.String(), ""))

	payload, err := json.Marshal(p.DTO())
	if err != nil {
		return nil, err
	}
	uc.appendLog(ctx, outbox.NewEntry(p.ID(), outbox.EventBrokerOutbox, outbox.StatusPending,
		"queued for broker delivery", string(payload)))
	uc.appendLog(ctx, outbox.NewEntry(p.ID(), outbox.EventMerchantNotificationSent, outbox.StatusPending,
		"awaiting merchant delivery", ""))

	uc.logger.Infow("payment resolved",
		"payment_id", p.ID(), "status", target.String())

	return &ResolveWebhookResult{
		Applied:   true,
		PaymentID: p.ID(),
		Status:    target.String(),
		Message:   "payment updated",
	}, nil
}

func (uc *ResolveWebhookUseCase) appendLog(ctx context.Context, e *outbox.Entry) {
	if err := uc.outboxRepo.Append(ctx, e); err != nil {
		uc.logger.Errorw("failed to append payment log", "error", err,
			"payment_id", e.PaymentID(), "event_type", e.EventType().String())
	}
}
