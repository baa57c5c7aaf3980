package usecases

import (
	"context"
	"fmt"

	"payflow/internal/application/payment/providergateway"
	"payflow/internal/domain/apirequest"
	"payflow/internal/domain/outbox"
	"payflow/internal/domain/payment"
	vo "payflow/internal/domain/payment/valueobjects"
	"payflow/internal/domain/provider"
	"payflow/internal/domain/subscription"
	apperrors "payflow/internal/shared/errors"
	"payflow/internal/shared/logger"
)

// TxRunner runs a function inside a payment-store transaction.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type CreatePaymentCommand struct {
	OrderID        uint64
	Amount         string
	Price          string
	ProviderAlias  string
	MerchantID     uint64
	SubscriptionID uint64
	EventID        string
	Source         string
}

type CreatePaymentResult struct {
	PaymentID     uint64
	Status        string
	PaymentURL    string
	AlreadyExists bool
}

// CreatePaymentUseCase creates a payment, debits the subscription quota and
// obtains a payment URL from the provider. The database work is one
// transaction; the outbox appends and the provider call happen after commit
// so a provider outage can never hold payment-store locks.
type CreatePaymentUseCase struct {
	tx               TxRunner
	paymentRepo      payment.Repository
	subscriptionRepo subscription.Repository
	apiRequestRepo   apirequest.Repository
	providerRepo     provider.Repository
	outboxRepo       outbox.Repository
	gateway          providergateway.Gateway
	logger           logger.Interface
}

func NewCreatePaymentUseCase(
	tx TxRunner,
	paymentRepo payment.Repository,
	subscriptionRepo subscription.Repository,
	apiRequestRepo apirequest.Repository,
	providerRepo provider.Repository,
	outboxRepo outbox.Repository,
	gateway providergateway.Gateway,
	logger logger.Interface,
) *CreatePaymentUseCase {
	return &CreatePaymentUseCase{
		tx:               tx,
		paymentRepo:      paymentRepo,
		subscriptionRepo: subscriptionRepo,
		apiRequestRepo:   apiRequestRepo,
		providerRepo:     providerRepo,
		outboxRepo:       outboxRepo,
		gateway:          gateway,
		logger:           logger,
	}
}

func (uc *CreatePaymentUseCase) Execute(ctx context.Context, cmd CreatePaymentCommand) (*CreatePaymentResult, error) {
	amount, err := vo.NewAmount(cmd.Amount)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid amount", err.Error())
	}
	price, err := vo.NewAmount(cmd.Price)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid price", err.Error())
	}
	if cmd.EventID == "" {
		return nil, apperrors.NewValidationError("event_id is required")
	}

	var (
		created *payment.Payment
		prov    *provider.Provider
		replay  *CreatePaymentResult
	)

	err = uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		prov, err = uc.providerRepo.GetByAlias(txCtx, cmd.ProviderAlias)
		if err != nil {
			return err
		}
		if prov == nil {
			return apperrors.NewNotFoundError("provider not found", cmd.ProviderAlias)
		}

		// One payment per order: a replayed request returns the existing
		// payment with no further side effects.
		existing, err := uc.paymentRepo.GetByOrderID(txCtx, cmd.OrderID)
		if err != nil {
			return err
		}
		if existing != nil {
			replay = &CreatePaymentResult{
				PaymentID:     existing.ID(),
				Status:        existing.Status().String(),
				AlreadyExists: true,
			}
			return nil
		}

		sub, err := uc.subscriptionRepo.GetActive(txCtx, cmd.MerchantID, cmd.SubscriptionID)
		if err != nil {
			return err
		}
		if sub == nil {
			return apperrors.NewNotFoundError("active subscription not found",
				fmt.Sprintf("merchant_id=%d subscription_id=%d", cmd.MerchantID, cmd.SubscriptionID))
		}

		p, err := payment.NewPayment(cmd.OrderID, cmd.MerchantID, prov.ID(), amount, price)
		if err != nil {
			return apperrors.NewValidationError("invalid payment", err.Error())
		}
		if err := uc.paymentRepo.Create(txCtx, p); err != nil {
			// A concurrent request for the same order won the insert race.
			// That is a replay, same as finding the payment up front.
			if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
				winner, getErr := uc.paymentRepo.GetByOrderID(txCtx, cmd.OrderID)
				if getErr != nil {
					return getErr
				}
				if winner != nil {
					replay = &CreatePaymentResult{
						PaymentID:     winner.ID(),
						Status:        winner.Status().String(),
						AlreadyExists: true,
					}
					return nil
				}
			}
			return err
		}

		if err := sub.ConsumeToken(); err != nil {
			return apperrors.NewNotFoundError("active subscription not found", err.Error())
		}
		if err := uc.subscriptionRepo.Update(txCtx, sub); err != nil {
			return err
		}

		// Duplicate event_id fails here and rolls the whole transaction
		// back, so a retried request can never double-debit.
		req := apirequest.NewAPIRequest(cmd.EventID, p.ID(), cmd.MerchantID, cmd.SubscriptionID, cmd.Amount, cmd.Source)
		if err := uc.apiRequestRepo.Create(txCtx, req); err != nil {
			return err
		}

		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if replay != nil {
		uc.logger.Infow("payment already exists for order",
			"order_id", cmd.OrderID, "payment_id", replay.PaymentID)
		return replay, nil
	}

	uc.appendLog(ctx, outbox.NewEntry(created.ID(), outbox.EventPaymentCreated, outbox.StatusSuccess,
		"payment created", ""))

	requestLog := outbox.NewEntry(created.ID(), outbox.EventProviderRequestSent, outbox.StatusProcessing,
		"sending payment link request to provider", "")
	uc.appendLog(ctx, requestLog)

	linkResp, err := uc.gateway.CreatePaymentLink(ctx, providergateway.PaymentLinkRequest{
		PaymentID:  created.ID(),
		MerchantID: cmd.MerchantID,
		Provider:   prov.Alias(),
	})
	if err != nil {
		uc.logger.Errorw("provider call failed, failing payment",
			"error", err, "payment_id", created.ID())

		if _, markErr := uc.paymentRepo.ResolvePending(ctx, created.ID(), vo.PaymentStatusFailed); markErr != nil {
			uc.logger.Errorw("failed to mark payment failed", "error", markErr, "payment_id", created.ID())
		}
		requestLog.RecordDelivery(outbox.StatusFailed, "provider request failed: "+err.Error())
		uc.updateLog(ctx, requestLog)

		return nil, err
	}

	requestLog.RecordDelivery(outbox.StatusSuccess, "provider returned payment url")
	uc.updateLog(ctx, requestLog)

	uc.logger.Infow("payment created",
		"payment_id", created.ID(), "order_id", cmd.OrderID, "provider", prov.Alias())

	return &CreatePaymentResult{
		PaymentID:  created.ID(),
		Status:     created.Status().String(),
		PaymentURL: linkResp.PaymentURL,
	}, nil
}

// Outbox-store writes are best effort relative to the payment: a payment
// must not fail because its audit row could not be written.
func (uc *CreatePaymentUseCase) appendLog(ctx context.Context, e *outbox.Entry) {
	if err := uc.outboxRepo.Append(ctx, e); err != nil {
		uc.logger.Errorw("failed to append payment log", "error", err,
			"payment_id", e.PaymentID(), "event_type", e.EventType().String())
	}
}

func (uc *CreatePaymentUseCase) updateLog(ctx context.Context, e *outbox.Entry) {
	if e.ID() == 0 {
		return
	}
	if err := uc.outboxRepo.Update(ctx, e); err != nil {
		uc.logger.Errorw("failed to update payment log", "error", err,
			"payment_id", e.PaymentID(), "event_type", e.EventType().String())
	}
}
