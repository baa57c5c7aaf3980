package usecases

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payflow/internal/domain/outbox"
	"payflow/internal/domain/payment"
	vo "payflow/internal/domain/payment/valueobjects"
)

func seedPendingPayment(t *testing.T, repo *fakePaymentRepo) *payment.Payment {
	t.Helper()
	amount, err := vo.NewAmount("0.5")
	require.NoError(t, err)
	price, err := vo.NewAmount("100")
	require.NoError(t, err)

	p, err := payment.NewPayment(10, 20, 30, amount, price)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestResolveWebhookUseCase_Execute_Applied(t *testing.T) {
	paymentRepo := newFakePaymentRepo()
	outboxRepo := &fakeOutboxRepo{}
	p := seedPendingPayment(t, paymentRepo)

	uc := NewResolveWebhookUseCase(paymentRepo, outboxRepo, &nopLogger{})

	result, err := uc.Execute(context.Background(), ResolveWebhookCommand{
		PaymentID:      p.ID(),
		ReportedStatus: "finished",
	})
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Equal(t, "finished", result.Status)
	assert.Equal(t, "payment updated", result.Message)

	accepted := outboxRepo.find(outbox.EventProviderPaymentAccepted)
	require.NotNil(t, accepted)
	assert.Equal(t, outbox.StatusSuccess, accepted.Status())

	queued := outboxRepo.find(outbox.EventBrokerOutbox)
	require.NotNil(t, queued)
	assert.Equal(t, outbox.StatusPending, queued.Status())

	var dto payment.DTO
	require.NoError(t, json.Unmarshal([]byte(queued.Payload()), &dto))
	assert.Equal(t, p.ID(), dto.PaymentID)
	assert.Equal(t, "finished", dto.Status)

	notification := outboxRepo.find(outbox.EventMerchantNotificationSent)
	require.NotNil(t, notification)
	assert.Equal(t, outbox.StatusPending, notification.Status())
}

func TestResolveWebhookUseCase_Execute_FailedStatus(t *testing.T) {
	paymentRepo := newFakePaymentRepo()
	outboxRepo := &fakeOutboxRepo{}
	p := seedPendingPayment(t, paymentRepo)

	uc := NewResolveWebhookUseCase(paymentRepo, outboxRepo, &nopLogger{})

	result, err := uc.Execute(context.Background(), ResolveWebhookCommand{
		PaymentID:      p.ID(),
		ReportedStatus: "failed",
	})
	require.NoError(t, err)
	assert.True(t, result.Applied)

	accepted := outboxRepo.find(outbox.EventProviderPaymentAccepted)
	require.NotNil(t, accepted)
	assert.Equal(t, outbox.StatusFailed, accepted.Status())
}

func TestResolveWebhookUseCase_Execute_UnknownPayment(t *testing.T) {
	uc := NewResolveWebhookUseCase(newFakePaymentRepo(), &fakeOutboxRepo{}, &nopLogger{})

	result, err := uc.Execute(context.Background(), ResolveWebhookCommand{
		PaymentID:      999,
		ReportedStatus: "finished",
	})
	require.NoError(t, err)

	assert.False(t, result.Applied)
	assert.Equal(t, "payment not found", result.Message)
}

func TestResolveWebhookUseCase_Execute_Replay(t *testing.T) {
	paymentRepo := newFakePaymentRepo()
	outboxRepo := &fakeOutboxRepo{}
	p := seedPendingPayment(t, paymentRepo)

	uc := NewResolveWebhookUseCase(paymentRepo, outboxRepo, &nopLogger{})

	_, err := uc.Execute(context.Background(), ResolveWebhookCommand{
		PaymentID:      p.ID(),
		ReportedStatus: "finished",
	})
	require.NoError(t, err)

	// A replayed webhook reporting a different outcome changes nothing.
	result, err := uc.Execute(context.Background(), ResolveWebhookCommand{
		PaymentID:      p.ID(),
		ReportedStatus: "failed",
	})
	require.NoError(t, err)

	assert.False(t, result.Applied)
	assert.Equal(t, "already processed", result.Message)
	assert.Equal(t, "finished", result.Status)

	// And queues no second notification.
	entries, err := outboxRepo.ListByPayment(context.Background(), p.ID())
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestResolveWebhookUseCase_Execute_UnsupportedStatus(t *testing.T) {
	paymentRepo := newFakePaymentRepo()
	outboxRepo := &fakeOutboxRepo{}
	p := seedPendingPayment(t, paymentRepo)

	uc := NewResolveWebhookUseCase(paymentRepo, outboxRepo, &nopLogger{})

	result, err := uc.Execute(context.Background(), ResolveWebhookCommand{
		PaymentID:      p.ID(),
		ReportedStatus: "pending",
	})
	require.NoError(t, err)

	assert.False(t, result.Applied)
	assert.Equal(t, "unsupported status", result.Message)
	assert.Empty(t, outboxRepo.entries)
}
