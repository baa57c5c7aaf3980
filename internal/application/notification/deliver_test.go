package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payflow/internal/domain/outbox"
	"payflow/internal/domain/payment"
	apperrors "payflow/internal/shared/errors"
	"payflow/internal/shared/logger"
)

type nopLogger struct{}

func (l *nopLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Errorw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) With(args ...any) logger.Interface               { return l }
func (l *nopLogger) Named(name string) logger.Interface              { return l }

type fakeDedup struct {
	delivered map[uint64]bool
}

func (f *fakeDedup) IsDelivered(ctx context.Context, paymentID uint64) (bool, error) {
	return f.delivered[paymentID], nil
}

func (f *fakeDedup) MarkDelivered(ctx context.Context, paymentID uint64) error {
	if f.delivered == nil {
		f.delivered = make(map[uint64]bool)
	}
	f.delivered[paymentID] = true
	return nil
}

type fakeCircuit struct {
	open      bool
	fails     int64
	failLimit int64
	resets    int
}

func (f *fakeCircuit) IsOpen(ctx context.Context, merchantID uint64) (bool, error) {
	return f.open, nil
}

func (f *fakeCircuit) RecordFailure(ctx context.Context, merchantID uint64) (int64, bool, error) {
	f.fails++
	if f.fails >= f.failLimit {
		f.open = true
		return f.fails, true, nil
	}
	return f.fails, false, nil
}

func (f *fakeCircuit) Reset(ctx context.Context, merchantID uint64) error {
	f.fails = 0
	f.resets++
	return nil
}

type fakeRateLimiter struct {
	allowed bool
}

func (f *fakeRateLimiter) Allow(ctx context.Context, merchantID uint64) (bool, error) {
	return f.allowed, nil
}

type fakeNotifier struct {
	err   error
	calls int
}

func (f *fakeNotifier) Notify(ctx context.Context, dto payment.DTO) error {
	f.calls++
	return f.err
}

type fakeOutboxRepo struct {
	entries []*outbox.Entry
}

func (f *fakeOutboxRepo) Append(ctx context.Context, e *outbox.Entry) error {
	e.SetID(uint64(len(f.entries) + 1))
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeOutboxRepo) ClaimBatch(ctx context.Context, eventType outbox.EventType, limit int) ([]*outbox.Entry, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) Update(ctx context.Context, e *outbox.Entry) error {
	return nil
}

func (f *fakeOutboxRepo) GetByPaymentAndType(ctx context.Context, paymentID uint64, eventType outbox.EventType) (*outbox.Entry, error) {
	for _, e := range f.entries {
		if e.PaymentID() == paymentID && e.EventType() == eventType {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeOutboxRepo) ListByPayment(ctx context.Context, paymentID uint64) ([]*outbox.Entry, error) {
	return f.entries, nil
}

type deliverFixture struct {
	uc         *DeliverUseCase
	dedup      *fakeDedup
	circuit    *fakeCircuit
	rateLimit  *fakeRateLimiter
	notifier   *fakeNotifier
	outboxRepo *fakeOutboxRepo
}

func newDeliverFixture() *deliverFixture {
	f := &deliverFixture{
		dedup:      &fakeDedup{},
		circuit:    &fakeCircuit{failLimit: 3},
		rateLimit:  &fakeRateLimiter{allowed: true},
		notifier:   &fakeNotifier{},
		outboxRepo: &fakeOutboxRepo{},
	}
	f.outboxRepo.Append(context.Background(),
		outbox.NewEntry(1, outbox.EventMerchantNotificationSent, outbox.StatusPending, "awaiting merchant delivery", ""))
	f.uc = NewDeliverUseCase(f.dedup, f.circuit, f.rateLimit, f.notifier, f.outboxRepo, &nopLogger{})
	return f
}

func sampleDTO() payment.DTO {
	return payment.DTO{
		PaymentID:  1,
		OrderID:    10,
		MerchantID: 20,
		Status:     "finished",
		Amount:     "0.5",
		Price:      "100",
	}
}

func notificationEntry(t *testing.T, repo *fakeOutboxRepo) *outbox.Entry {
	t.Helper()
	e, err := repo.GetByPaymentAndType(context.Background(), 1, outbox.EventMerchantNotificationSent)
	require.NoError(t, err)
	require.NotNil(t, e)
	return e
}

func TestDeliverUseCase_Execute_Delivered(t *testing.T) {
	f := newDeliverFixture()

	outcome, err := f.uc.Execute(context.Background(), sampleDTO())
	require.NoError(t, err)

	assert.Equal(t, OutcomeDelivered, outcome)
	assert.Equal(t, 1, f.notifier.calls)
	assert.Equal(t, 1, f.circuit.resets)
	assert.True(t, f.dedup.delivered[1])

	e := notificationEntry(t, f.outboxRepo)
	assert.Equal(t, outbox.StatusSuccess, e.Status())
	assert.Contains(t, e.Message(), "merchant accepted notification")
}

func TestDeliverUseCase_Execute_Duplicate(t *testing.T) {
	f := newDeliverFixture()
	f.dedup.delivered = map[uint64]bool{1: true}

	outcome, err := f.uc.Execute(context.Background(), sampleDTO())
	require.NoError(t, err)

	assert.Equal(t, OutcomeDuplicate, outcome)
	assert.Zero(t, f.notifier.calls)
}

func TestDeliverUseCase_Execute_CircuitOpen(t *testing.T) {
	f := newDeliverFixture()
	f.circuit.open = true

	outcome, err := f.uc.Execute(context.Background(), sampleDTO())
	require.NoError(t, err)

	assert.Equal(t, OutcomeBlocked, outcome)
	assert.Zero(t, f.notifier.calls)

	e := notificationEntry(t, f.outboxRepo)
	assert.Equal(t, outbox.StatusBlocked, e.Status())
	assert.Contains(t, e.Message(), "circuit open")
}

func TestDeliverUseCase_Execute_RateLimited(t *testing.T) {
	f := newDeliverFixture()
	f.rateLimit.allowed = false

	outcome, err := f.uc.Execute(context.Background(), sampleDTO())
	require.NoError(t, err)

	assert.Equal(t, OutcomeRateLimited, outcome)
	assert.Zero(t, f.notifier.calls)

	e := notificationEntry(t, f.outboxRepo)
	assert.Equal(t, outbox.StatusRetrying, e.Status())
	assert.Contains(t, e.Message(), "rate limit exceeded")
}

func TestDeliverUseCase_Execute_Rejected(t *testing.T) {
	f := newDeliverFixture()
	f.notifier.err = apperrors.NewUpstreamRejectedError("merchant rejected notification", "status 400")

	outcome, err := f.uc.Execute(context.Background(), sampleDTO())
	require.NoError(t, err)

	assert.Equal(t, OutcomeRejected, outcome)
	assert.False(t, f.dedup.delivered[1])
	assert.Zero(t, f.circuit.fails)

	e := notificationEntry(t, f.outboxRepo)
	assert.Equal(t, outbox.StatusFailed, e.Status())
}

func TestDeliverUseCase_Execute_MerchantThrottled(t *testing.T) {
	f := newDeliverFixture()
	f.notifier.err = apperrors.NewRateLimitedError("merchant throttled notification", "status=429")

	// Merchant-side throttling is transient: the message is retried, never
	// dead-lettered as a rejection.
	outcome, err := f.uc.Execute(context.Background(), sampleDTO())
	require.NoError(t, err)

	assert.Equal(t, OutcomeRetry, outcome)
	assert.False(t, f.dedup.delivered[1])
}

func TestDeliverUseCase_Execute_TransientFailure(t *testing.T) {
	f := newDeliverFixture()
	f.notifier.err = apperrors.NewUpstreamUnavailableError("merchant unreachable")

	outcome, err := f.uc.Execute(context.Background(), sampleDTO())
	require.NoError(t, err)

	assert.Equal(t, OutcomeRetry, outcome)
	assert.Equal(t, int64(1), f.circuit.fails)

	e := notificationEntry(t, f.outboxRepo)
	assert.Equal(t, outbox.StatusRetrying, e.Status())
	assert.Contains(t, e.Message(), "retry scheduled")
}

func TestDeliverUseCase_Execute_CircuitOpensAtLimit(t *testing.T) {
	f := newDeliverFixture()
	f.notifier.err = apperrors.NewUpstreamUnavailableError("merchant unreachable")

	for i := 0; i < 2; i++ {
		outcome, err := f.uc.Execute(context.Background(), sampleDTO())
		require.NoError(t, err)
		assert.Equal(t, OutcomeRetry, outcome)
	}

	// Third consecutive failure trips the breaker.
	outcome, err := f.uc.Execute(context.Background(), sampleDTO())
	require.NoError(t, err)
	assert.Equal(t, OutcomeRetry, outcome)
	assert.True(t, f.circuit.open)

	e := notificationEntry(t, f.outboxRepo)
	assert.Equal(t, outbox.StatusBlocked, e.Status())
	assert.Contains(t, e.Message(), "circuit opened after 3 consecutive failures")

	// The next attempt is refused without a callback.
	outcome, err = f.uc.Execute(context.Background(), sampleDTO())
	require.NoError(t, err)
	assert.Equal(t, OutcomeBlocked, outcome)
	assert.Equal(t, 3, f.notifier.calls)
}

func TestDeliverUseCase_MarkExhausted(t *testing.T) {
	f := newDeliverFixture()

	f.uc.MarkExhausted(context.Background(), 1, 5)

	e := notificationEntry(t, f.outboxRepo)
	assert.Equal(t, outbox.StatusFailed, e.Status())
	assert.Contains(t, e.Message(), "failed permanently after 5 attempts")
}
