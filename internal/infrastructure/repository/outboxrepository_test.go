package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"payflow/internal/domain/outbox"
	"payflow/internal/infrastructure/persistence/models"
	"payflow/internal/shared/biztime"
)

func setupOutboxDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.PaymentLogModel{}))
	return db
}

func appendWorkRow(t *testing.T, repo *OutboxRepository, paymentID uint64) *outbox.Entry {
	t.Helper()
	e := outbox.NewEntry(paymentID, outbox.EventBrokerOutbox, outbox.StatusPending, "queued for broker delivery", `{"payment_id":1}`)
	require.NoError(t, repo.Append(context.Background(), e))
	return e
}

func TestOutboxRepository_AppendAndList(t *testing.T) {
	repo := NewOutboxRepository(setupOutboxDB(t))
	ctx := context.Background()

	first := appendWorkRow(t, repo, 1)
	assert.NotZero(t, first.ID())

	second := outbox.NewEntry(1, outbox.EventMerchantNotificationSent, outbox.StatusPending, "awaiting merchant delivery", "")
	require.NoError(t, repo.Append(ctx, second))

	entries, err := repo.ListByPayment(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, outbox.EventBrokerOutbox, entries[0].EventType())
	assert.Equal(t, outbox.EventMerchantNotificationSent, entries[1].EventType())
	assert.Equal(t, `{"payment_id":1}`, entries[0].Payload())
}

func TestOutboxRepository_ClaimBatch(t *testing.T) {
	repo := NewOutboxRepository(setupOutboxDB(t))
	ctx := context.Background()

	for i := uint64(1); i <= 3; i++ {
		appendWorkRow(t, repo, i)
	}

	claimed, err := repo.ClaimBatch(ctx, outbox.EventBrokerOutbox, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 3)
	for _, e := range claimed {
		assert.Equal(t, outbox.StatusProcessing, e.Status())
	}

	// Claimed rows are invisible to a second claimer.
	again, err := repo.ClaimBatch(ctx, outbox.EventBrokerOutbox, 10)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestOutboxRepository_ClaimBatch_RespectsLimitAndOrder(t *testing.T) {
	repo := NewOutboxRepository(setupOutboxDB(t))
	ctx := context.Background()

	first := appendWorkRow(t, repo, 1)
	appendWorkRow(t, repo, 2)

	claimed, err := repo.ClaimBatch(ctx, outbox.EventBrokerOutbox, 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, first.ID(), claimed[0].ID())
}

func TestOutboxRepository_ClaimBatch_SkipsOtherEventTypes(t *testing.T) {
	repo := NewOutboxRepository(setupOutboxDB(t))
	ctx := context.Background()

	e := outbox.NewEntry(1, outbox.EventPaymentCreated, outbox.StatusPending, "payment created", "")
	require.NoError(t, repo.Append(ctx, e))

	claimed, err := repo.ClaimBatch(ctx, outbox.EventBrokerOutbox, 10)
	require.NoError(t, err)
	assert.Empty(t, claimed)
}

func TestOutboxRepository_ClaimBatch_HonorsBackoff(t *testing.T) {
	repo := NewOutboxRepository(setupOutboxDB(t))
	ctx := context.Background()

	e := appendWorkRow(t, repo, 1)
	require.False(t, e.ScheduleRetry(5))
	require.NoError(t, repo.Update(ctx, e))

	// The retry is scheduled in the future, so nothing is eligible yet.
	claimed, err := repo.ClaimBatch(ctx, outbox.EventBrokerOutbox, 10)
	require.NoError(t, err)
	assert.Empty(t, claimed)

	// Force the backoff into the past and the row becomes claimable.
	past := biztime.NowUTC().Add(-time.Minute)
	require.NoError(t, repo.db.Model(&models.PaymentLogModel{}).
		Where("id = ?", e.ID()).
		Update("next_retry_at", past).Error)

	claimed, err = repo.ClaimBatch(ctx, outbox.EventBrokerOutbox, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, 1, claimed[0].RetryCount())
}

func TestOutboxRepository_ClaimBatch_ConcurrentClaimersClaimEachRowOnce(t *testing.T) {
	db := setupOutboxDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single shared connection keeps every claimer on the same in-memory
	// database while their claim loops interleave.
	sqlDB.SetMaxOpenConns(1)

	repo := NewOutboxRepository(db)
	ctx := context.Background()

	const rows = 40
	for i := uint64(1); i <= rows; i++ {
		appendWorkRow(t, repo, i)
	}

	var (
		mu     sync.Mutex
		claims = make(map[uint64]int)
		wg     sync.WaitGroup
	)
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				batch, err := repo.ClaimBatch(ctx, outbox.EventBrokerOutbox, 5)
				if !assert.NoError(t, err) {
					return
				}
				if len(batch) == 0 {
					return
				}
				mu.Lock()
				for _, e := range batch {
					claims[e.ID()]++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, claims, rows)
	for id, n := range claims {
		assert.Equalf(t, 1, n, "row %d claimed %d times", id, n)
	}
}

func TestOutboxRepository_ClaimBatch_SkipsRowRescheduledSinceRead(t *testing.T) {
	repo := NewOutboxRepository(setupOutboxDB(t))
	ctx := context.Background()

	e := appendWorkRow(t, repo, 1)
	require.False(t, e.ScheduleRetry(5))
	require.NoError(t, repo.Update(ctx, e))
	past := biztime.NowUTC().Add(-time.Minute)
	require.NoError(t, repo.db.Model(&models.PaymentLogModel{}).
		Where("id = ?", e.ID()).
		Update("next_retry_at", past).Error)

	// A slow claimer reads the row while it is an eligible Retrying candidate.
	var stale models.PaymentLogModel
	require.NoError(t, repo.db.First(&stale, e.ID()).Error)

	// A faster claimer processes the row, fails the publish and reschedules
	// it: back to Retrying, but with a bumped retry_count and a fresh
	// next_retry_at in the future.
	claimed, err := repo.ClaimBatch(ctx, outbox.EventBrokerOutbox, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	require.False(t, claimed[0].ScheduleRetry(5))
	require.NoError(t, repo.Update(ctx, claimed[0]))

	// The stale snapshot matches on status alone, so the claim must not win.
	ok, err := repo.claimRow(repo.db, &stale)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOutboxRepository_Update_PersistsDeliveryState(t *testing.T) {
	repo := NewOutboxRepository(setupOutboxDB(t))
	ctx := context.Background()

	e := appendWorkRow(t, repo, 1)
	e.MarkPublished()
	require.NoError(t, repo.Update(ctx, e))

	reloaded, err := repo.GetByPaymentAndType(ctx, 1, outbox.EventBrokerOutbox)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, outbox.StatusSuccess, reloaded.Status())
	assert.Contains(t, reloaded.Message(), "published to broker")
	// Payload is immutable through Update.
	assert.Equal(t, `{"payment_id":1}`, reloaded.Payload())
}

func TestOutboxRepository_GetByPaymentAndType_Absent(t *testing.T) {
	repo := NewOutboxRepository(setupOutboxDB(t))

	e, err := repo.GetByPaymentAndType(context.Background(), 42, outbox.EventBrokerOutbox)
	require.NoError(t, err)
	assert.Nil(t, e)
}
