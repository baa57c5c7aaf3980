package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"payflow/internal/domain/outbox"
	"payflow/internal/infrastructure/persistence/mappers"
	"payflow/internal/infrastructure/persistence/models"
	"payflow/internal/shared/biztime"
	"payflow/internal/shared/db"
)

// OutboxRepository persists payment log rows in the outbox store, which may
// be a different database than the payment tables.
type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) Append(ctx context.Context, e *outbox.Entry) error {
	model := mappers.OutboxEntryToModel(e)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append outbox entry: %w", err)
	}

	e.SetID(model.ID)
	return nil
}

// ClaimBatch selects eligible work rows and claims each with a conditional
// UPDATE keyed on the status it was read at. A row whose status changed in
// between belongs to another claimer and is skipped, so two publisher
// instances never process the same row.
func (r *OutboxRepository) ClaimBatch(ctx context.Context, eventType outbox.EventType, limit int) ([]*outbox.Entry, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	now := biztime.NowUTC()

	var candidates []models.PaymentLogModel
	err := tx.
		Where("event_type = ? AND status IN ? AND (next_retry_at IS NULL OR next_retry_at <= ?)",
			int16(eventType),
			[]int16{int16(outbox.StatusPending), int16(outbox.StatusRetrying)},
			now).
		Order("id").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select outbox candidates: %w", err)
	}

	claimed := make([]*outbox.Entry, 0, len(candidates))
	for i := range candidates {
		m := &candidates[i]

		ok, err := r.claimRow(tx, m)
		if err != nil {
			return nil, fmt.Errorf("failed to claim outbox entry %d: %w", m.ID, err)
		}
		if !ok {
			// Lost the race to another claimer.
			continue
		}

		m.Status = int16(outbox.StatusProcessing)
		claimed = append(claimed, mappers.OutboxEntryToDomain(m))
	}

	return claimed, nil
}

// claimRow flips one candidate row to Processing. The predicate keys on the
// retry_count the candidate was read at as well as its status, so a row
// that another claimer processed and rescheduled in the meantime (back to
// the status we read) is not claimed against its fresh next_retry_at.
func (r *OutboxRepository) claimRow(tx *gorm.DB, m *models.PaymentLogModel) (bool, error) {
	result := tx.
		Model(&models.PaymentLogModel{}).
		Where("id = ? AND status = ? AND retry_count = ?", m.ID, m.Status, m.RetryCount).
		Update("status", int16(outbox.StatusProcessing))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *OutboxRepository) Update(ctx context.Context, e *outbox.Entry) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentLogModel{}).
		Where("id = ?", e.ID()).
		Updates(map[string]interface{}{
			"status":        int16(e.Status()),
			"message":       e.Message(),
			"retry_count":   e.RetryCount(),
			"next_retry_at": e.NextRetryAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update outbox entry: %w", result.Error)
	}
	return nil
}

func (r *OutboxRepository) GetByPaymentAndType(ctx context.Context, paymentID uint64, eventType outbox.EventType) (*outbox.Entry, error) {
	var model models.PaymentLogModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("payment_id = ? AND event_type = ?", paymentID, int16(eventType)).
		Order("id DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get outbox entry: %w", err)
	}

	return mappers.OutboxEntryToDomain(&model), nil
}

func (r *OutboxRepository) ListByPayment(ctx context.Context, paymentID uint64) ([]*outbox.Entry, error) {
	var rows []models.PaymentLogModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("payment_id = ?", paymentID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list outbox entries: %w", err)
	}

	entries := make([]*outbox.Entry, len(rows))
	for i := range rows {
		entries[i] = mappers.OutboxEntryToDomain(&rows[i])
	}
	return entries, nil
}
