package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"payflow/internal/domain/payment"
	vo "payflow/internal/domain/payment/valueobjects"
	"payflow/internal/infrastructure/persistence/mappers"
	"payflow/internal/infrastructure/persistence/models"
	apperrors "payflow/internal/shared/errors"
	"payflow/internal/shared/biztime"
	"payflow/internal/shared/db"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model := mappers.PaymentToModel(p)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return apperrors.NewConflictError("payment already exists for order", fmt.Sprintf("order_id=%d", p.OrderID()))
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	p.SetID(model.ID)
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uint64) (*payment.Payment, error) {
	var model models.PaymentModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("payment not found", fmt.Sprintf("id=%d", id))
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return mappers.PaymentToDomain(&model), nil
}

func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID uint64) (*payment.Payment, error) {
	var model models.PaymentModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("order_id = ?", orderID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment by order_id: %w", err)
	}

	return mappers.PaymentToDomain(&model), nil
}

// ResolvePending is a single conditional UPDATE so a racing resolver that
// already reached a terminal status is never overwritten.
func (r *PaymentRepository) ResolvePending(ctx context.Context, id uint64, status vo.PaymentStatus) (bool, error) {
	if !status.IsFinal() {
		return false, fmt.Errorf("cannot resolve payment to non-terminal status %s", status)
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("id = ? AND status = ?", id, vo.PaymentStatusPending.String()).
		Updates(map[string]interface{}{
			"status":     status.String(),
			"updated_at": biztime.NowUTC(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to resolve payment: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
