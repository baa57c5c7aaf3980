package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"payflow/internal/domain/apirequest"
	"payflow/internal/infrastructure/persistence/mappers"
	apperrors "payflow/internal/shared/errors"
	"payflow/internal/shared/db"
)

type APIRequestRepository struct {
	db *gorm.DB
}

func NewAPIRequestRepository(db *gorm.DB) *APIRequestRepository {
	return &APIRequestRepository{db: db}
}

// Create inserts the audit row. A duplicate event_id surfaces as a conflict
// so the surrounding transaction rolls back the quota debit.
func (r *APIRequestRepository) Create(ctx context.Context, req *apirequest.APIRequest) error {
	model := mappers.APIRequestToModel(req)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return apperrors.NewConflictError("duplicate event_id", req.EventID())
		}
		return fmt.Errorf("failed to create api request: %w", err)
	}

	req.SetID(model.ID)
	return nil
}
