package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"payflow/internal/domain/provider"
	"payflow/internal/infrastructure/persistence/mappers"
	"payflow/internal/infrastructure/persistence/models"
	"payflow/internal/shared/db"
)

type ProviderRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

func (r *ProviderRepository) GetByAlias(ctx context.Context, alias string) (*provider.Provider, error) {
	var model models.ProviderModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("alias = ?", alias).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get provider by alias: %w", err)
	}

	return mappers.ProviderToDomain(&model), nil
}
