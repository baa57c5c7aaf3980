package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"payflow/internal/domain/subscription"
	"payflow/internal/infrastructure/persistence/mappers"
	"payflow/internal/infrastructure/persistence/models"
	"payflow/internal/shared/db"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) GetActive(ctx context.Context, merchantID, subscriptionID uint64) (*subscription.UserSubscription, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var usage models.UserSubscriptionModel
	err := tx.
		Where("merchant_id = ? AND subscription_id = ? AND status = ?",
			merchantID, subscriptionID, string(subscription.StatusActive)).
		First(&usage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user subscription: %w", err)
	}

	var planModel models.SubscriptionModel
	if err := tx.First(&planModel, usage.SubscriptionID).Error; err != nil {
		return nil, fmt.Errorf("failed to get subscription plan: %w", err)
	}

	plan := mappers.SubscriptionToDomain(&planModel)
	return mappers.UserSubscriptionToDomain(&usage, plan), nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, us *subscription.UserSubscription) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.UserSubscriptionModel{}).
		Where("id = ?", us.ID()).
		Updates(map[string]interface{}{
			"used_tokens": us.UsedTokens(),
			"status":      string(us.Status()),
			"updated_at":  us.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update user subscription: %w", result.Error)
	}
	return nil
}
