package mappers

import (
	"payflow/internal/domain/subscription"
	"payflow/internal/infrastructure/persistence/models"
)

// UserSubscriptionToDomain joins the usage row with its plan's quota.
func UserSubscriptionToDomain(m *models.UserSubscriptionModel, plan *subscription.Subscription) *subscription.UserSubscription {
	return subscription.ReconstructUserSubscription(
		m.ID,
		m.MerchantID,
		m.SubscriptionID,
		m.UsedTokens,
		plan.TokenQuota(),
		subscription.Status(m.Status),
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func SubscriptionToDomain(m *models.SubscriptionModel) *subscription.Subscription {
	return subscription.ReconstructSubscription(m.ID, m.Name, m.Price, m.TokenQuota)
}
