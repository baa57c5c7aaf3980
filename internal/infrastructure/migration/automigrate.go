package migration

import (
	"payflow/internal/infrastructure/persistence/models"
)

// PaymentStoreModels lists the tables living in the payment store.
func PaymentStoreModels() []interface{} {
	return []interface{}{
		&models.PaymentModel{},
		&models.SubscriptionModel{},
		&models.UserSubscriptionModel{},
		&models.APIRequestModel{},
		&models.ProviderModel{},
	}
}

// OutboxStoreModels lists the tables living in the outbox store. The two
// stores may share one physical database; the split keeps the option of a
// dedicated log database open.
func OutboxStoreModels() []interface{} {
	return []interface{}{
		&models.PaymentLogModel{},
	}
}
