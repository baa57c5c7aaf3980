package mappers

import (
	"payflow/internal/domain/apirequest"
	"payflow/internal/domain/payment"
	vo "payflow/internal/domain/payment/valueobjects"
	"payflow/internal/domain/provider"
	"payflow/internal/infrastructure/persistence/models"
)

func PaymentToModel(p *payment.Payment) *models.PaymentModel {
	return &models.PaymentModel{
		ID:         p.ID(),
		OrderID:    p.OrderID(),
		MerchantID: p.MerchantID(),
		ProviderID: p.ProviderID(),
		Amount:     p.Amount().String(),
		Price:      p.Price().String(),
		Status:     p.Status().String(),
		CreatedAt:  p.CreatedAt(),
		UpdatedAt:  p.UpdatedAt(),
	}
}

func PaymentToDomain(m *models.PaymentModel) *payment.Payment {
	return payment.ReconstructPayment(
		m.ID,
		m.OrderID,
		m.MerchantID,
		m.ProviderID,
		vo.ReconstructAmount(m.Amount),
		vo.ReconstructAmount(m.Price),
		vo.PaymentStatus(m.Status),
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func ProviderToDomain(m *models.ProviderModel) *provider.Provider {
	return provider.ReconstructProvider(m.ID, m.Name, m.Alias, m.URL)
}

func APIRequestToModel(r *apirequest.APIRequest) *models.APIRequestModel {
	return &models.APIRequestModel{
		ID:             r.ID(),
		EventID:        r.EventID(),
		PaymentID:      r.PaymentID(),
		MerchantID:     r.MerchantID(),
		SubscriptionID: r.SubscriptionID(),
		Amount:         r.Amount(),
		Source:         r.Source(),
		CreatedAt:      r.CreatedAt(),
	}
}
