// Package providergateway defines the port to the external provider service
// that turns a created payment into a hosted payment URL.
package providergateway

import "context"

type PaymentLinkRequest struct {
	PaymentID  uint64 `json:"payment_id"`
	MerchantID uint64 `json:"merchant_id"`
	Provider   string `json:"provider"`
}

type PaymentLinkResponse struct {
	PaymentURL string `json:"payment_url"`
}

// Gateway requests a payment link. Implementations classify failures:
// transport errors and non-2xx responses surface as upstream errors so the
// caller can compensate by failing the payment.
type Gateway interface {
	CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (*PaymentLinkResponse, error)
}
