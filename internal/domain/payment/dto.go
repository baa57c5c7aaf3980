package payment

import "errors"

// ErrAlreadyResolved is returned when a terminal payment receives another
// resolution attempt. Callers treat it as a no-op, not a failure.
var ErrAlreadyResolved = errors.New("payment already resolved")

// DTO is the payment body published to the broker and posted to merchant
// callbacks. Amounts travel as decimal strings.
type DTO struct {
	PaymentID  uint64 `json:"payment_id"`
	OrderID    uint64 `json:"order_id"`
	MerchantID uint64 `json:"merchant_id"`
	Status     string `json:"status"`
	Amount     string `json:"amount"`
	Price      string `json:"price"`
}
