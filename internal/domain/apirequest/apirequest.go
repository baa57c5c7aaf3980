// Package apirequest holds the append-only audit record that ties an
// incoming API call to the payment it produced. The caller-supplied event_id
// is unique, so inserting a duplicate fails the surrounding transaction and
// a retried request can never debit quota twice.
package apirequest

import (
	"time"

	"payflow/internal/shared/biztime"
)

type APIRequest struct {
	id             uint64
	eventID        string
	paymentID      uint64
	merchantID     uint64
	subscriptionID uint64
	amount         string
	source         string
	createdAt      time.Time
}

func NewAPIRequest(eventID string, paymentID, merchantID, subscriptionID uint64, amount, source string) *APIRequest {
	return &APIRequest{
		eventID:        eventID,
		paymentID:      paymentID,
		merchantID:     merchantID,
		subscriptionID: subscriptionID,
		amount:         amount,
		source:         source,
		createdAt:      biztime.NowUTC(),
	}
}

func (r *APIRequest) ID() uint64 {
	return r.id
}

func (r *APIRequest) EventID() string {
	return r.eventID
}

func (r *APIRequest) PaymentID() uint64 {
	return r.paymentID
}

func (r *APIRequest) MerchantID() uint64 {
	return r.merchantID
}

func (r *APIRequest) SubscriptionID() uint64 {
	return r.subscriptionID
}

func (r *APIRequest) Amount() string {
	return r.amount
}

func (r *APIRequest) Source() string {
	return r.source
}

func (r *APIRequest) SetID(id uint64) {
	r.id = id
}

func (r *APIRequest) CreatedAt() time.Time {
	return r.createdAt
}
