// Package subscription holds the subscription plans and the per-merchant
// usage accounting that payments debit against.
package subscription

// Subscription is a plan definition: a name, a price and the maximum number
// of usage tokens it grants.
type Subscription struct {
	id         uint64
	name       string
	price      string
	tokenQuota int64
}

func (s *Subscription) ID() uint64 {
	return s.id
}

func (s *Subscription) Name() string {
	return s.name
}

func (s *Subscription) Price() string {
	return s.price
}

func (s *Subscription) TokenQuota() int64 {
	return s.tokenQuota
}

func ReconstructSubscription(id uint64, name, price string, tokenQuota int64) *Subscription {
	return &Subscription{
		id:         id,
		name:       name,
		price:      price,
		tokenQuota: tokenQuota,
	}
}
