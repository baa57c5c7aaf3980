package outbox

import "context"

// Repository persists payment log rows in the outbox store.
type Repository interface {
	// Append inserts a new log row.
	Append(ctx context.Context, e *Entry) error

	// ClaimBatch atomically claims up to limit eligible work rows of the
	// given event type, transitioning them to Processing. Concurrent
	// claimers never receive the same row.
	ClaimBatch(ctx context.Context, eventType EventType, limit int) ([]*Entry, error)

	// Update persists the mutable delivery-status fields of a work row
	// (status, message, retry_count, next_retry_at). Payload is immutable.
	Update(ctx context.Context, e *Entry) error

	// GetByPaymentAndType returns the log row for a payment and event type,
	// or (nil, nil) if none exists.
	GetByPaymentAndType(ctx context.Context, paymentID uint64, eventType EventType) (*Entry, error)

	// ListByPayment returns all log rows for a payment ordered by creation,
	// the full observable delivery timeline.
	ListByPayment(ctx context.Context, paymentID uint64) ([]*Entry, error)
}
