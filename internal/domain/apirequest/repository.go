package apirequest

import "context"

// Repository appends audit rows. Create must surface the unique-constraint
// violation on event_id as a conflict so the caller can roll back.
type Repository interface {
	Create(ctx context.Context, r *APIRequest) error
}
