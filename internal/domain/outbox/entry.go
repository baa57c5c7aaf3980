// Package outbox models the payment log rows that double as audit trail and
// durable work queue. A row is written in the outbox store after the payment
// store commits; once it exists, delivery to the broker and onward to the
// merchant is at-least-once.
package outbox

import (
	"fmt"
	"time"

	"payflow/internal/shared/biztime"
)

// EventType identifies the source of a logged event. BrokerOutbox and
// MerchantNotificationSent rows are also work items.
type EventType int16

const (
	EventPaymentCreated          EventType = 1
	EventProviderRequestSent     EventType = 2
	EventProviderPaymentAccepted EventType = 3
	EventMerchantNotificationSent EventType = 4
	EventBrokerOutbox            EventType = 5
)

func (t EventType) String() string {
	switch t {
	case EventPaymentCreated:
		return "payment_created"
	case EventProviderRequestSent:
		return "provider_request_sent"
	case EventProviderPaymentAccepted:
		return "provider_payment_accepted"
	case EventMerchantNotificationSent:
		return "merchant_notification_sent"
	case EventBrokerOutbox:
		return "broker_outbox"
	default:
		return fmt.Sprintf("event_type(%d)", int16(t))
	}
}

// Status is the processing state of a work row.
type Status int16

const (
	StatusPending    Status = 1
	StatusSuccess    Status = 2
	StatusFailed     Status = 3
	StatusRetrying   Status = 4
	StatusBlocked    Status = 5
	StatusProcessing Status = 6
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusRetrying:
		return "retrying"
	case StatusBlocked:
		return "blocked"
	case StatusProcessing:
		return "processing"
	default:
		return fmt.Sprintf("status(%d)", int16(s))
	}
}

// Entry is one payment log row. The message field accumulates a timestamped
// timeline and is never overwritten; payload is immutable once written.
type Entry struct {
	id          uint64
	paymentID   uint64
	eventType   EventType
	status      Status
	message     string
	payload     string
	retryCount  int
	nextRetryAt *time.Time
	createdAt   time.Time
}

func NewEntry(paymentID uint64, eventType EventType, status Status, message, payload string) *Entry {
	e := &Entry{
		paymentID: paymentID,
		eventType: eventType,
		status:    status,
		payload:   payload,
		createdAt: biztime.NowUTC(),
	}
	if message != "" {
		e.AppendTimeline(message)
	}
	return e
}

// AppendTimeline adds a timestamped line to the message timeline.
func (e *Entry) AppendTimeline(line string) {
	entry := fmt.Sprintf("[%s] %s", biztime.NowUTC().Format("2006-01-02 15:04:05"), line)
	if e.message == "" {
		e.message = entry
		return
	}
	e.message = e.message + "\n" + entry
}

// MarkProcessing flips a claimed row to Processing.
func (e *Entry) MarkProcessing() {
	e.status = StatusProcessing
}

// MarkPublished records a successful broker publish.
func (e *Entry) MarkPublished() {
	e.status = StatusSuccess
	e.nextRetryAt = nil
	e.AppendTimeline("published to broker")
}

// ScheduleRetry records a failed attempt. The row goes to Retrying with an
// exponential backoff (base 2 seconds) until maxRetries attempts have been
// spent, then to Failed permanently. Reports whether the failure is final.
func (e *Entry) ScheduleRetry(maxRetries int) bool {
	e.retryCount++
	if e.retryCount >= maxRetries {
		e.status = StatusFailed
		e.nextRetryAt = nil
		e.AppendTimeline(fmt.Sprintf("publishing failed permanently after %d attempts", e.retryCount))
		return true
	}

	next := biztime.NowUTC().Add(Backoff(e.retryCount))
	e.status = StatusRetrying
	e.nextRetryAt = &next
	e.AppendTimeline(fmt.Sprintf("retry %d/%d scheduled for %s", e.retryCount, maxRetries, next.Format(time.RFC3339)))
	return false
}

// RecordDelivery appends a delivery outcome line and sets the row status.
// Used for MerchantNotificationSent rows mutated by the consumer.
func (e *Entry) RecordDelivery(status Status, line string) {
	e.status = status
	e.AppendTimeline(line)
}

// Eligible reports whether a work row may be claimed at now: it must be
// Pending or Retrying with no backoff still in effect.
func (e *Entry) Eligible(now time.Time) bool {
	if e.status != StatusPending && e.status != StatusRetrying {
		return false
	}
	return e.nextRetryAt == nil || !e.nextRetryAt.After(now)
}

// Backoff returns the delay before the given retry attempt: 2^n seconds.
func Backoff(retryCount int) time.Duration {
	return time.Duration(1<<uint(retryCount)) * time.Second
}

func (e *Entry) ID() uint64 {
	return e.id
}

func (e *Entry) PaymentID() uint64 {
	return e.paymentID
}

func (e *Entry) EventType() EventType {
	return e.eventType
}

func (e *Entry) Status() Status {
	return e.status
}

func (e *Entry) Message() string {
	return e.message
}

func (e *Entry) Payload() string {
	return e.payload
}

func (e *Entry) RetryCount() int {
	return e.retryCount
}

func (e *Entry) NextRetryAt() *time.Time {
	return e.nextRetryAt
}

func (e *Entry) CreatedAt() time.Time {
	return e.createdAt
}

func (e *Entry) SetID(id uint64) {
	e.id = id
}

func ReconstructEntry(
	id, paymentID uint64,
	eventType EventType,
	status Status,
	message, payload string,
	retryCount int,
	nextRetryAt *time.Time,
	createdAt time.Time,
) *Entry {
	return &Entry{
		id:          id,
		paymentID:   paymentID,
		eventType:   eventType,
		status:      status,
		message:     message,
		payload:     payload,
		retryCount:  retryCount,
		nextRetryAt: nextRetryAt,
		createdAt:   createdAt,
	}
}
