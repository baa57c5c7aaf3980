package valueobjects

import "fmt"

// PaymentStatus is the lifecycle state of a payment. Finished and Failed are
// terminal: no transition leaves them.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusFinished PaymentStatus = "finished"
	PaymentStatusFailed   PaymentStatus = "failed"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) IsFinal() bool {
	return s == PaymentStatusFinished || s == PaymentStatusFailed
}

// ParsePaymentStatus maps a provider-reported status onto a terminal payment
// status. Anything other than "finished" or "failed" is rejected.
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	switch raw {
	case "finished":
		return PaymentStatusFinished, nil
	case "failed":
		return PaymentStatusFailed, nil
	default:
		return "", fmt.Errorf("unsupported payment status %q", raw)
	}
}
