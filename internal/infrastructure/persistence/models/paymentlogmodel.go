package models

import "time"

// PaymentLogModel lives in the outbox store, which may be a physically
// separate database from the payment tables. Rows are appended or updated,
// never deleted.
type PaymentLogModel struct {
	ID          uint64 `gorm:"primaryKey"`
	PaymentID   uint64 `gorm:"index;not null"`
	EventType   int16  `gorm:"index;not null"`
	Status      int16  `gorm:"index;not null"`
	Message     string `gorm:"type:text"`
	Payload     string `gorm:"type:text"`
	RetryCount  int    `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"index"`
	CreatedAt   time.Time  `gorm:"index"`
}

func (PaymentLogModel) TableName() string {
	return "payment_logs"
}
