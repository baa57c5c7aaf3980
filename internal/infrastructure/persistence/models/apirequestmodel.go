package models

import "time"

type APIRequestModel struct {
	ID             uint64 `gorm:"primaryKey"`
	EventID        string `gorm:"size:255;uniqueIndex;not null"`
	PaymentID      uint64 `gorm:"index;not null"`
	MerchantID     uint64 `gorm:"index;not null"`
	SubscriptionID uint64 `gorm:"index;not null"`
	Amount         string `gorm:"type:decimal(20,8);not null"`
	Source         string `gorm:"size:50;not null"`
	CreatedAt      time.Time
}

func (APIRequestModel) TableName() string {
	return "api_requests"
}
