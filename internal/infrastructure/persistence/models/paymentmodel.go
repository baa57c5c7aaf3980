package models

import "time"

type PaymentModel struct {
	ID         uint64 `gorm:"primaryKey"`
	OrderID    uint64 `gorm:"uniqueIndex;not null"`
	MerchantID uint64 `gorm:"index;not null"`
	ProviderID uint64 `gorm:"index;not null"`
	Amount     string `gorm:"type:decimal(20,8);not null"`
	Price      string `gorm:"type:decimal(20,8);not null"`
	Status     string `gorm:"size:20;not null;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (PaymentModel) TableName() string {
	return "payments"
}
