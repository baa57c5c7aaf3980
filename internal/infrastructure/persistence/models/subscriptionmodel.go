package models

import "time"

type SubscriptionModel struct {
	ID         uint64 `gorm:"primaryKey"`
	Name       string `gorm:"size:255;uniqueIndex;not null"`
	Price      string `gorm:"type:decimal(10,2);not null"`
	TokenQuota int64  `gorm:"not null"`
}

func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

type UserSubscriptionModel struct {
	ID             uint64 `gorm:"primaryKey"`
	MerchantID     uint64 `gorm:"not null;uniqueIndex:uq_user_subscriptions_merchant_subscription,priority:1"`
	SubscriptionID uint64 `gorm:"not null;uniqueIndex:uq_user_subscriptions_merchant_subscription,priority:2"`
	UsedTokens     int64  `gorm:"not null;default:0"`
	Status         string `gorm:"size:20;not null;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (UserSubscriptionModel) TableName() string {
	return "user_subscriptions"
}
