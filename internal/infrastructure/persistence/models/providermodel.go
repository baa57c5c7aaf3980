package models

import "time"

type ProviderModel struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	Alias     string `gorm:"size:255;uniqueIndex;not null"`
	URL       string `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProviderModel) TableName() string {
	return "providers"
}
