package model

import (
	"time"

	"github.com/google/uuid"
)

type CreditPolicy struct {
	TenantId               uuid.UUID `gorm:"type:uuid;primaryKey"`
	LowThreshold           int64     `gorm:"not null;default:0"`
	CriticalThreshold      int64     `gorm:"not null;default:0"`
	AutoReplenishEnabled   bool      `gorm:"not null;default:false"`
	AutoReplenishThreshold int64     `gorm:"not null;default:0"`
	AutoReplenishQuantity  int64     `gorm:"not null;default:0"`
	PaymentMethod          string    `gorm:"type:varchar(20);not null"`
	Currency               string    `gorm:"type:varchar(3);not null"`
	CreatedAt              time.Time `gorm:"autoCreateTime"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime"`
}

func (CreditPolicy) TableName() string {
	return "credit_policies"
}
