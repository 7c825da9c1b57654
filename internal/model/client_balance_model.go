package model

import (
	"time"

	"github.com/google/uuid"
)

type ClientBalance struct {
	TenantId         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TotalPurchased   int64     `gorm:"not null;default:0"`
	TotalUsed        int64     `gorm:"not null;default:0"`
	TotalRefunded    int64     `gorm:"not null;default:0"`
	TotalAdjustments int64     `gorm:"not null;default:0"`
	TotalExpired     int64     `gorm:"not null;default:0"`
	ReservedCredits  int64     `gorm:"not null;default:0"`
	Version          int64     `gorm:"not null;default:0"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (ClientBalance) TableName() string {
	return "client_balances"
}
