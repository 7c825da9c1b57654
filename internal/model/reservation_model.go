package model

import (
	"time"

	"github.com/google/uuid"
)

type Reservation struct {
	Token              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantId           uuid.UUID  `gorm:"type:uuid;not null;index"`
	WorkflowId         uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreditsReserved    int64      `gorm:"not null"`
	RateLocked         int64      `gorm:"not null"`
	Currency           string     `gorm:"type:varchar(3);not null"`
	State              string     `gorm:"type:varchar(20);not null;index"`
	UsageTransactionId *uuid.UUID `gorm:"type:uuid"`
	CreatedAt          time.Time  `gorm:"autoCreateTime"`
	ClosedAt           *time.Time
}

func (Reservation) TableName() string {
	return "credit_reservations"
}
