package model

import (
	"time"

	"github.com/google/uuid"
)

type CreditTransaction struct {
	Id               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantId         uuid.UUID  `gorm:"type:uuid;not null;index"`
	Seq              int64      `gorm:"not null;uniqueIndex"`
	Type             string     `gorm:"type:varchar(20);not null"`
	CreditAmount     int64      `gorm:"not null"`
	UnitPrice        int64      `gorm:"not null"`
	TotalAmount      int64      `gorm:"not null"`
	Currency         string     `gorm:"type:varchar(3);not null"`
	LinkedPaymentId  *uuid.UUID `gorm:"type:uuid;index"`
	LinkedWorkflowId *uuid.UUID `gorm:"type:uuid;index"`
	Description      string     `gorm:"type:text"`
	CreatedAt        time.Time  `gorm:"autoCreateTime"`
}

func (CreditTransaction) TableName() string {
	return "credit_transactions"
}
