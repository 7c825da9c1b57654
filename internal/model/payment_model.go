package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Payment struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey"`
	TenantId         uuid.UUID      `gorm:"type:uuid;not null;index"`
	Amount           int64          `gorm:"not null"`
	Currency         string         `gorm:"type:varchar(3);not null"`
	Method           string         `gorm:"type:varchar(20);not null"`
	GatewayReference string         `gorm:"type:varchar(255)"`
	GatewayPayload   datatypes.JSON `gorm:"type:jsonb"`
	Status           string         `gorm:"type:varchar(20);not null;index"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
}

func (Payment) TableName() string {
	return "payments"
}
