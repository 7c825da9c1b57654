package entity

import (
	"time"

	"github.com/google/uuid"
)

type BalanceStatus string

const (
	BalanceStatusHealthy  BalanceStatus = "healthy"
	BalanceStatusLow      BalanceStatus = "low"
	BalanceStatusCritical BalanceStatus = "critical"
)

// CreditPolicy is the per-tenant alerting and auto-replenish configuration.
// CriticalThreshold <= LowThreshold, both >= 0.
type CreditPolicy struct {
	TenantId               uuid.UUID
	LowThreshold           int64
	CriticalThreshold      int64
	AutoReplenishEnabled   bool
	AutoReplenishThreshold int64
	AutoReplenishQuantity  int64
	PaymentMethod          PaymentMethod
	Currency               string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Alert is one signal produced by evaluating a tenant balance against its
// policy. Alerts are advisory: delivery belongs to the Notification service.
type Alert struct {
	TenantId         uuid.UUID
	Status           BalanceStatus
	AvailableCredits int64
	Threshold        int64
	Message          string
	OccurredAt       time.Time
}
