package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string
type PaymentGatewayStatus string

const (
	PaymentMethodGateway  PaymentMethod = "gateway"
	PaymentMethodInvoice  PaymentMethod = "invoice"
	PaymentMethodInternal PaymentMethod = "internal"

	PaymentGatewayStatusPending   PaymentGatewayStatus = "pending"
	PaymentGatewayStatusCompleted PaymentGatewayStatus = "completed"
	PaymentGatewayStatusFailed    PaymentGatewayStatus = "failed"
	PaymentGatewayStatusRefunded  PaymentGatewayStatus = "refunded"
)

// Payment tracks real money movement at the gateway. The linked purchase
// transaction only counts toward the balance once Status reaches completed.
type Payment struct {
	Id               uuid.UUID
	TenantId         uuid.UUID
	Amount           int64 // minor currency units
	Currency         string
	Method           PaymentMethod
	GatewayReference string
	Status           PaymentGatewayStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
