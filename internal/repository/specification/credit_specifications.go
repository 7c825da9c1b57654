package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByToken filters reservations by their reservation token
type ByToken struct {
	Token uuid.UUID
}

func (s ByToken) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("token = ?", s.Token)
}

// ByState filters reservations by lifecycle state
type ByState struct {
	State string
}

func (s ByState) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("state = ?", s.State)
}

// ByLinkedPayment filters credit transactions by their linked payment
type ByLinkedPayment struct {
	PaymentID uuid.UUID
}

func (s ByLinkedPayment) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("linked_payment_id = ?", s.PaymentID)
}

// ByLinkedWorkflow filters credit transactions by their originating workflow
type ByLinkedWorkflow struct {
	WorkflowID uuid.UUID
}

func (s ByLinkedWorkflow) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("linked_workflow_id = ?", s.WorkflowID)
}

// ByGatewayReference filters payments by the gateway order id
type ByGatewayReference struct {
	Reference string
}

func (s ByGatewayReference) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("gateway_reference = ?", s.Reference)
}

// SeqAscending orders credit transactions by ledger sequence
type SeqAscending struct{}

func (s SeqAscending) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("seq ASC")
}
