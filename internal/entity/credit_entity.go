package entity

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypePurchase   TransactionType = "purchase"
	TransactionTypeUsage      TransactionType = "usage"
	TransactionTypeRefund     TransactionType = "refund"
	TransactionTypeAdjustment TransactionType = "adjustment"
	TransactionTypeBonus      TransactionType = "bonus"
	TransactionTypeExpiration TransactionType = "expiration"
)

// CreditTransaction is one immutable entry in a tenant's credit ledger.
// All monetary fields are integer minor currency units; TotalAmount must equal
// |CreditAmount| * UnitPrice exactly.
//
// Sign convention: purchase/bonus/refund carry a positive CreditAmount,
// usage/expiration a negative one, adjustment either sign (zero allowed for
// audit-only markers such as reservation releases).
type CreditTransaction struct {
	Id               uuid.UUID
	TenantId         uuid.UUID
	Seq              int64 // monotonic ledger order, not wall-clock
	Type             TransactionType
	CreditAmount     int64
	UnitPrice        int64
	TotalAmount      int64
	Currency         string
	LinkedPaymentId  *uuid.UUID
	LinkedWorkflowId *uuid.UUID
	Description      string
	CreatedAt        time.Time
}

// ClientBalance is the per-tenant snapshot derived from the transaction log.
// Every field is re-derivable by replay; Version guards concurrent writers.
type ClientBalance struct {
	TenantId         uuid.UUID
	TotalPurchased   int64
	TotalUsed        int64
	TotalRefunded    int64
	TotalAdjustments int64
	TotalExpired     int64
	ReservedCredits  int64
	Version          int64
	UpdatedAt        time.Time
}

// CurrentBalance is the settled credit position, ignoring open reservations.
func (b *ClientBalance) CurrentBalance() int64 {
	return b.TotalPurchased + b.TotalAdjustments - b.TotalUsed - b.TotalRefunded - b.TotalExpired
}

// AvailableCredits is what a new reservation may draw on.
func (b *ClientBalance) AvailableCredits() int64 {
	return b.CurrentBalance() - b.ReservedCredits
}
