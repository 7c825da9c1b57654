package ledger

import (
	"fmt"
	"sort"
	"time"

	"flowcredits-be/internal/apperrors"
	"flowcredits-be/internal/entity"

	"github.com/google/uuid"
)

// ValidateTransaction enforces the ledger sign convention and the fixed-point
// amount invariant before anything is written. A violation is a
// DataIntegrityViolation: the append must fail atomically.
func ValidateTransaction(tx *entity.CreditTransaction) error {
	switch tx.Type {
	case entity.TransactionTypePurchase, entity.TransactionTypeBonus, entity.TransactionTypeRefund:
		if tx.CreditAmount <= 0 {
			return fmt.Errorf("%w: %s transaction must carry a positive credit amount, got %d",
				apperrors.ErrDataIntegrity, tx.Type, tx.CreditAmount)
		}
	case entity.TransactionTypeUsage, entity.TransactionTypeExpiration:
		if tx.CreditAmount >= 0 {
			return fmt.Errorf("%w: %s transaction must carry a negative credit amount, got %d",
				apperrors.ErrDataIntegrity, tx.Type, tx.CreditAmount)
		}
	case entity.TransactionTypeAdjustment:
		// Either sign; zero allowed for audit markers (reservation releases).
	default:
		return fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrDataIntegrity, tx.Type)
	}

	if tx.Currency == "" {
		return fmt.Errorf("%w: transaction %s carries no currency", apperrors.ErrInvalidCurrency, tx.Id)
	}
	if tx.UnitPrice < 0 {
		return fmt.Errorf("%w: negative unit price %d", apperrors.ErrDataIntegrity, tx.UnitPrice)
	}
	if want := abs(tx.CreditAmount) * tx.UnitPrice; tx.TotalAmount != want {
		return fmt.Errorf("%w: total_amount %d != |credit_amount| x unit_price %d",
			apperrors.ErrDataIntegrity, tx.TotalAmount, want)
	}
	return nil
}

// Apply folds one effective transaction into the balance snapshot. Purchases
// must only be applied once their payment completed; the caller owns that
// gate. Apply never lets the snapshot go negative: the caller validated under
// the tenant lock, so a violation here is corruption, not a race.
func Apply(balance *entity.ClientBalance, tx *entity.CreditTransaction) error {
	if err := ValidateTransaction(tx); err != nil {
		return err
	}
	if tx.TenantId != balance.TenantId {
		return fmt.Errorf("%w: transaction tenant %s does not match balance tenant %s",
			apperrors.ErrDataIntegrity, tx.TenantId, balance.TenantId)
	}

	switch tx.Type {
	case entity.TransactionTypePurchase, entity.TransactionTypeBonus:
		balance.TotalPurchased += tx.CreditAmount
	case entity.TransactionTypeUsage:
		balance.TotalUsed += -tx.CreditAmount
	case entity.TransactionTypeExpiration:
		balance.TotalExpired += -tx.CreditAmount
	case entity.TransactionTypeRefund:
		balance.TotalRefunded += tx.CreditAmount
	case entity.TransactionTypeAdjustment:
		balance.TotalAdjustments += tx.CreditAmount
	}

	if balance.AvailableCredits() < 0 {
		return fmt.Errorf("%w: applying transaction %s drove available credits to %d",
			apperrors.ErrDataIntegrity, tx.Id, balance.AvailableCredits())
	}

	balance.Version++
	balance.UpdatedAt = tx.CreatedAt
	return nil
}

// Replay rebuilds a tenant's balance from scratch. Transactions are ordered by
// their monotonic sequence number, purchases are gated on the completed
// payment set, and reservedCredits (the sum of open holds) is supplied by the
// caller since open reservations live outside the immutable log.
//
// The result must match the incrementally maintained snapshot field for field;
// that equivalence is the system's core correctness property.
func Replay(tenantId uuid.UUID, txs []*entity.CreditTransaction, completedPayments map[uuid.UUID]bool, reservedCredits int64) (*entity.ClientBalance, error) {
	ordered := make([]*entity.CreditTransaction, len(txs))
	copy(ordered, txs)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Seq < ordered[j].Seq
	})

	balance := &entity.ClientBalance{TenantId: tenantId}
	for _, tx := range ordered {
		if !Effective(tx, completedPayments) {
			continue
		}
		if err := Apply(balance, tx); err != nil {
			return nil, err
		}
	}

	balance.ReservedCredits = reservedCredits
	if balance.AvailableCredits() < 0 {
		return nil, fmt.Errorf("%w: replay of tenant %s yields negative available credits %d",
			apperrors.ErrDataIntegrity, tenantId, balance.AvailableCredits())
	}
	return balance, nil
}

// Effective reports whether a transaction counts toward the balance. Purchase
// entries stay pending until their linked payment completed; everything else
// is effective the moment it is appended.
func Effective(tx *entity.CreditTransaction, completedPayments map[uuid.UUID]bool) bool {
	if tx.Type != entity.TransactionTypePurchase {
		return true
	}
	if tx.LinkedPaymentId == nil {
		return false
	}
	return completedPayments[*tx.LinkedPaymentId]
}

// Drift compares an incrementally maintained snapshot against a replayed one
// and returns a human-readable description of every differing field. An empty
// result means the snapshots are equivalent.
func Drift(cached, rebuilt *entity.ClientBalance) []string {
	var diffs []string
	check := func(field string, a, b int64) {
		if a != b {
			diffs = append(diffs, fmt.Sprintf("%s: cached=%d rebuilt=%d", field, a, b))
		}
	}
	check("total_purchased", cached.TotalPurchased, rebuilt.TotalPurchased)
	check("total_used", cached.TotalUsed, rebuilt.TotalUsed)
	check("total_refunded", cached.TotalRefunded, rebuilt.TotalRefunded)
	check("total_adjustments", cached.TotalAdjustments, rebuilt.TotalAdjustments)
	check("total_expired", cached.TotalExpired, rebuilt.TotalExpired)
	check("reserved_credits", cached.ReservedCredits, rebuilt.ReservedCredits)
	return diffs
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// NewUsageTransaction builds the usage entry appended when a reservation is
// consumed at its locked rate.
func NewUsageTransaction(tenantId uuid.UUID, seq int64, res *entity.Reservation, now time.Time) *entity.CreditTransaction {
	workflowId := res.WorkflowId
	return &entity.CreditTransaction{
		Id:               uuid.New(),
		TenantId:         tenantId,
		Seq:              seq,
		Type:             entity.TransactionTypeUsage,
		CreditAmount:     -res.CreditsReserved,
		UnitPrice:        res.RateLocked,
		TotalAmount:      res.CreditsReserved * res.RateLocked,
		Currency:         res.Currency,
		LinkedWorkflowId: &workflowId,
		Description:      "workflow credits consumed",
		CreatedAt:        now,
	}
}

// NewReleaseMarker builds the zero-valued compensating adjustment recorded
// when a reservation is released. It never moves the totals; it keeps the
// audit trail of the hold in the immutable log.
func NewReleaseMarker(tenantId uuid.UUID, seq int64, res *entity.Reservation, now time.Time) *entity.CreditTransaction {
	workflowId := res.WorkflowId
	return &entity.CreditTransaction{
		Id:               uuid.New(),
		TenantId:         tenantId,
		Seq:              seq,
		Type:             entity.TransactionTypeAdjustment,
		CreditAmount:     0,
		UnitPrice:        res.RateLocked,
		TotalAmount:      0,
		Currency:         res.Currency,
		LinkedWorkflowId: &workflowId,
		Description:      "reservation released",
		CreatedAt:        now,
	}
}
