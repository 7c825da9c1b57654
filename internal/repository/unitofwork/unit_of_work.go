package unitofwork

import (
	"context"

	"flowcredits-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	CreditTransactionRepository() contract.CreditTransactionRepository
	BalanceRepository() contract.BalanceRepository
	ReservationRepository() contract.ReservationRepository
	PaymentRepository() contract.PaymentRepository
	CreditPolicyRepository() contract.CreditPolicyRepository
}
