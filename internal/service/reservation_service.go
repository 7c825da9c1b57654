package service

import (
	"context"
	"fmt"
	"time"

	"flowcredits-be/internal/apperrors"
	"flowcredits-be/internal/dto"
	"flowcredits-be/internal/entity"
	"flowcredits-be/internal/observability/metrics"
	"flowcredits-be/internal/pkg/logger"
	"flowcredits-be/internal/repository/unitofwork"
	"flowcredits-be/pkg/ledger"
	"flowcredits-be/pkg/locks"
	"flowcredits-be/pkg/pricing"
	"flowcredits-be/pkg/sequence"

	"github.com/google/uuid"
)

type IReservationService interface {
	Reserve(ctx context.Context, tenantId uuid.UUID, req *dto.ReserveRequest) (*dto.ReserveResponse, error)
	Consume(ctx context.Context, tenantId uuid.UUID, req *dto.ConsumeRequest) (*dto.ConsumeResponse, error)
	Release(ctx context.Context, tenantId uuid.UUID, req *dto.ReleaseRequest) (*dto.ReleaseResponse, error)
}

type reservationService struct {
	uowFactory unitofwork.RepositoryFactory
	engine     *pricing.Engine
	locks      *locks.Manager
	seq        *sequence.Generator
	alerts     IAlertService
	logger     logger.ILogger
	metrics    *metrics.LedgerMetrics
	currency   string
}

func NewReservationService(
	uowFactory unitofwork.RepositoryFactory,
	engine *pricing.Engine,
	lockManager *locks.Manager,
	seq *sequence.Generator,
	alerts IAlertService,
	log logger.ILogger,
	m *metrics.LedgerMetrics,
	currency string,
) IReservationService {
	return &reservationService{
		uowFactory: uowFactory,
		engine:     engine,
		locks:      lockManager,
		seq:        seq,
		alerts:     alerts,
		logger:     log,
		metrics:    m,
		currency:   currency,
	}
}

// Reserve places a hold on available credits at the current unit price. The
// availability check and the hold write happen under the tenant lock so two
// concurrent workflows cannot both claim the last credits.
func (s *reservationService) Reserve(ctx context.Context, tenantId uuid.UUID, req *dto.ReserveRequest) (*dto.ReserveResponse, error) {
	if req.Credits <= 0 {
		return nil, fmt.Errorf("%w: credits must be positive, got %d", apperrors.ErrInvalidQuantity, req.Credits)
	}

	lockStart := time.Now()
	release, err := s.locks.Acquire(ctx, tenantId)
	if err != nil {
		s.metrics.IncLockBusy()
		return nil, err
	}
	s.metrics.ObserveLockWait(time.Since(lockStart))
	defer release()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	balance, err := uow.BalanceRepository().FindByTenant(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		balance = &entity.ClientBalance{TenantId: tenantId}
	}

	if balance.AvailableCredits() < req.Credits {
		return nil, fmt.Errorf("%w: requested %d, available %d",
			apperrors.ErrInsufficientCredits, req.Credits, balance.AvailableCredits())
	}

	_, rate, _ := s.engine.PricePerUnit(req.Credits)
	now := time.Now()
	reservation := &entity.Reservation{
		Token:           uuid.New(),
		TenantId:        tenantId,
		WorkflowId:      req.WorkflowId,
		CreditsReserved: req.Credits,
		RateLocked:      rate,
		Currency:        s.currency,
		State:           entity.ReservationStateReserved,
		CreatedAt:       now,
	}

	balance.ReservedCredits += req.Credits
	balance.Version++
	balance.UpdatedAt = now

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ReservationRepository().Create(ctx, reservation); err != nil {
		return nil, err
	}
	if err := uow.BalanceRepository().Upsert(ctx, balance); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.metrics.IncReservationEvent("reserved")
	s.logger.Info("Reservation", "Credits reserved", map[string]interface{}{
		"tenant_id":   tenantId,
		"token":       reservation.Token,
		"workflow_id": req.WorkflowId,
		"credits":     req.Credits,
		"rate_locked": rate,
	})

	return &dto.ReserveResponse{
		Token:           reservation.Token,
		CreditsReserved: reservation.CreditsReserved,
		RateLocked:      reservation.RateLocked,
		Currency:        reservation.Currency,
	}, nil
}

// Consume closes a reservation by appending the usage entry at the locked
// rate. Calling it again for an already consumed token returns the original
// result instead of double charging.
func (s *reservationService) Consume(ctx context.Context, tenantId uuid.UUID, req *dto.ConsumeRequest) (*dto.ConsumeResponse, error) {
	lockStart := time.Now()
	release, err := s.locks.Acquire(ctx, tenantId)
	if err != nil {
		s.metrics.IncLockBusy()
		return nil, err
	}
	s.metrics.ObserveLockWait(time.Since(lockStart))
	defer release()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	reservation, err := uow.ReservationRepository().FindByToken(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	if reservation == nil || reservation.TenantId != tenantId {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTokenNotFound, req.Token)
	}

	switch reservation.State {
	case entity.ReservationStateConsumed:
		// Idempotent retry: the charge already happened exactly once.
		return &dto.ConsumeResponse{
			Token:              reservation.Token,
			State:              string(reservation.State),
			UsageTransactionId: *reservation.UsageTransactionId,
			CreditsCharged:     reservation.CreditsReserved,
			TotalAmount:        reservation.CreditsReserved * reservation.RateLocked,
		}, nil
	case entity.ReservationStateReleased:
		return nil, fmt.Errorf("%w: reservation %s was released", apperrors.ErrInvalidState, req.Token)
	}

	now := time.Now()
	usageTx := ledger.NewUsageTransaction(tenantId, s.seq.Next(), reservation, now)
	if err := ledger.ValidateTransaction(usageTx); err != nil {
		return nil, err
	}

	balance, err := uow.BalanceRepository().FindByTenant(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		return nil, fmt.Errorf("%w: consuming reservation %s but tenant %s has no balance",
			apperrors.ErrDataIntegrity, req.Token, tenantId)
	}

	// Return the hold before folding the usage in, otherwise the available
	// check inside Apply would count the credits twice.
	balance.ReservedCredits -= reservation.CreditsReserved
	if err := ledger.Apply(balance, usageTx); err != nil {
		return nil, err
	}

	usageTxId := usageTx.Id
	reservation.State = entity.ReservationStateConsumed
	reservation.UsageTransactionId = &usageTxId
	reservation.ClosedAt = &now

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.CreditTransactionRepository().Create(ctx, usageTx); err != nil {
		return nil, err
	}
	if err := uow.ReservationRepository().Update(ctx, reservation); err != nil {
		return nil, err
	}
	if err := uow.BalanceRepository().Upsert(ctx, balance); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.metrics.IncTransaction(string(entity.TransactionTypeUsage))
	s.metrics.IncReservationEvent("consumed")
	s.logger.Info("Reservation", "Reservation consumed", map[string]interface{}{
		"tenant_id": tenantId,
		"token":     reservation.Token,
		"credits":   reservation.CreditsReserved,
		"total":     usageTx.TotalAmount,
	})

	if s.alerts != nil {
		s.alerts.EvaluateAndNotify(ctx, tenantId)
	}

	return &dto.ConsumeResponse{
		Token:              reservation.Token,
		State:              string(reservation.State),
		UsageTransactionId: usageTx.Id,
		CreditsCharged:     reservation.CreditsReserved,
		TotalAmount:        usageTx.TotalAmount,
	}, nil
}

// Release returns a hold without charging. The credits go back to the
// available pool and a zero-valued adjustment marker keeps the audit trail.
func (s *reservationService) Release(ctx context.Context, tenantId uuid.UUID, req *dto.ReleaseRequest) (*dto.ReleaseResponse, error) {
	lockStart := time.Now()
	release, err := s.locks.Acquire(ctx, tenantId)
	if err != nil {
		s.metrics.IncLockBusy()
		return nil, err
	}
	s.metrics.ObserveLockWait(time.Since(lockStart))
	defer release()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	reservation, err := uow.ReservationRepository().FindByToken(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	if reservation == nil || reservation.TenantId != tenantId {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTokenNotFound, req.Token)
	}

	switch reservation.State {
	case entity.ReservationStateReleased:
		return &dto.ReleaseResponse{
			Token:           reservation.Token,
			State:           string(reservation.State),
			CreditsReturned: reservation.CreditsReserved,
		}, nil
	case entity.ReservationStateConsumed:
		return nil, fmt.Errorf("%w: reservation %s was already consumed", apperrors.ErrInvalidState, req.Token)
	}

	now := time.Now()
	marker := ledger.NewReleaseMarker(tenantId, s.seq.Next(), reservation, now)
	if err := ledger.ValidateTransaction(marker); err != nil {
		return nil, err
	}

	balance, err := uow.BalanceRepository().FindByTenant(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		return nil, fmt.Errorf("%w: releasing reservation %s but tenant %s has no balance",
			apperrors.ErrDataIntegrity, req.Token, tenantId)
	}

	balance.ReservedCredits -= reservation.CreditsReserved
	if err := ledger.Apply(balance, marker); err != nil {
		return nil, err
	}

	reservation.State = entity.ReservationStateReleased
	reservation.ClosedAt = &now

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.CreditTransactionRepository().Create(ctx, marker); err != nil {
		return nil, err
	}
	if err := uow.ReservationRepository().Update(ctx, reservation); err != nil {
		return nil, err
	}
	if err := uow.BalanceRepository().Upsert(ctx, balance); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.metrics.IncReservationEvent("released")
	s.logger.Info("Reservation", "Reservation released", map[string]interface{}{
		"tenant_id": tenantId,
		"token":     reservation.Token,
		"credits":   reservation.CreditsReserved,
	})

	return &dto.ReleaseResponse{
		Token:           reservation.Token,
		State:           string(reservation.State),
		CreditsReturned: reservation.CreditsReserved,
	}, nil
}
