package service

import (
	"context"
	"fmt"
	"time"

	"flowcredits-be/internal/dto"
	"flowcredits-be/internal/entity"
	"flowcredits-be/internal/observability/metrics"
	"flowcredits-be/internal/pkg/logger"
	"flowcredits-be/internal/repository/specification"
	"flowcredits-be/internal/repository/unitofwork"
	"flowcredits-be/pkg/ledger"
	"flowcredits-be/pkg/locks"

	"github.com/google/uuid"
)

type IBalanceService interface {
	GetBalance(ctx context.Context, tenantId uuid.UUID) (*dto.BalanceResponse, error)
	GetTransactions(ctx context.Context, tenantId uuid.UUID, limit, offset int) ([]*dto.TransactionResponse, error)
	Rebuild(ctx context.Context, tenantId uuid.UUID) (*dto.RebuildResponse, error)
	StartReconciler(ctx context.Context)
}

type balanceService struct {
	uowFactory        unitofwork.RepositoryFactory
	locks             *locks.Manager
	logger            logger.ILogger
	metrics           *metrics.LedgerMetrics
	reconcileInterval time.Duration
}

func NewBalanceService(
	uowFactory unitofwork.RepositoryFactory,
	lockManager *locks.Manager,
	log logger.ILogger,
	m *metrics.LedgerMetrics,
	reconcileInterval time.Duration,
) IBalanceService {
	return &balanceService{
		uowFactory:        uowFactory,
		locks:             lockManager,
		logger:            log,
		metrics:           m,
		reconcileInterval: reconcileInterval,
	}
}

func (s *balanceService) GetBalance(ctx context.Context, tenantId uuid.UUID) (*dto.BalanceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	balance, err := uow.BalanceRepository().FindByTenant(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		balance = &entity.ClientBalance{TenantId: tenantId}
	}

	policy, err := uow.CreditPolicyRepository().FindByTenant(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	status, threshold := balanceStatusFor(balance.AvailableCredits(), policy)
	var alerts []string
	if status != entity.BalanceStatusHealthy {
		alerts = append(alerts, fmt.Sprintf("balance %s: available credits %d at or below threshold %d",
			status, balance.AvailableCredits(), threshold))
	}

	return &dto.BalanceResponse{
		TenantId:         balance.TenantId,
		CurrentBalance:   balance.CurrentBalance(),
		ReservedCredits:  balance.ReservedCredits,
		AvailableCredits: balance.AvailableCredits(),
		TotalPurchased:   balance.TotalPurchased,
		TotalUsed:        balance.TotalUsed,
		TotalRefunded:    balance.TotalRefunded,
		TotalAdjustments: balance.TotalAdjustments,
		TotalExpired:     balance.TotalExpired,
		Status:           string(status),
		Alerts:           alerts,
		Version:          balance.Version,
		UpdatedAt:        balance.UpdatedAt,
	}, nil
}

func (s *balanceService) GetTransactions(ctx context.Context, tenantId uuid.UUID, limit, offset int) ([]*dto.TransactionResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	txs, err := uow.CreditTransactionRepository().FindAll(ctx,
		specification.ByTenant{TenantID: tenantId},
		specification.OrderBy{Field: "seq", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.TransactionResponse, len(txs))
	for i, tx := range txs {
		res[i] = &dto.TransactionResponse{
			Id:           tx.Id,
			Seq:          tx.Seq,
			Type:         string(tx.Type),
			CreditAmount: tx.CreditAmount,
			UnitPrice:    tx.UnitPrice,
			TotalAmount:  tx.TotalAmount,
			Currency:     tx.Currency,
			Description:  tx.Description,
			CreatedAt:    tx.CreatedAt,
		}
	}
	return res, nil
}

// Rebuild replays the full transaction log under the tenant lock and replaces
// the cached snapshot with the result. Any drift found is reported, not hidden.
func (s *balanceService) Rebuild(ctx context.Context, tenantId uuid.UUID) (*dto.RebuildResponse, error) {
	release, err := s.locks.Acquire(ctx, tenantId)
	if err != nil {
		s.metrics.IncLockBusy()
		return nil, err
	}
	defer release()

	cached, rebuilt, drift, err := s.replayTenant(ctx, tenantId)
	if err != nil {
		return nil, err
	}

	rebuilt.Version = cached.Version + 1
	rebuilt.UpdatedAt = time.Now()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.BalanceRepository().Upsert(ctx, rebuilt); err != nil {
		return nil, err
	}

	if len(drift) > 0 {
		s.metrics.IncReplayCheck("drift")
		s.logger.Warn("Balance", "Rebuild corrected drifted snapshot", map[string]interface{}{
			"tenant_id": tenantId,
			"drift":     drift,
		})
	} else {
		s.metrics.IncReplayCheck("clean")
	}

	return &dto.RebuildResponse{
		TenantId: tenantId,
		Drift:    drift,
		Rebuilt:  true,
	}, nil
}

func (s *balanceService) replayTenant(ctx context.Context, tenantId uuid.UUID) (cached, rebuilt *entity.ClientBalance, drift []string, err error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	txs, err := uow.CreditTransactionRepository().FindAll(ctx,
		specification.ByTenant{TenantID: tenantId},
		specification.SeqAscending{},
	)
	if err != nil {
		return nil, nil, nil, err
	}

	completed, err := uow.PaymentRepository().FindCompletedIds(ctx, tenantId)
	if err != nil {
		return nil, nil, nil, err
	}

	reserved, err := uow.ReservationRepository().SumOpenByTenant(ctx, tenantId)
	if err != nil {
		return nil, nil, nil, err
	}

	rebuilt, err = ledger.Replay(tenantId, txs, completed, reserved)
	if err != nil {
		return nil, nil, nil, err
	}

	cached, err = uow.BalanceRepository().FindByTenant(ctx, tenantId)
	if err != nil {
		return nil, nil, nil, err
	}
	if cached == nil {
		cached = &entity.ClientBalance{TenantId: tenantId}
	}

	return cached, rebuilt, ledger.Drift(cached, rebuilt), nil
}

// StartReconciler runs the periodic replay verification over all known
// tenants. It reports drift; it never rewrites snapshots on its own. Fixing a
// drifted tenant is an explicit Rebuild call.
func (s *balanceService) StartReconciler(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.reconcileInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.reconcileAll(ctx)
			}
		}
	}()
}

func (s *balanceService) reconcileAll(ctx context.Context) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	tenants, err := uow.BalanceRepository().FindAllTenants(ctx)
	if err != nil {
		s.logger.Error("Balance", "Reconciler failed to list tenants", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	for _, tenantId := range tenants {
		_, _, drift, err := s.replayTenant(ctx, tenantId)
		if err != nil {
			s.metrics.IncReplayCheck("failed")
			s.logger.Error("Balance", "Reconciler replay failed", map[string]interface{}{
				"tenant_id": tenantId,
				"error":     err.Error(),
			})
			continue
		}
		if len(drift) > 0 {
			s.metrics.IncReplayCheck("drift")
			s.logger.Warn("Balance", "Snapshot drift detected", map[string]interface{}{
				"tenant_id": tenantId,
				"drift":     drift,
			})
		} else {
			s.metrics.IncReplayCheck("clean")
		}
	}
}
