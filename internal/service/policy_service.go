package service

import (
	"context"
	"fmt"
	"time"

	"flowcredits-be/internal/apperrors"
	"flowcredits-be/internal/dto"
	"flowcredits-be/internal/entity"
	"flowcredits-be/internal/pkg/logger"
	"flowcredits-be/internal/repository/memory"
	"flowcredits-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IPolicyService interface {
	GetPolicy(ctx context.Context, tenantId uuid.UUID) (*dto.PolicyResponse, error)
	UpsertPolicy(ctx context.Context, tenantId uuid.UUID, req *dto.PolicyRequest) (*dto.PolicyResponse, error)
}

type policyService struct {
	uowFactory  unitofwork.RepositoryFactory
	policyCache *memory.PolicyCache
	logger      logger.ILogger
	currency    string
}

func NewPolicyService(
	uowFactory unitofwork.RepositoryFactory,
	policyCache *memory.PolicyCache,
	log logger.ILogger,
	currency string,
) IPolicyService {
	return &policyService{
		uowFactory:  uowFactory,
		policyCache: policyCache,
		logger:      log,
		currency:    currency,
	}
}

func (s *policyService) GetPolicy(ctx context.Context, tenantId uuid.UUID) (*dto.PolicyResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	policy, err := uow.CreditPolicyRepository().FindByTenant(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		return nil, fmt.Errorf("%w: tenant %s", apperrors.ErrPolicyNotFound, tenantId)
	}
	return policyToResponse(policy), nil
}

func (s *policyService) UpsertPolicy(ctx context.Context, tenantId uuid.UUID, req *dto.PolicyRequest) (*dto.PolicyResponse, error) {
	if req.CriticalThreshold > req.LowThreshold {
		return nil, fmt.Errorf("%w: critical threshold %d above low threshold %d",
			apperrors.ErrInvalidQuantity, req.CriticalThreshold, req.LowThreshold)
	}
	if req.AutoReplenishEnabled && req.AutoReplenishQuantity <= 0 {
		return nil, fmt.Errorf("%w: auto-replenish quantity must be positive", apperrors.ErrInvalidQuantity)
	}

	method := entity.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = entity.PaymentMethodInternal
	}

	now := time.Now()
	policy := &entity.CreditPolicy{
		TenantId:               tenantId,
		LowThreshold:           req.LowThreshold,
		CriticalThreshold:      req.CriticalThreshold,
		AutoReplenishEnabled:   req.AutoReplenishEnabled,
		AutoReplenishThreshold: req.AutoReplenishThreshold,
		AutoReplenishQuantity:  req.AutoReplenishQuantity,
		PaymentMethod:          method,
		Currency:               s.currency,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.CreditPolicyRepository().Upsert(ctx, policy); err != nil {
		return nil, err
	}

	s.policyCache.Invalidate(tenantId)
	s.logger.Info("Policy", "Credit policy updated", map[string]interface{}{
		"tenant_id":      tenantId,
		"low":            policy.LowThreshold,
		"critical":       policy.CriticalThreshold,
		"auto_replenish": policy.AutoReplenishEnabled,
	})

	return policyToResponse(policy), nil
}

func policyToResponse(policy *entity.CreditPolicy) *dto.PolicyResponse {
	return &dto.PolicyResponse{
		TenantId:               policy.TenantId,
		LowThreshold:           policy.LowThreshold,
		CriticalThreshold:      policy.CriticalThreshold,
		AutoReplenishEnabled:   policy.AutoReplenishEnabled,
		AutoReplenishThreshold: policy.AutoReplenishThreshold,
		AutoReplenishQuantity:  policy.AutoReplenishQuantity,
		PaymentMethod:          string(policy.PaymentMethod),
		Currency:               policy.Currency,
		UpdatedAt:              policy.UpdatedAt,
	}
}
