package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flowcredits-be/internal/dto"
	"flowcredits-be/internal/entity"
	"flowcredits-be/internal/observability/metrics"
	"flowcredits-be/internal/pkg/logger"
	"flowcredits-be/internal/repository/memory"
	"flowcredits-be/internal/repository/unitofwork"
	"flowcredits-be/internal/websocket"
	"flowcredits-be/pkg/events"
	pktNats "flowcredits-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

type IAlertService interface {
	Evaluate(ctx context.Context, tenantId uuid.UUID) (*entity.Alert, error)
	EvaluateAndNotify(ctx context.Context, tenantId uuid.UUID)
}

type alertService struct {
	uowFactory     unitofwork.RepositoryFactory
	policyCache    *memory.PolicyCache
	eventPublisher *pktNats.Publisher
	hub            *websocket.Hub
	pubSub         *gochannel.GoChannel
	replenishTopic string
	debounce       *gocache.Cache
	logger         logger.ILogger
	metrics        *metrics.LedgerMetrics
}

func NewAlertService(
	uowFactory unitofwork.RepositoryFactory,
	policyCache *memory.PolicyCache,
	eventPublisher *pktNats.Publisher,
	hub *websocket.Hub,
	pubSub *gochannel.GoChannel,
	replenishTopic string,
	log logger.ILogger,
	m *metrics.LedgerMetrics,
) IAlertService {
	return &alertService{
		uowFactory:     uowFactory,
		policyCache:    policyCache,
		eventPublisher: eventPublisher,
		hub:            hub,
		pubSub:         pubSub,
		replenishTopic: replenishTopic,
		// One replenish trigger per tenant per window, so a burst of
		// consumptions below the threshold does not fan out into duplicates.
		debounce: gocache.New(10*time.Minute, 15*time.Minute),
		logger:   log,
		metrics:  m,
	}
}

// balanceStatusFor classifies an available balance against a tenant policy.
// Critical wins over low; no policy means always healthy.
func balanceStatusFor(available int64, policy *entity.CreditPolicy) (entity.BalanceStatus, int64) {
	if policy == nil {
		return entity.BalanceStatusHealthy, 0
	}
	if available <= policy.CriticalThreshold {
		return entity.BalanceStatusCritical, policy.CriticalThreshold
	}
	if available <= policy.LowThreshold {
		return entity.BalanceStatusLow, policy.LowThreshold
	}
	return entity.BalanceStatusHealthy, 0
}

func (s *alertService) policyFor(ctx context.Context, tenantId uuid.UUID) (*entity.CreditPolicy, error) {
	if policy, found := s.policyCache.Get(tenantId); found {
		return policy, nil
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	policy, err := uow.CreditPolicyRepository().FindByTenant(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	if policy != nil {
		s.policyCache.Set(policy)
	}
	return policy, nil
}

func (s *alertService) Evaluate(ctx context.Context, tenantId uuid.UUID) (*entity.Alert, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	balance, err := uow.BalanceRepository().FindByTenant(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		balance = &entity.ClientBalance{TenantId: tenantId}
	}

	policy, err := s.policyFor(ctx, tenantId)
	if err != nil {
		return nil, err
	}

	available := balance.AvailableCredits()
	status, threshold := balanceStatusFor(available, policy)

	return &entity.Alert{
		TenantId:         tenantId,
		Status:           status,
		AvailableCredits: available,
		Threshold:        threshold,
		Message:          fmt.Sprintf("available credits %d (threshold %d)", available, threshold),
		OccurredAt:       time.Now(),
	}, nil
}

// EvaluateAndNotify re-checks a tenant after every balance mutation. It is
// best effort: alerting never fails the ledger operation that triggered it.
func (s *alertService) EvaluateAndNotify(ctx context.Context, tenantId uuid.UUID) {
	alert, err := s.Evaluate(ctx, tenantId)
	if err != nil {
		s.logger.Error("Alert", "Evaluation failed", map[string]interface{}{
			"tenant_id": tenantId,
			"error":     err.Error(),
		})
		return
	}

	if s.hub != nil {
		s.hub.Send(tenantId, "balance_update", map[string]interface{}{
			"tenant_id":         tenantId,
			"available_credits": alert.AvailableCredits,
			"status":            alert.Status,
		})
	}

	if alert.Status != entity.BalanceStatusHealthy {
		s.metrics.IncAlert(string(alert.Status))

		eventType := "BALANCE_LOW"
		if alert.Status == entity.BalanceStatusCritical {
			eventType = "BALANCE_CRITICAL"
		}

		if s.eventPublisher != nil {
			evt := events.BaseEvent{
				Type: eventType,
				Data: map[string]interface{}{
					"tenant_id":         tenantId,
					"available_credits": alert.AvailableCredits,
					"threshold":         alert.Threshold,
					"message":           alert.Message,
					"occurred_at":       alert.OccurredAt,
				},
				OccurredAt: alert.OccurredAt,
			}
			if err := s.eventPublisher.Publish(ctx, evt); err != nil {
				s.logger.Warn("Alert", "Failed to publish alert event", map[string]interface{}{
					"tenant_id": tenantId,
					"type":      eventType,
					"error":     err.Error(),
				})
			}
		}

		if s.hub != nil {
			s.hub.Send(tenantId, "balance_alert", alert)
		}
	}

	s.maybeReplenish(ctx, tenantId, alert.AvailableCredits)
}

func (s *alertService) maybeReplenish(ctx context.Context, tenantId uuid.UUID, available int64) {
	policy, err := s.policyFor(ctx, tenantId)
	if err != nil || policy == nil {
		return
	}
	if !policy.AutoReplenishEnabled || policy.AutoReplenishQuantity <= 0 {
		return
	}
	if available > policy.AutoReplenishThreshold {
		return
	}
	if err := s.debounce.Add("replenish:"+tenantId.String(), true, gocache.DefaultExpiration); err != nil {
		// Already triggered within the window.
		return
	}

	payload, err := json.Marshal(dto.ReplenishCreditsMessage{
		TenantId: tenantId,
		Quantity: policy.AutoReplenishQuantity,
	})
	if err != nil {
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.pubSub.Publish(s.replenishTopic, msg); err != nil {
		s.logger.Error("Alert", "Failed to enqueue auto-replenish", map[string]interface{}{
			"tenant_id": tenantId,
			"error":     err.Error(),
		})
		return
	}

	s.logger.Info("Alert", "Auto-replenish enqueued", map[string]interface{}{
		"tenant_id": tenantId,
		"quantity":  policy.AutoReplenishQuantity,
		"available": available,
	})
}
