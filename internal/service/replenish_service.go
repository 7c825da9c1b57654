package service

import (
	"context"
	"encoding/json"
	"errors"

	"flowcredits-be/internal/apperrors"
	"flowcredits-be/internal/dto"
	"flowcredits-be/internal/entity"
	"flowcredits-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IReplenishService interface {
	Consume(ctx context.Context) error
}

// replenishService drains the auto-replenish queue. Purchases run here, off
// the request path, so a consume that trips the threshold never waits on the
// payment flow while holding the tenant lock.
type replenishService struct {
	pubSub          *gochannel.GoChannel
	topicName       string
	purchaseService IPurchaseService
	logger          logger.ILogger
}

func NewReplenishService(
	pubSub *gochannel.GoChannel,
	topicName string,
	purchaseService IPurchaseService,
	log logger.ILogger,
) IReplenishService {
	return &replenishService{
		pubSub:          pubSub,
		topicName:       topicName,
		purchaseService: purchaseService,
		logger:          log,
	}
}

func (cs *replenishService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *replenishService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ReplenishCreditsMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Replenish", "Failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	_, err := cs.purchaseService.PurchaseCredits(ctx, payload.TenantId, &dto.PurchaseRequest{
		Quantity:      payload.Quantity,
		PaymentMethod: string(entity.PaymentMethodInternal),
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrBusy) {
			cs.logger.Warn("Replenish", "Tenant busy, retrying", map[string]interface{}{
				"tenant_id": payload.TenantId,
			})
			msg.Nack() // Nack for retriable errors
			return
		}
		cs.logger.Error("Replenish", "Auto-replenish purchase failed", map[string]interface{}{
			"tenant_id": payload.TenantId,
			"quantity":  payload.Quantity,
			"error":     err.Error(),
		})
		msg.Ack() // Non-retriable, do not loop forever
		return
	}

	cs.logger.Info("Replenish", "Auto-replenish completed", map[string]interface{}{
		"tenant_id": payload.TenantId,
		"quantity":  payload.Quantity,
	})
	msg.Ack()
}
