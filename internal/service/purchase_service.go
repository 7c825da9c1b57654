package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flowcredits-be/internal/apperrors"
	"flowcredits-be/internal/dto"
	"flowcredits-be/internal/entity"
	"flowcredits-be/internal/observability/metrics"
	"flowcredits-be/internal/pkg/logger"
	"flowcredits-be/internal/repository/specification"
	"flowcredits-be/internal/repository/unitofwork"
	"flowcredits-be/pkg/gateway"
	"flowcredits-be/pkg/ledger"
	"flowcredits-be/pkg/locks"
	"flowcredits-be/pkg/pricing"
	"flowcredits-be/pkg/sequence"

	"github.com/google/uuid"
)

// MaxOrderQuantity bounds a single purchase. Quantities beyond it would
// overflow int64 amount arithmetic long before any customer needs them.
const MaxOrderQuantity int64 = 10_000_000

type IPurchaseService interface {
	GetQuote(ctx context.Context, quantity int64) (*dto.QuoteResponse, error)
	PurchaseCredits(ctx context.Context, tenantId uuid.UUID, req *dto.PurchaseRequest) (*dto.PurchaseResponse, error)
	HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error
	RefundPayment(ctx context.Context, tenantId uuid.UUID, req *dto.RefundRequest) (*dto.RefundResponse, error)
}

type purchaseService struct {
	uowFactory unitofwork.RepositoryFactory
	engine     *pricing.Engine
	gateway    gateway.PaymentGateway
	locks      *locks.Manager
	seq        *sequence.Generator
	alerts     IAlertService
	logger     logger.ILogger
	metrics    *metrics.LedgerMetrics
	currency   string
}

func NewPurchaseService(
	uowFactory unitofwork.RepositoryFactory,
	engine *pricing.Engine,
	gw gateway.PaymentGateway,
	lockManager *locks.Manager,
	seq *sequence.Generator,
	alerts IAlertService,
	log logger.ILogger,
	m *metrics.LedgerMetrics,
	currency string,
) IPurchaseService {
	return &purchaseService{
		uowFactory: uowFactory,
		engine:     engine,
		gateway:    gw,
		locks:      lockManager,
		seq:        seq,
		alerts:     alerts,
		logger:     log,
		metrics:    m,
		currency:   currency,
	}
}

func (s *purchaseService) GetQuote(ctx context.Context, quantity int64) (*dto.QuoteResponse, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", apperrors.ErrInvalidQuantity, quantity)
	}
	if quantity > MaxOrderQuantity {
		return nil, fmt.Errorf("%w: quantity %d exceeds the per-order limit of %d", apperrors.ErrInvalidQuantity, quantity, MaxOrderQuantity)
	}
	quote := s.engine.QuoteFor(quantity)
	return &dto.QuoteResponse{
		Quantity:    quote.Quantity,
		Tier:        quote.Tier.Name,
		DiscountPct: quote.DiscountPct,
		UnitPrice:   quote.UnitPrice,
		TotalAmount: quote.TotalAmount,
		Currency:    s.currency,
	}, nil
}

// PurchaseCredits appends a pending purchase entry and opens a payment for it.
// The entry does not count toward the balance until the payment completes;
// HandleNotification (or the internal settlement for auto-replenish) flips it.
func (s *purchaseService) PurchaseCredits(ctx context.Context, tenantId uuid.UUID, req *dto.PurchaseRequest) (*dto.PurchaseResponse, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", apperrors.ErrInvalidQuantity, req.Quantity)
	}
	if req.Quantity > MaxOrderQuantity {
		return nil, fmt.Errorf("%w: quantity %d exceeds the per-order limit of %d", apperrors.ErrInvalidQuantity, req.Quantity, MaxOrderQuantity)
	}
	if req.Currency != "" && req.Currency != s.currency {
		return nil, fmt.Errorf("%w: ledger operates in %s, got %s", apperrors.ErrInvalidCurrency, s.currency, req.Currency)
	}

	method := entity.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = entity.PaymentMethodGateway
	}

	quote := s.engine.QuoteFor(req.Quantity)
	now := time.Now()

	payment := &entity.Payment{
		Id:        uuid.New(),
		TenantId:  tenantId,
		Amount:    quote.TotalAmount,
		Currency:  s.currency,
		Method:    method,
		Status:    entity.PaymentGatewayStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	paymentId := payment.Id
	tx := &entity.CreditTransaction{
		Id:              uuid.New(),
		TenantId:        tenantId,
		Seq:             s.seq.Next(),
		Type:            entity.TransactionTypePurchase,
		CreditAmount:    quote.Quantity,
		UnitPrice:       quote.UnitPrice,
		TotalAmount:     quote.TotalAmount,
		Currency:        s.currency,
		LinkedPaymentId: &paymentId,
		Description:     fmt.Sprintf("purchase of %d credits (%s tier)", quote.Quantity, quote.Tier.Name),
		CreatedAt:       now,
	}
	if err := ledger.ValidateTransaction(tx); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.PaymentRepository().Create(ctx, payment); err != nil {
		return nil, err
	}
	if err := uow.CreditTransactionRepository().Create(ctx, tx); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.metrics.IncTransaction(string(entity.TransactionTypePurchase))
	s.logger.Info("Purchase", "Purchase opened", map[string]interface{}{
		"tenant_id":  tenantId,
		"payment_id": payment.Id,
		"quantity":   quote.Quantity,
		"unit_price": quote.UnitPrice,
		"total":      quote.TotalAmount,
		"tier":       quote.Tier.Name,
	})

	res := &dto.PurchaseResponse{
		PaymentId:     payment.Id,
		TransactionId: tx.Id,
		Quantity:      quote.Quantity,
		UnitPrice:     quote.UnitPrice,
		TotalAmount:   quote.TotalAmount,
		Currency:      s.currency,
		Status:        string(entity.PaymentGatewayStatusPending),
	}

	switch method {
	case entity.PaymentMethodInternal:
		// Auto-replenish settles immediately; there is no external charge.
		if err := s.settle(ctx, payment.Id, entity.PaymentGatewayStatusCompleted); err != nil {
			return nil, err
		}
		res.Status = string(entity.PaymentGatewayStatusCompleted)

	case entity.PaymentMethodGateway:
		// External call after the DB commit, matching the checkout flow.
		charge, err := s.gateway.CreateCharge(ctx, &gateway.ChargeRequest{
			OrderID:       payment.Id.String(),
			GrossAmount:   quote.TotalAmount,
			ItemID:        "flow-credits",
			ItemName:      fmt.Sprintf("%d flow credits", quote.Quantity),
			Quantity:      quote.Quantity,
			UnitPrice:     quote.UnitPrice,
			CustomerEmail: req.CustomerEmail,
		})
		if err != nil {
			s.logger.Error("Purchase", "Gateway charge failed", map[string]interface{}{
				"payment_id": payment.Id,
				"error":      err.Error(),
			})
			return nil, fmt.Errorf("%w: %v", apperrors.ErrPaymentFailed, err)
		}
		payment.GatewayReference = charge.Token
		if err := s.uowFactory.NewUnitOfWork(ctx).PaymentRepository().Update(ctx, payment); err != nil {
			return nil, err
		}
		res.SnapToken = charge.Token
		res.SnapRedirectUrl = charge.RedirectURL
	}

	return res, nil
}

func (s *purchaseService) HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error {
	if !s.gateway.VerifySignature(req.OrderId, req.StatusCode, req.GrossAmount, req.SignatureKey) {
		s.logger.Warn("Purchase", "Webhook signature mismatch", map[string]interface{}{
			"order_id": req.OrderId,
		})
		return fmt.Errorf("invalid signature")
	}

	paymentId, err := uuid.Parse(req.OrderId)
	if err != nil {
		return fmt.Errorf("invalid order id format")
	}

	var newStatus entity.PaymentGatewayStatus
	switch req.TransactionStatus {
	case "capture", "settlement":
		newStatus = entity.PaymentGatewayStatusCompleted
	case "deny", "cancel", "expire":
		newStatus = entity.PaymentGatewayStatusFailed
	case "pending":
		return nil
	default:
		s.logger.Warn("Purchase", "Unknown webhook status, ignoring", map[string]interface{}{
			"order_id": req.OrderId,
			"status":   req.TransactionStatus,
		})
		return nil
	}

	// Keep the raw callback for audits, best effort.
	if payload, err := json.Marshal(req); err == nil {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		if err := uow.PaymentRepository().SavePayload(ctx, paymentId, payload); err != nil {
			s.logger.Warn("Purchase", "Failed to store webhook payload", map[string]interface{}{
				"payment_id": paymentId,
				"error":      err.Error(),
			})
		}
	}

	return s.settle(ctx, paymentId, newStatus)
}

// settle finalizes a payment under the tenant lock. Completion makes the
// linked purchase entry effective and folds it into the balance snapshot;
// repeated callbacks for the same terminal status are no-ops.
func (s *purchaseService) settle(ctx context.Context, paymentId uuid.UUID, newStatus entity.PaymentGatewayStatus) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	payment, err := uow.PaymentRepository().FindOne(ctx, specification.ByID{ID: paymentId})
	if err != nil {
		return err
	}
	if payment == nil {
		return fmt.Errorf("%w: %s", apperrors.ErrPaymentNotFound, paymentId)
	}

	lockStart := time.Now()
	release, err := s.locks.Acquire(ctx, payment.TenantId)
	if err != nil {
		s.metrics.IncLockBusy()
		return err
	}
	s.metrics.ObserveLockWait(time.Since(lockStart))
	defer release()

	// Re-read inside the critical section; a concurrent callback may have won.
	payment, err = uow.PaymentRepository().FindOne(ctx, specification.ByID{ID: paymentId})
	if err != nil {
		return err
	}
	if payment.Status == newStatus {
		return nil
	}
	if payment.Status != entity.PaymentGatewayStatusPending {
		s.logger.Warn("Purchase", "Ignoring status change on settled payment", map[string]interface{}{
			"payment_id": paymentId,
			"from":       payment.Status,
			"to":         newStatus,
		})
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	payment.Status = newStatus
	payment.UpdatedAt = time.Now()
	if err := uow.PaymentRepository().Update(ctx, payment); err != nil {
		return err
	}

	if newStatus == entity.PaymentGatewayStatusCompleted {
		tx, err := uow.CreditTransactionRepository().FindOne(ctx, specification.ByLinkedPayment{PaymentID: paymentId})
		if err != nil {
			return err
		}
		if tx == nil {
			return fmt.Errorf("%w: no purchase entry linked to payment %s", apperrors.ErrDataIntegrity, paymentId)
		}

		balance, err := uow.BalanceRepository().FindByTenant(ctx, payment.TenantId)
		if err != nil {
			return err
		}
		if balance == nil {
			balance = &entity.ClientBalance{TenantId: payment.TenantId}
		}
		if err := ledger.Apply(balance, tx); err != nil {
			return err
		}
		if err := uow.BalanceRepository().Upsert(ctx, balance); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info("Purchase", "Payment settled", map[string]interface{}{
		"payment_id": paymentId,
		"tenant_id":  payment.TenantId,
		"status":     newStatus,
	})

	if newStatus == entity.PaymentGatewayStatusCompleted && s.alerts != nil {
		s.alerts.EvaluateAndNotify(ctx, payment.TenantId)
	}
	return nil
}

// RefundPayment reverses a completed purchase by appending a positive refund
// entry. The credits must still be available; refunding consumed credits is a
// data integrity violation.
func (s *purchaseService) RefundPayment(ctx context.Context, tenantId uuid.UUID, req *dto.RefundRequest) (*dto.RefundResponse, error) {
	lockStart := time.Now()
	release, err := s.locks.Acquire(ctx, tenantId)
	if err != nil {
		s.metrics.IncLockBusy()
		return nil, err
	}
	s.metrics.ObserveLockWait(time.Since(lockStart))
	defer release()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	payment, err := uow.PaymentRepository().FindOne(ctx,
		specification.ByID{ID: req.PaymentId},
		specification.ByTenant{TenantID: tenantId},
	)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrPaymentNotFound, req.PaymentId)
	}
	if payment.Status != entity.PaymentGatewayStatusCompleted {
		return nil, fmt.Errorf("%w: cannot refund payment in status %s", apperrors.ErrInvalidState, payment.Status)
	}

	purchaseTx, err := uow.CreditTransactionRepository().FindOne(ctx, specification.ByLinkedPayment{PaymentID: payment.Id})
	if err != nil {
		return nil, err
	}
	if purchaseTx == nil {
		return nil, fmt.Errorf("%w: no purchase entry linked to payment %s", apperrors.ErrDataIntegrity, payment.Id)
	}

	now := time.Now()
	paymentId := payment.Id
	description := "purchase refunded"
	if req.Reason != "" {
		description = fmt.Sprintf("purchase refunded: %s", req.Reason)
	}
	refundTx := &entity.CreditTransaction{
		Id:              uuid.New(),
		TenantId:        tenantId,
		Seq:             s.seq.Next(),
		Type:            entity.TransactionTypeRefund,
		CreditAmount:    purchaseTx.CreditAmount,
		UnitPrice:       purchaseTx.UnitPrice,
		TotalAmount:     purchaseTx.TotalAmount,
		Currency:        purchaseTx.Currency,
		LinkedPaymentId: &paymentId,
		Description:     description,
		CreatedAt:       now,
	}
	if err := ledger.ValidateTransaction(refundTx); err != nil {
		return nil, err
	}

	balance, err := uow.BalanceRepository().FindByTenant(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		balance = &entity.ClientBalance{TenantId: tenantId}
	}
	if err := ledger.Apply(balance, refundTx); err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	payment.Status = entity.PaymentGatewayStatusRefunded
	payment.UpdatedAt = now
	if err := uow.PaymentRepository().Update(ctx, payment); err != nil {
		return nil, err
	}
	if err := uow.CreditTransactionRepository().Create(ctx, refundTx); err != nil {
		return nil, err
	}
	if err := uow.BalanceRepository().Upsert(ctx, balance); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.metrics.IncTransaction(string(entity.TransactionTypeRefund))
	s.logger.Info("Purchase", "Payment refunded", map[string]interface{}{
		"payment_id": payment.Id,
		"tenant_id":  tenantId,
		"credits":    refundTx.CreditAmount,
	})

	if s.alerts != nil {
		s.alerts.EvaluateAndNotify(ctx, tenantId)
	}

	return &dto.RefundResponse{
		TransactionId: refundTx.Id,
		CreditAmount:  refundTx.CreditAmount,
		TotalAmount:   refundTx.TotalAmount,
	}, nil
}
