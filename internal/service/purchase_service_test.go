package service

import (
	"context"
	"errors"
	"testing"

	"flowcredits-be/internal/apperrors"
	"flowcredits-be/internal/dto"
	"flowcredits-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetQuoteAppliesBulkTier(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	quote, err := env.purchase.GetQuote(ctx, 600)
	require.NoError(t, err)
	assert.Equal(t, "bulk", quote.Tier)
	assert.Equal(t, int64(25), quote.DiscountPct)
	assert.Equal(t, int64(11250), quote.UnitPrice)
	assert.Equal(t, int64(6_750_000), quote.TotalAmount)
	assert.Equal(t, "IDR", quote.Currency)

	_, err = env.purchase.GetQuote(ctx, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)
}

func TestGatewayPurchaseNotEffectiveUntilSettled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()

	res, err := env.purchase.PurchaseCredits(ctx, tenantId, &dto.PurchaseRequest{
		Quantity:      600,
		PaymentMethod: string(entity.PaymentMethodGateway),
		CustomerEmail: "billing@acme.test",
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.PaymentGatewayStatusPending), res.Status)
	assert.NotEmpty(t, res.SnapToken)
	assert.NotEmpty(t, res.SnapRedirectUrl)
	require.Len(t, env.gateway.charges, 1)
	assert.Equal(t, res.PaymentId.String(), env.gateway.charges[0].OrderID)

	// Pending purchases never count toward the balance.
	balance, err := env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.CurrentBalance)

	// Settlement callback makes the entry effective.
	err = env.purchase.HandleNotification(ctx, &dto.MidtransWebhookRequest{
		OrderId:           res.PaymentId.String(),
		TransactionStatus: "settlement",
		StatusCode:        "200",
		GrossAmount:       "6750000.00",
		SignatureKey:      "ignored-by-fake",
	})
	require.NoError(t, err)

	balance, err = env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, int64(600), balance.CurrentBalance)
	assert.Equal(t, int64(600), balance.TotalPurchased)
	assert.Equal(t, int64(600), balance.AvailableCredits)
}

func TestDuplicateSettlementCallbackIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()

	res, err := env.purchase.PurchaseCredits(ctx, tenantId, &dto.PurchaseRequest{Quantity: 100})
	require.NoError(t, err)

	webhook := &dto.MidtransWebhookRequest{
		OrderId:           res.PaymentId.String(),
		TransactionStatus: "settlement",
		StatusCode:        "200",
		GrossAmount:       "1500000.00",
	}
	require.NoError(t, env.purchase.HandleNotification(ctx, webhook))
	require.NoError(t, env.purchase.HandleNotification(ctx, webhook))

	balance, err := env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance.CurrentBalance)
}

func TestFailedPaymentNeverCredits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()

	res, err := env.purchase.PurchaseCredits(ctx, tenantId, &dto.PurchaseRequest{Quantity: 50})
	require.NoError(t, err)

	err = env.purchase.HandleNotification(ctx, &dto.MidtransWebhookRequest{
		OrderId:           res.PaymentId.String(),
		TransactionStatus: "expire",
		StatusCode:        "407",
		GrossAmount:       "750000.00",
	})
	require.NoError(t, err)

	balance, err := env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.CurrentBalance)

	// A late settlement for an already failed payment is ignored.
	err = env.purchase.HandleNotification(ctx, &dto.MidtransWebhookRequest{
		OrderId:           res.PaymentId.String(),
		TransactionStatus: "settlement",
		StatusCode:        "200",
		GrossAmount:       "750000.00",
	})
	require.NoError(t, err)

	balance, err = env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.CurrentBalance)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.validSig = false

	err := env.purchase.HandleNotification(context.Background(), &dto.MidtransWebhookRequest{
		OrderId:           uuid.New().String(),
		TransactionStatus: "settlement",
	})
	assert.Error(t, err)
}

func TestQuantityAboveOrderLimitRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.purchase.GetQuote(ctx, MaxOrderQuantity+1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)

	// An absurd quantity must be refused at the boundary, never priced:
	// unit_price times quantity has to stay within int64.
	_, err = env.purchase.PurchaseCredits(ctx, uuid.New(), &dto.PurchaseRequest{Quantity: 800_000_000_000_000})
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)

	_, err = env.purchase.GetQuote(ctx, MaxOrderQuantity)
	assert.NoError(t, err)
}

func TestPurchaseRejectsForeignCurrency(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.purchase.PurchaseCredits(context.Background(), uuid.New(), &dto.PurchaseRequest{
		Quantity: 10,
		Currency: "USD",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCurrency)
}

func TestInternalPurchaseSettlesImmediately(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()

	res, err := env.purchase.PurchaseCredits(ctx, tenantId, &dto.PurchaseRequest{
		Quantity:      500,
		PaymentMethod: string(entity.PaymentMethodInternal),
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.PaymentGatewayStatusCompleted), res.Status)
	assert.Empty(t, res.SnapToken)
	assert.Empty(t, env.gateway.charges)

	balance, err := env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance.CurrentBalance)
}

func TestGatewayChargeFailureSurfacesAsPaymentError(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.chargeErr = errors.New("gateway unreachable")

	_, err := env.purchase.PurchaseCredits(context.Background(), uuid.New(), &dto.PurchaseRequest{Quantity: 10})
	assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)
}

func TestRefundReversesCompletedPurchase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()

	res, err := env.purchase.PurchaseCredits(ctx, tenantId, &dto.PurchaseRequest{
		Quantity:      200,
		PaymentMethod: string(entity.PaymentMethodInternal),
	})
	require.NoError(t, err)

	refund, err := env.purchase.RefundPayment(ctx, tenantId, &dto.RefundRequest{
		PaymentId: res.PaymentId,
		Reason:    "duplicate order",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(200), refund.CreditAmount)
	assert.Equal(t, res.TotalAmount, refund.TotalAmount)

	balance, err := env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.CurrentBalance)
	assert.Equal(t, int64(200), balance.TotalPurchased)
	assert.Equal(t, int64(200), balance.TotalRefunded)

	// Refunding again must fail, the payment left the completed state.
	_, err = env.purchase.RefundPayment(ctx, tenantId, &dto.RefundRequest{PaymentId: res.PaymentId})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestRefundPendingPaymentRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()

	res, err := env.purchase.PurchaseCredits(ctx, tenantId, &dto.PurchaseRequest{Quantity: 25})
	require.NoError(t, err)

	_, err = env.purchase.RefundPayment(ctx, tenantId, &dto.RefundRequest{PaymentId: res.PaymentId})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestRefundUnknownPayment(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.purchase.RefundPayment(context.Background(), uuid.New(), &dto.RefundRequest{PaymentId: uuid.New()})
	assert.ErrorIs(t, err, apperrors.ErrPaymentNotFound)
}
