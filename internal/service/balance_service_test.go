package service

import (
	"context"
	"testing"

	"flowcredits-be/internal/dto"
	"flowcredits-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBalanceUnknownTenantIsZero(t *testing.T) {
	env := newTestEnv(t)

	balance, err := env.balance.GetBalance(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.CurrentBalance)
	assert.Equal(t, int64(0), balance.AvailableCredits)
	assert.Equal(t, string(entity.BalanceStatusHealthy), balance.Status)
}

func TestGetTransactionsOrderedNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()
	fundTenant(t, env, tenantId, 100)
	fundTenant(t, env, tenantId, 50)

	reserved, err := env.reservation.Reserve(ctx, tenantId, &dto.ReserveRequest{
		WorkflowId: uuid.New(),
		Credits:    20,
	})
	require.NoError(t, err)
	_, err = env.reservation.Consume(ctx, tenantId, &dto.ConsumeRequest{Token: reserved.Token})
	require.NoError(t, err)

	txs, err := env.balance.GetTransactions(ctx, tenantId, 50, 0)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, string(entity.TransactionTypeUsage), txs[0].Type)
	for i := 1; i < len(txs); i++ {
		assert.Greater(t, txs[i-1].Seq, txs[i].Seq)
	}

	// Out-of-range limits fall back to the default page size.
	txs, err = env.balance.GetTransactions(ctx, tenantId, -1, 0)
	require.NoError(t, err)
	assert.Len(t, txs, 3)
}

func TestRebuildCleanSnapshotReportsNoDrift(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()
	fundTenant(t, env, tenantId, 300)

	res, err := env.balance.Rebuild(ctx, tenantId)
	require.NoError(t, err)
	assert.True(t, res.Rebuilt)
	assert.Empty(t, res.Drift)

	balance, err := env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, int64(300), balance.CurrentBalance)
}

func TestRebuildCorrectsCorruptedSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()
	fundTenant(t, env, tenantId, 300)

	before, err := env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)

	// Corrupt the cached snapshot behind the service's back.
	err = env.db.Exec("UPDATE client_balances SET total_used = total_used + 50 WHERE tenant_id = ?", tenantId).Error
	require.NoError(t, err)

	corrupted, err := env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, int64(250), corrupted.CurrentBalance)

	res, err := env.balance.Rebuild(ctx, tenantId)
	require.NoError(t, err)
	assert.True(t, res.Rebuilt)
	assert.NotEmpty(t, res.Drift)

	after, err := env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, int64(300), after.CurrentBalance)
	assert.Equal(t, int64(0), after.TotalUsed)
	assert.Greater(t, after.Version, before.Version)
}

func TestRebuildIgnoresPendingPurchases(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()
	fundTenant(t, env, tenantId, 200)

	// Open a purchase whose payment never completes.
	_, err := env.purchase.PurchaseCredits(ctx, tenantId, &dto.PurchaseRequest{Quantity: 999})
	require.NoError(t, err)

	res, err := env.balance.Rebuild(ctx, tenantId)
	require.NoError(t, err)
	assert.Empty(t, res.Drift)

	balance, err := env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, int64(200), balance.CurrentBalance)
}

func TestRebuildAfterRefundStaysClean(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()

	res, err := env.purchase.PurchaseCredits(ctx, tenantId, &dto.PurchaseRequest{
		Quantity:      150,
		PaymentMethod: string(entity.PaymentMethodInternal),
	})
	require.NoError(t, err)
	_, err = env.purchase.RefundPayment(ctx, tenantId, &dto.RefundRequest{PaymentId: res.PaymentId})
	require.NoError(t, err)

	rebuild, err := env.balance.Rebuild(ctx, tenantId)
	require.NoError(t, err)
	assert.Empty(t, rebuild.Drift)

	balance, err := env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.CurrentBalance)
	assert.Equal(t, int64(150), balance.TotalPurchased)
	assert.Equal(t, int64(150), balance.TotalRefunded)
}

func TestRebuildCountsOpenReservations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()
	fundTenant(t, env, tenantId, 100)

	_, err := env.reservation.Reserve(ctx, tenantId, &dto.ReserveRequest{
		WorkflowId: uuid.New(),
		Credits:    25,
	})
	require.NoError(t, err)

	res, err := env.balance.Rebuild(ctx, tenantId)
	require.NoError(t, err)
	assert.Empty(t, res.Drift)

	balance, err := env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, int64(25), balance.ReservedCredits)
	assert.Equal(t, int64(75), balance.AvailableCredits)
}
