package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"flowcredits-be/internal/apperrors"
	"flowcredits-be/internal/dto"
	"flowcredits-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fundTenant(t *testing.T, env *testEnv, tenantId uuid.UUID, credits int64) {
	t.Helper()
	_, err := env.purchase.PurchaseCredits(context.Background(), tenantId, &dto.PurchaseRequest{
		Quantity:      credits,
		PaymentMethod: string(entity.PaymentMethodInternal),
	})
	require.NoError(t, err)
}

func TestReserveHoldsAvailableCredits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()
	fundTenant(t, env, tenantId, 100)

	res, err := env.reservation.Reserve(ctx, tenantId, &dto.ReserveRequest{
		WorkflowId: uuid.New(),
		Credits:    40,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(40), res.CreditsReserved)
	assert.Equal(t, int64(15000), res.RateLocked)

	balance, err := env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance.CurrentBalance)
	assert.Equal(t, int64(40), balance.ReservedCredits)
	assert.Equal(t, int64(60), balance.AvailableCredits)

	// The hold shrinks what the next reservation can take.
	_, err = env.reservation.Reserve(ctx, tenantId, &dto.ReserveRequest{
		WorkflowId: uuid.New(),
		Credits:    61,
	})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientCredits)
}

func TestReserveInsufficientCredits(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.reservation.Reserve(context.Background(), uuid.New(), &dto.ReserveRequest{
		WorkflowId: uuid.New(),
		Credits:    1,
	})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientCredits)
}

func TestConsumeChargesAtLockedRate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()
	fundTenant(t, env, tenantId, 1000)

	reserved, err := env.reservation.Reserve(ctx, tenantId, &dto.ReserveRequest{
		WorkflowId: uuid.New(),
		Credits:    600,
	})
	require.NoError(t, err)
	// 600 credits cross the bulk threshold, the locked rate carries the discount.
	assert.Equal(t, int64(11250), reserved.RateLocked)

	consumed, err := env.reservation.Consume(ctx, tenantId, &dto.ConsumeRequest{Token: reserved.Token})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReservationStateConsumed), consumed.State)
	assert.Equal(t, int64(600), consumed.CreditsCharged)
	assert.Equal(t, int64(600*11250), consumed.TotalAmount)

	balance, err := env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, int64(400), balance.CurrentBalance)
	assert.Equal(t, int64(0), balance.ReservedCredits)
	assert.Equal(t, int64(600), balance.TotalUsed)
}

func TestConsumeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()
	fundTenant(t, env, tenantId, 100)

	reserved, err := env.reservation.Reserve(ctx, tenantId, &dto.ReserveRequest{
		WorkflowId: uuid.New(),
		Credits:    30,
	})
	require.NoError(t, err)

	first, err := env.reservation.Consume(ctx, tenantId, &dto.ConsumeRequest{Token: reserved.Token})
	require.NoError(t, err)

	second, err := env.reservation.Consume(ctx, tenantId, &dto.ConsumeRequest{Token: reserved.Token})
	require.NoError(t, err)
	assert.Equal(t, first.UsageTransactionId, second.UsageTransactionId)
	assert.Equal(t, first.TotalAmount, second.TotalAmount)

	balance, err := env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, int64(30), balance.TotalUsed)
}

func TestConsumeUnknownOrForeignToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()
	fundTenant(t, env, tenantId, 100)

	_, err := env.reservation.Consume(ctx, tenantId, &dto.ConsumeRequest{Token: uuid.New()})
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)

	reserved, err := env.reservation.Reserve(ctx, tenantId, &dto.ReserveRequest{
		WorkflowId: uuid.New(),
		Credits:    10,
	})
	require.NoError(t, err)

	// Another tenant cannot consume this hold.
	_, err = env.reservation.Consume(ctx, uuid.New(), &dto.ConsumeRequest{Token: reserved.Token})
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
}

func TestReleaseReturnsHold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()
	fundTenant(t, env, tenantId, 100)

	reserved, err := env.reservation.Reserve(ctx, tenantId, &dto.ReserveRequest{
		WorkflowId: uuid.New(),
		Credits:    70,
	})
	require.NoError(t, err)

	released, err := env.reservation.Release(ctx, tenantId, &dto.ReleaseRequest{Token: reserved.Token})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReservationStateReleased), released.State)
	assert.Equal(t, int64(70), released.CreditsReturned)

	balance, err := env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance.CurrentBalance)
	assert.Equal(t, int64(0), balance.ReservedCredits)
	assert.Equal(t, int64(100), balance.AvailableCredits)

	// Releasing again is a no-op, consuming afterwards is an error.
	again, err := env.reservation.Release(ctx, tenantId, &dto.ReleaseRequest{Token: reserved.Token})
	require.NoError(t, err)
	assert.Equal(t, int64(70), again.CreditsReturned)

	_, err = env.reservation.Consume(ctx, tenantId, &dto.ConsumeRequest{Token: reserved.Token})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestConcurrentReservationsNeverOversell(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()
	fundTenant(t, env, tenantId, 100)

	const workers = 10
	var succeeded atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.reservation.Reserve(ctx, tenantId, &dto.ReserveRequest{
				WorkflowId: uuid.New(),
				Credits:    30,
			})
			if err == nil {
				succeeded.Add(1)
			} else {
				assert.ErrorIs(t, err, apperrors.ErrInsufficientCredits)
			}
		}()
	}
	wg.Wait()

	// 100 credits fit exactly three 30-credit holds.
	assert.Equal(t, int64(3), succeeded.Load())

	balance, err := env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, int64(90), balance.ReservedCredits)
	assert.Equal(t, int64(10), balance.AvailableCredits)
}
