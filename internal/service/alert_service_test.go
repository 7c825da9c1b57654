package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"flowcredits-be/internal/dto"
	"flowcredits-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceStatusClassification(t *testing.T) {
	policy := &entity.CreditPolicy{LowThreshold: 100, CriticalThreshold: 20}

	tests := []struct {
		name      string
		available int64
		policy    *entity.CreditPolicy
		want      entity.BalanceStatus
	}{
		{"no policy is always healthy", 0, nil, entity.BalanceStatusHealthy},
		{"above low", 101, policy, entity.BalanceStatusHealthy},
		{"exactly low", 100, policy, entity.BalanceStatusLow},
		{"between thresholds", 21, policy, entity.BalanceStatusLow},
		{"exactly critical", 20, policy, entity.BalanceStatusCritical},
		{"below critical", -5, policy, entity.BalanceStatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := balanceStatusFor(tt.available, tt.policy)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateReportsLowBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()
	fundTenant(t, env, tenantId, 50)

	_, err := env.policy.UpsertPolicy(ctx, tenantId, &dto.PolicyRequest{
		LowThreshold:      100,
		CriticalThreshold: 20,
	})
	require.NoError(t, err)

	alert, err := env.alerts.Evaluate(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, entity.BalanceStatusLow, alert.Status)
	assert.Equal(t, int64(50), alert.AvailableCredits)
	assert.Equal(t, int64(100), alert.Threshold)

	// The balance snapshot carries the active alert too.
	balance, err := env.balance.GetBalance(ctx, tenantId)
	require.NoError(t, err)
	assert.Equal(t, string(entity.BalanceStatusLow), balance.Status)
	assert.NotEmpty(t, balance.Alerts)
}

func TestAutoReplenishPublishesOnceWithinWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()
	fundTenant(t, env, tenantId, 30)

	_, err := env.policy.UpsertPolicy(ctx, tenantId, &dto.PolicyRequest{
		LowThreshold:           100,
		CriticalThreshold:      20,
		AutoReplenishEnabled:   true,
		AutoReplenishThreshold: 50,
		AutoReplenishQuantity:  500,
	})
	require.NoError(t, err)

	messages, err := env.pubSub.Subscribe(ctx, "replenish_credits_test")
	require.NoError(t, err)

	env.alerts.EvaluateAndNotify(ctx, tenantId)

	select {
	case msg := <-messages:
		var payload dto.ReplenishCreditsMessage
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, tenantId, payload.TenantId)
		assert.Equal(t, int64(500), payload.Quantity)
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("expected a replenish message")
	}

	// The debounce swallows a second trigger inside the window.
	env.alerts.EvaluateAndNotify(ctx, tenantId)

	select {
	case <-messages:
		t.Fatal("unexpected second replenish message")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestAutoReplenishSkippedAboveThreshold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()
	fundTenant(t, env, tenantId, 80)

	_, err := env.policy.UpsertPolicy(ctx, tenantId, &dto.PolicyRequest{
		LowThreshold:           100,
		CriticalThreshold:      20,
		AutoReplenishEnabled:   true,
		AutoReplenishThreshold: 50,
		AutoReplenishQuantity:  500,
	})
	require.NoError(t, err)

	messages, err := env.pubSub.Subscribe(ctx, "replenish_credits_test")
	require.NoError(t, err)

	// 80 available is low but still above the replenish threshold.
	env.alerts.EvaluateAndNotify(ctx, tenantId)

	select {
	case <-messages:
		t.Fatal("unexpected replenish message")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestReplenishConsumerFundsTenant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantId := uuid.New()
	fundTenant(t, env, tenantId, 30)

	_, err := env.policy.UpsertPolicy(ctx, tenantId, &dto.PolicyRequest{
		LowThreshold:           100,
		CriticalThreshold:      20,
		AutoReplenishEnabled:   true,
		AutoReplenishThreshold: 50,
		AutoReplenishQuantity:  500,
	})
	require.NoError(t, err)

	log := testLogger(t)
	consumer := NewReplenishService(env.pubSub, "replenish_credits_test", env.purchase, log)
	require.NoError(t, consumer.Consume(ctx))

	env.alerts.EvaluateAndNotify(ctx, tenantId)

	require.Eventually(t, func() bool {
		balance, err := env.balance.GetBalance(ctx, tenantId)
		return err == nil && balance.CurrentBalance == 530
	}, 5*time.Second, 50*time.Millisecond)
}
