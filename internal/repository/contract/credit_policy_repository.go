package contract

import (
	"context"

	"flowcredits-be/internal/entity"

	"github.com/google/uuid"
)

type CreditPolicyRepository interface {
	Upsert(ctx context.Context, policy *entity.CreditPolicy) error
	FindByTenant(ctx context.Context, tenantId uuid.UUID) (*entity.CreditPolicy, error)
}
