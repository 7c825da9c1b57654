package contract

import (
	"context"

	"flowcredits-be/internal/entity"

	"github.com/google/uuid"
)

type BalanceRepository interface {
	Upsert(ctx context.Context, balance *entity.ClientBalance) error
	FindByTenant(ctx context.Context, tenantId uuid.UUID) (*entity.ClientBalance, error)
	FindAllTenants(ctx context.Context) ([]uuid.UUID, error)
}
