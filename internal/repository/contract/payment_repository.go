package contract

import (
	"context"

	"flowcredits-be/internal/entity"
	"flowcredits-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	Update(ctx context.Context, payment *entity.Payment) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Payment, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Payment, error)
	FindCompletedIds(ctx context.Context, tenantId uuid.UUID) (map[uuid.UUID]bool, error)
	SavePayload(ctx context.Context, id uuid.UUID, payload []byte) error
}
