package contract

import (
	"context"

	"flowcredits-be/internal/entity"
	"flowcredits-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ReservationRepository interface {
	Create(ctx context.Context, reservation *entity.Reservation) error
	Update(ctx context.Context, reservation *entity.Reservation) error
	FindByToken(ctx context.Context, token uuid.UUID) (*entity.Reservation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Reservation, error)
	SumOpenByTenant(ctx context.Context, tenantId uuid.UUID) (int64, error)
}
