package implementation

import (
	"context"
	"errors"

	"flowcredits-be/internal/entity"
	"flowcredits-be/internal/mapper"
	"flowcredits-be/internal/model"
	"flowcredits-be/internal/repository/contract"
	"flowcredits-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReservationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReservationMapper
}

func NewReservationRepository(db *gorm.DB) contract.ReservationRepository {
	return &ReservationRepositoryImpl{
		db:     db,
		mapper: mapper.NewReservationMapper(),
	}
}

func (r *ReservationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ReservationRepositoryImpl) Create(ctx context.Context, reservation *entity.Reservation) error {
	m := r.mapper.ToModel(reservation)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*reservation = *r.mapper.ToEntity(m)
	return nil
}

func (r *ReservationRepositoryImpl) Update(ctx context.Context, reservation *entity.Reservation) error {
	m := r.mapper.ToModel(reservation)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*reservation = *r.mapper.ToEntity(m)
	return nil
}

func (r *ReservationRepositoryImpl) FindByToken(ctx context.Context, token uuid.UUID) (*entity.Reservation, error) {
	var m model.Reservation
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ReservationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Reservation, error) {
	var models []*model.Reservation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Reservation, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ReservationRepositoryImpl) SumOpenByTenant(ctx context.Context, tenantId uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("tenant_id = ? AND state = ?", tenantId, string(entity.ReservationStateReserved)).
		Select("COALESCE(SUM(credits_reserved), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
