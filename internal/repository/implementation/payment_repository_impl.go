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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaymentMapper
}

func NewPaymentRepository(db *gorm.DB) contract.PaymentRepository {
	return &PaymentRepositoryImpl{
		db:     db,
		mapper: mapper.NewPaymentMapper(),
	}
}

func (r *PaymentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, payment *entity.Payment) error {
	m := r.mapper.ToModel(payment)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*payment = *r.mapper.ToEntity(m)
	return nil
}

func (r *PaymentRepositoryImpl) Update(ctx context.Context, payment *entity.Payment) error {
	m := r.mapper.ToModel(payment)
	if err := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ?", m.Id).
		Updates(map[string]interface{}{
			"status":            m.Status,
			"gateway_reference": m.GatewayReference,
		}).Error; err != nil {
		return err
	}
	return nil
}

func (r *PaymentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Payment, error) {
	var m model.Payment
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PaymentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Payment, error) {
	var models []*model.Payment
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Payment, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *PaymentRepositoryImpl) FindCompletedIds(ctx context.Context, tenantId uuid.UUID) (map[uuid.UUID]bool, error) {
	// Refunded payments did complete once; their purchase entries stay
	// effective and the refund entry reverses them on replay.
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("tenant_id = ? AND status IN ?", tenantId, []string{
			string(entity.PaymentGatewayStatusCompleted),
			string(entity.PaymentGatewayStatusRefunded),
		}).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	completed := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		completed[id] = true
	}
	return completed, nil
}

func (r *PaymentRepositoryImpl) SavePayload(ctx context.Context, id uuid.UUID, payload []byte) error {
	return r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ?", id).
		Update("gateway_payload", datatypes.JSON(payload)).Error
}
