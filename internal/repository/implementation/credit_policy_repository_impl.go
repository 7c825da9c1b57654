package implementation

import (
	"context"
	"errors"

	"flowcredits-be/internal/entity"
	"flowcredits-be/internal/mapper"
	"flowcredits-be/internal/model"
	"flowcredits-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreditPolicyRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PolicyMapper
}

func NewCreditPolicyRepository(db *gorm.DB) contract.CreditPolicyRepository {
	return &CreditPolicyRepositoryImpl{
		db:     db,
		mapper: mapper.NewPolicyMapper(),
	}
}

func (r *CreditPolicyRepositoryImpl) Upsert(ctx context.Context, policy *entity.CreditPolicy) error {
	m := r.mapper.ToModel(policy)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		UpdateAll: true,
	}).Create(m).Error
	if err != nil {
		return err
	}
	*policy = *r.mapper.ToEntity(m)
	return nil
}

func (r *CreditPolicyRepositoryImpl) FindByTenant(ctx context.Context, tenantId uuid.UUID) (*entity.CreditPolicy, error) {
	var m model.CreditPolicy
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
