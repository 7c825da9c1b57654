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

type BalanceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CreditMapper
}

func NewBalanceRepository(db *gorm.DB) contract.BalanceRepository {
	return &BalanceRepositoryImpl{
		db:     db,
		mapper: mapper.NewCreditMapper(),
	}
}

func (r *BalanceRepositoryImpl) Upsert(ctx context.Context, balance *entity.ClientBalance) error {
	m := r.mapper.BalanceToModel(balance)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		UpdateAll: true,
	}).Create(m).Error
	if err != nil {
		return err
	}
	*balance = *r.mapper.BalanceToEntity(m)
	return nil
}

func (r *BalanceRepositoryImpl) FindByTenant(ctx context.Context, tenantId uuid.UUID) (*entity.ClientBalance, error) {
	var m model.ClientBalance
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.BalanceToEntity(&m), nil
}

func (r *BalanceRepositoryImpl) FindAllTenants(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.ClientBalance{}).Pluck("tenant_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
