package mapper

import (
	"flowcredits-be/internal/entity"
	"flowcredits-be/internal/model"
)

type PolicyMapper struct{}

func NewPolicyMapper() *PolicyMapper {
	return &PolicyMapper{}
}

func (m *PolicyMapper) ToEntity(p *model.CreditPolicy) *entity.CreditPolicy {
	if p == nil {
		return nil
	}
	return &entity.CreditPolicy{
		TenantId:               p.TenantId,
		LowThreshold:           p.LowThreshold,
		CriticalThreshold:      p.CriticalThreshold,
		AutoReplenishEnabled:   p.AutoReplenishEnabled,
		AutoReplenishThreshold: p.AutoReplenishThreshold,
		AutoReplenishQuantity:  p.AutoReplenishQuantity,
		PaymentMethod:          entity.PaymentMethod(p.PaymentMethod),
		Currency:               p.Currency,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}
}

func (m *PolicyMapper) ToModel(p *entity.CreditPolicy) *model.CreditPolicy {
	if p == nil {
		return nil
	}
	return &model.CreditPolicy{
		TenantId:               p.TenantId,
		LowThreshold:           p.LowThreshold,
		CriticalThreshold:      p.CriticalThreshold,
		AutoReplenishEnabled:   p.AutoReplenishEnabled,
		AutoReplenishThreshold: p.AutoReplenishThreshold,
		AutoReplenishQuantity:  p.AutoReplenishQuantity,
		PaymentMethod:          string(p.PaymentMethod),
		Currency:               p.Currency,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}
}
