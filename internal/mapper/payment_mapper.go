package mapper

import (
	"flowcredits-be/internal/entity"
	"flowcredits-be/internal/model"
)

type PaymentMapper struct{}

func NewPaymentMapper() *PaymentMapper {
	return &PaymentMapper{}
}

func (m *PaymentMapper) ToEntity(p *model.Payment) *entity.Payment {
	if p == nil {
		return nil
	}
	return &entity.Payment{
		Id:               p.Id,
		TenantId:         p.TenantId,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Method:           entity.PaymentMethod(p.Method),
		GatewayReference: p.GatewayReference,
		Status:           entity.PaymentGatewayStatus(p.Status),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (m *PaymentMapper) ToModel(p *entity.Payment) *model.Payment {
	if p == nil {
		return nil
	}
	return &model.Payment{
		Id:               p.Id,
		TenantId:         p.TenantId,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Method:           string(p.Method),
		GatewayReference: p.GatewayReference,
		Status:           string(p.Status),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
