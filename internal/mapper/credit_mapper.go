package mapper

import (
	"flowcredits-be/internal/entity"
	"flowcredits-be/internal/model"
)

type CreditMapper struct{}

func NewCreditMapper() *CreditMapper {
	return &CreditMapper{}
}

func (m *CreditMapper) TransactionToEntity(t *model.CreditTransaction) *entity.CreditTransaction {
	if t == nil {
		return nil
	}
	return &entity.CreditTransaction{
		Id:               t.Id,
		TenantId:         t.TenantId,
		Seq:              t.Seq,
		Type:             entity.TransactionType(t.Type),
		CreditAmount:     t.CreditAmount,
		UnitPrice:        t.UnitPrice,
		TotalAmount:      t.TotalAmount,
		Currency:         t.Currency,
		LinkedPaymentId:  t.LinkedPaymentId,
		LinkedWorkflowId: t.LinkedWorkflowId,
		Description:      t.Description,
		CreatedAt:        t.CreatedAt,
	}
}

func (m *CreditMapper) TransactionToModel(t *entity.CreditTransaction) *model.CreditTransaction {
	if t == nil {
		return nil
	}
	return &model.CreditTransaction{
		Id:               t.Id,
		TenantId:         t.TenantId,
		Seq:              t.Seq,
		Type:             string(t.Type),
		CreditAmount:     t.CreditAmount,
		UnitPrice:        t.UnitPrice,
		TotalAmount:      t.TotalAmount,
		Currency:         t.Currency,
		LinkedPaymentId:  t.LinkedPaymentId,
		LinkedWorkflowId: t.LinkedWorkflowId,
		Description:      t.Description,
		CreatedAt:        t.CreatedAt,
	}
}

func (m *CreditMapper) BalanceToEntity(b *model.ClientBalance) *entity.ClientBalance {
	if b == nil {
		return nil
	}
	return &entity.ClientBalance{
		TenantId:         b.TenantId,
		TotalPurchased:   b.TotalPurchased,
		TotalUsed:        b.TotalUsed,
		TotalRefunded:    b.TotalRefunded,
		TotalAdjustments: b.TotalAdjustments,
		TotalExpired:     b.TotalExpired,
		ReservedCredits:  b.ReservedCredits,
		Version:          b.Version,
		UpdatedAt:        b.UpdatedAt,
	}
}

func (m *CreditMapper) BalanceToModel(b *entity.ClientBalance) *model.ClientBalance {
	if b == nil {
		return nil
	}
	return &model.ClientBalance{
		TenantId:         b.TenantId,
		TotalPurchased:   b.TotalPurchased,
		TotalUsed:        b.TotalUsed,
		TotalRefunded:    b.TotalRefunded,
		TotalAdjustments: b.TotalAdjustments,
		TotalExpired:     b.TotalExpired,
		ReservedCredits:  b.ReservedCredits,
		Version:          b.Version,
		UpdatedAt:        b.UpdatedAt,
	}
}
