package mapper

import (
	"flowcredits-be/internal/entity"
	"flowcredits-be/internal/model"
)

type ReservationMapper struct{}

func NewReservationMapper() *ReservationMapper {
	return &ReservationMapper{}
}

func (m *ReservationMapper) ToEntity(r *model.Reservation) *entity.Reservation {
	if r == nil {
		return nil
	}
	return &entity.Reservation{
		Token:              r.Token,
		TenantId:           r.TenantId,
		WorkflowId:         r.WorkflowId,
		CreditsReserved:    r.CreditsReserved,
		RateLocked:         r.RateLocked,
		Currency:           r.Currency,
		State:              entity.ReservationState(r.State),
		UsageTransactionId: r.UsageTransactionId,
		CreatedAt:          r.CreatedAt,
		ClosedAt:           r.ClosedAt,
	}
}

func (m *ReservationMapper) ToModel(r *entity.Reservation) *model.Reservation {
	if r == nil {
		return nil
	}
	return &model.Reservation{
		Token:              r.Token,
		TenantId:           r.TenantId,
		WorkflowId:         r.WorkflowId,
		CreditsReserved:    r.CreditsReserved,
		RateLocked:         r.RateLocked,
		Currency:           r.Currency,
		State:              string(r.State),
		UsageTransactionId: r.UsageTransactionId,
		CreatedAt:          r.CreatedAt,
		ClosedAt:           r.ClosedAt,
	}
}
