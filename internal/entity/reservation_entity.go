package entity

import (
	"time"

	"github.com/google/uuid"
)

type ReservationState string

const (
	ReservationStateReserved ReservationState = "reserved"
	ReservationStateConsumed ReservationState = "consumed"
	ReservationStateReleased ReservationState = "released"
)

// Reservation is a provisional hold on credits taken when a workflow
// activates. It closes exactly once: consumed (usage transaction appended at
// the locked rate) or released (hold returned, compensating adjustment
// appended). UsageTransactionId is set on consumption and makes repeated
// consume calls idempotent.
type Reservation struct {
	Token              uuid.UUID
	TenantId           uuid.UUID
	WorkflowId         uuid.UUID
	CreditsReserved    int64
	RateLocked         int64 // unit price in minor units, fixed at reservation time
	Currency           string
	State              ReservationState
	UsageTransactionId *uuid.UUID
	CreatedAt          time.Time
	ClosedAt           *time.Time
}
