package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Pricing DTOs ---

type QuoteResponse struct {
	Quantity    int64  `json:"quantity"`
	Tier        string `json:"tier"`
	DiscountPct int64  `json:"discount_pct"`
	UnitPrice   int64  `json:"unit_price"`
	TotalAmount int64  `json:"total_amount"`
	Currency    string `json:"currency"`
}

// --- Purchase DTOs ---

type PurchaseRequest struct {
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
	// Currency is optional; when set it must match the ledger currency.
	Currency      string `json:"currency" validate:"omitempty,len=3"`
	PaymentMethod string `json:"payment_method" validate:"omitempty,oneof=gateway invoice internal"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email"`
}

type PurchaseResponse struct {
	PaymentId       uuid.UUID `json:"payment_id"`
	TransactionId   uuid.UUID `json:"transaction_id"`
	Quantity        int64     `json:"quantity"`
	UnitPrice       int64     `json:"unit_price"`
	TotalAmount     int64     `json:"total_amount"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	SnapToken       string    `json:"snap_token,omitempty"`
	SnapRedirectUrl string    `json:"snap_redirect_url,omitempty"`
}

type MidtransWebhookRequest struct {
	TransactionStatus string `json:"transaction_status"`
	OrderId           string `json:"order_id"`
	FraudStatus       string `json:"fraud_status"`
	// Signature validation fields
	SignatureKey string `json:"signature_key"`
	StatusCode   string `json:"status_code"`
	GrossAmount  string `json:"gross_amount"`
}

type RefundRequest struct {
	PaymentId uuid.UUID `json:"payment_id" validate:"required"`
	Reason    string    `json:"reason" validate:"omitempty,max=500"`
}

type RefundResponse struct {
	TransactionId uuid.UUID `json:"transaction_id"`
	CreditAmount  int64     `json:"credit_amount"`
	TotalAmount   int64     `json:"total_amount"`
}

// --- Reservation DTOs ---

type ReserveRequest struct {
	WorkflowId uuid.UUID `json:"workflow_id" validate:"required"`
	Credits    int64     `json:"credits" validate:"required,gt=0"`
}

type ReserveResponse struct {
	Token           uuid.UUID `json:"token"`
	CreditsReserved int64     `json:"credits_reserved"`
	RateLocked      int64     `json:"rate_locked"`
	Currency        string    `json:"currency"`
}

type ConsumeRequest struct {
	Token uuid.UUID `json:"token" validate:"required"`
}

type ConsumeResponse struct {
	Token              uuid.UUID `json:"token"`
	State              string    `json:"state"`
	UsageTransactionId uuid.UUID `json:"usage_transaction_id"`
	CreditsCharged     int64     `json:"credits_charged"`
	TotalAmount        int64     `json:"total_amount"`
}

type ReleaseRequest struct {
	Token uuid.UUID `json:"token" validate:"required"`
}

type ReleaseResponse struct {
	Token           uuid.UUID `json:"token"`
	State           string    `json:"state"`
	CreditsReturned int64     `json:"credits_returned"`
}

// --- Balance DTOs ---

type BalanceResponse struct {
	TenantId         uuid.UUID `json:"tenant_id"`
	CurrentBalance   int64     `json:"current_balance"`
	ReservedCredits  int64     `json:"reserved_credits"`
	AvailableCredits int64     `json:"available_credits"`
	TotalPurchased   int64     `json:"total_purchased"`
	TotalUsed        int64     `json:"total_used"`
	TotalRefunded    int64     `json:"total_refunded"`
	TotalAdjustments int64     `json:"total_adjustments"`
	TotalExpired     int64     `json:"total_expired"`
	Status           string    `json:"status"`
	Alerts           []string  `json:"alerts"`
	Version          int64     `json:"version"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type TransactionResponse struct {
	Id           uuid.UUID `json:"id"`
	Seq          int64     `json:"seq"`
	Type         string    `json:"type"`
	CreditAmount int64     `json:"credit_amount"`
	UnitPrice    int64     `json:"unit_price"`
	TotalAmount  int64     `json:"total_amount"`
	Currency     string    `json:"currency"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type RebuildResponse struct {
	TenantId uuid.UUID `json:"tenant_id"`
	Drift    []string  `json:"drift"`
	Rebuilt  bool      `json:"rebuilt"`
}

// ReplenishCreditsMessage is the internal queue payload for auto-replenish.
type ReplenishCreditsMessage struct {
	TenantId uuid.UUID `json:"tenant_id"`
	Quantity int64     `json:"quantity"`
}

// --- Policy DTOs ---

type PolicyRequest struct {
	LowThreshold           int64  `json:"low_threshold" validate:"gte=0"`
	CriticalThreshold      int64  `json:"critical_threshold" validate:"gte=0,ltefield=LowThreshold"`
	AutoReplenishEnabled   bool   `json:"auto_replenish_enabled"`
	AutoReplenishThreshold int64  `json:"auto_replenish_threshold" validate:"gte=0"`
	AutoReplenishQuantity  int64  `json:"auto_replenish_quantity" validate:"gte=0"`
	PaymentMethod          string `json:"payment_method" validate:"omitempty,oneof=gateway invoice internal"`
}

type PolicyResponse struct {
	TenantId               uuid.UUID `json:"tenant_id"`
	LowThreshold           int64     `json:"low_threshold"`
	CriticalThreshold      int64     `json:"critical_threshold"`
	AutoReplenishEnabled   bool      `json:"auto_replenish_enabled"`
	AutoReplenishThreshold int64     `json:"auto_replenish_threshold"`
	AutoReplenishQuantity  int64     `json:"auto_replenish_quantity"`
	PaymentMethod          string    `json:"payment_method"`
	Currency               string    `json:"currency"`
	UpdatedAt              time.Time `json:"updated_at"`
}
