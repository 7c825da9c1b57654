package gateway

import "context"

// ChargeRequest describes one credit pack purchase to be charged externally.
// Amounts are integer minor currency units.
type ChargeRequest struct {
	OrderID       string
	GrossAmount   int64
	ItemID        string
	ItemName      string
	Quantity      int64
	UnitPrice     int64
	CustomerEmail string
}

// ChargeResult carries what the frontend needs to complete the payment.
type ChargeResult struct {
	Token       string
	RedirectURL string
}

// PaymentGateway abstracts the external payment provider so purchase flows
// and tests do not depend on live gateway credentials.
type PaymentGateway interface {
	CreateCharge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)
	VerifySignature(orderId, statusCode, grossAmount, signatureKey string) bool
}
