package apperrors

import "errors"

// Ledger error taxonomy. Services return these (possibly wrapped with %w);
// the HTTP layer maps them to status codes in one place.
var (
	// ErrInsufficientCredits means a reservation was denied because the tenant's
	// available balance is below the requested quantity. Expected, not retryable.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrPaymentFailed means the gateway reported a failed charge. The purchase
	// transaction stays non-effective and the balance is untouched.
	ErrPaymentFailed = errors.New("payment failed")

	// ErrInvalidQuantity / ErrInvalidCurrency are caller errors rejected at the boundary.
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidCurrency = errors.New("invalid currency")

	// ErrBusy means the tenant's critical section could not be acquired within
	// the configured timeout. Transient; callers should retry with backoff.
	ErrBusy = errors.New("tenant ledger busy")

	// ErrDataIntegrity means a ledger invariant was violated. Fatal for the
	// operation: nothing is written and nothing is auto-corrected.
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrTokenNotFound means the reservation token is unknown.
	ErrTokenNotFound = errors.New("reservation token not found")

	// ErrInvalidState means the reservation is not in a state that permits the
	// requested transition (e.g. consuming a released reservation).
	ErrInvalidState = errors.New("invalid reservation state")

	// ErrPolicyNotFound means the tenant has no credit policy configured.
	ErrPolicyNotFound = errors.New("credit policy not found")

	// ErrPaymentNotFound means the gateway callback referenced an unknown payment.
	ErrPaymentNotFound = errors.New("payment not found")
)
