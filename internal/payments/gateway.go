// Package payments adapts external payment providers behind a single
// intent-creation interface. Provider protocol details stay out of the
// booking engine; it only consumes the intent result.
package payments

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// IntentStatus is the provider-reported state of a payment intent.
type IntentStatus string

const (
	IntentCompleted IntentStatus = "COMPLETED"
	IntentPending   IntentStatus = "PENDING"
	IntentFailed    IntentStatus = "FAILED"
)

// Supported payment methods.
const (
	MethodWallet   = "wallet"
	MethodPayPal   = "paypal"
	MethodCoinbase = "coinbase"
	MethodFake     = "fake"
)

// ErrUnsupportedMethod is returned for methods no gateway handles.
var ErrUnsupportedMethod = errors.New("payments: unsupported payment method")

// IntentRequest asks a provider to collect a payment for a booking.
type IntentRequest struct {
	BookingID   uuid.UUID
	CustomerID  uuid.UUID
	AmountCents int64
	Currency    string
	Method      string
}

// IntentResult is what the booking lifecycle consumes. RequiresPayment is
// false when the amount was fully covered without external collection
// (wallet debit), in which case Status is COMPLETED.
type IntentResult struct {
	Status          IntentStatus `json:"status"`
	RequiresPayment bool         `json:"requires_payment"`
	PaymentURL      string       `json:"payment_url,omitempty"`
	ProviderRef     string       `json:"provider_ref,omitempty"`
}

// Gateway creates payment intents. Implementations must not mutate booking
// state; the lifecycle owns the transition that follows.
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error)
}
