// Package gateway integrates the external mobile-money push-payment
// provider. The provider's asynchronous result arrives on a separate
// callback endpoint; this package only covers initiation. Idempotency of
// result handling is the movement state machine's responsibility, not the
// adapter's.
package gateway

import (
	"context"

	"github.com/shopspring/decimal"
)

// Initiation is the synchronous outcome of an accepted push-payment request.
type Initiation struct {
	// CheckoutRequestID is the correlation id the provider will echo in its
	// asynchronous result.
	CheckoutRequestID string
	MerchantRequestID string
	CustomerMessage   string
}

// PushPayment initiates a push payment on the customer's phone.
//
// A synchronous provider rejection is reported as apperrors.ErrGatewayRejected
// wrapped with the provider's reason. A transport failure or timeout is
// reported as apperrors.ErrGatewayUnreachable; callers must treat that as a
// failure of initiation only, never of settlement.
type PushPayment interface {
	Initiate(ctx context.Context, phone string, amount decimal.Decimal, reference string) (*Initiation, error)
}
