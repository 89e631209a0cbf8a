package domain

import (
	"github.com/shopspring/decimal"
)

// RateKind selects which of the two configured rates a conversion uses.
type RateKind string

const (
	// LiveRate is the market-tracking rate used to credit incoming deposits.
	LiveRate RateKind = "live"
	// WithdrawalRate is the stricter operator-set rate used to price outgoing payouts.
	WithdrawalRate RateKind = "withdrawal"
)

// ExchangeRate holds the directional conversion rates for one ordered
// currency pair. Unique per (base, target). Updated out-of-band by an
// operator, never by the ledger itself.
type ExchangeRate struct {
	ExchangeRateID      string          `json:"exchangeRateID"` // Primary Key (UUID)
	BaseCurrencyCode    string          `json:"baseCurrencyCode"`
	TargetCurrencyCode  string          `json:"targetCurrencyCode"`
	Rate                decimal.Decimal `json:"rate"`                // live rate
	AdminWithdrawalRate decimal.Decimal `json:"adminWithdrawalRate"` // withdrawal payout rate
	AuditFields
}
