package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType distinguishes money coming into a wallet from money leaving it.
type MovementType string

const (
	Deposit    MovementType = "deposit"
	Withdrawal MovementType = "withdrawal"
)

// MovementStatus is the lifecycle state of a money movement. Transitions are
// monotone: pending may move to completed or failed; both are terminal.
type MovementStatus string

const (
	MovementPending   MovementStatus = "pending"
	MovementCompleted MovementStatus = "completed"
	MovementFailed    MovementStatus = "failed"
)

// Terminal reports whether no further lifecycle transition is legal.
func (s MovementStatus) Terminal() bool {
	return s == MovementCompleted || s == MovementFailed
}

// Movement is one deposit or withdrawal request and its lifecycle record.
// Movements are append-only audit data: once created they mutate only their
// status, completion timestamp and description. The conversion applied to a
// deposit is frozen at creation time in ConvertedAmount/ExchangeRateUsed and
// never recomputed.
type Movement struct {
	MovementID         string          `json:"movementID"`  // Primary Key (UUID)
	WalletID           string          `json:"walletID"`    // wallet the movement targets
	MovementType       MovementType    `json:"movementType"`
	Amount             decimal.Decimal `json:"amount"`       // source amount
	CurrencyCode       string          `json:"currencyCode"` // source currency
	TargetCurrencyCode string          `json:"targetCurrencyCode,omitempty"`
	ConvertedAmount    decimal.Decimal `json:"convertedAmount,omitempty"`
	ExchangeRateUsed   decimal.Decimal `json:"exchangeRateUsed,omitempty"`
	Status             MovementStatus  `json:"status"`
	ReferenceID        string          `json:"referenceID"` // globally unique, "WT-" + 12 hex
	Description        string          `json:"description"` // free-text audit trail
	Phone              string          `json:"phone,omitempty"`
	CheckoutRequestID  string          `json:"checkoutRequestID,omitempty"` // gateway correlation id
	CreatedAt          time.Time       `json:"createdAt"`
	CompletedAt        *time.Time      `json:"completedAt,omitempty"`
}
