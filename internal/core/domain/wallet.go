package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletType tags the purpose of a wallet within an account.
type WalletType string

const (
	WalletMain    WalletType = "main"
	WalletTrading WalletType = "trading"
)

// Wallet is a balance record scoped to one account, one currency and one
// wallet type; unique per (account, type, currency). All of a user's wallets
// mirror a single reference value expressed in their respective currencies.
type Wallet struct {
	WalletID     string          `json:"walletID"` // Primary Key (UUID)
	AccountID    string          `json:"accountID"`
	WalletType   WalletType      `json:"walletType"`
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"`
	AuditFields
}

// IsAccountMirror reports whether this wallet is the canonical mirror of its
// account's balance field.
func (w Wallet) IsAccountMirror() bool {
	return w.WalletType == WalletMain && w.CurrencyCode == HomeCurrencyCode
}

// LedgerEntry is the immutable record of one balance write: the delta
// applied, the resulting balance, and why. Entries are append-only; a wallet
// balance never changes without one.
type LedgerEntry struct {
	EntryID      string          `json:"entryID"` // Primary Key (UUID)
	WalletID     string          `json:"walletID"`
	Amount       decimal.Decimal `json:"amount"` // signed delta
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	Reason       string          `json:"reason"`    // e.g. "deposit_settled", "withdrawal_reserved", "balance_sync"
	Reference    string          `json:"reference"` // movement reference or operator note
	CreatedAt    time.Time       `json:"createdAt"`
}
