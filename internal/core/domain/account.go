package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType tags the product tier of an account.
type AccountType string

const (
	AccountStandard AccountType = "standard"
	AccountPro      AccountType = "pro"
	AccountIslamic  AccountType = "islamic"
	AccountOptions  AccountType = "options"
	AccountCrypto   AccountType = "crypto"
	AccountDemo     AccountType = "demo"
)

// HomeCurrencyCode is the currency of the account-level balance. The main
// wallet in this currency is the canonical mirror of Account.Balance.
const HomeCurrencyCode = "USD"

// DemoOpeningBalance is credited to the main wallet of a freshly created
// demo account, and restored by a demo reset.
var DemoOpeningBalance = decimal.RequireFromString("10000.00")

// Account represents one trading account of a user. Its Balance field is the
// reference value mirrored by the user's wallets: after every balance write
// it equals the balance of the main home-currency wallet.
type Account struct {
	AccountID   string          `json:"accountID"` // Primary Key (UUID)
	UserID      string          `json:"userID"`
	AccountType AccountType     `json:"accountType"`
	Balance     decimal.Decimal `json:"balance"`
	AuditFields
}

// IsDemo reports whether the account is a practice account.
func (a Account) IsDemo() bool {
	return a.AccountType == AccountDemo
}

// KnownAccountType reports whether t is one of the supported account tiers.
func KnownAccountType(t AccountType) bool {
	switch t {
	case AccountStandard, AccountPro, AccountIslamic, AccountOptions, AccountCrypto, AccountDemo:
		return true
	}
	return false
}
