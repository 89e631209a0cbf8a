package domain

// Currency represents a supported currency in the domain.
// Currencies are reference data: created by an operator, read-only to the
// ledger, and immutable once wallets reference them.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary Key (e.g., "USD")
	Name         string `json:"name"`         // e.g., "US Dollar"
	Symbol       string `json:"symbol"`       // e.g., "$"
	IsFiat       bool   `json:"isFiat"`
	IsActive     bool   `json:"isActive"`
	AuditFields
}
