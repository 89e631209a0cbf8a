package repositories

import (
	"context"

	"github.com/traderiser/wallet-backend/internal/core/domain"
)

// CurrencyRepository defines persistence operations for currencies.
type CurrencyRepository interface {
	SaveCurrency(ctx context.Context, currency domain.Currency) error
	FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// ExchangeRateRepository defines persistence operations for the rate table.
type ExchangeRateRepository interface {
	// UpsertExchangeRate creates or replaces the rate for an ordered pair.
	UpsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) error
	// FindExchangeRate returns the rate configured for the exact ordered pair.
	FindExchangeRate(ctx context.Context, baseCode, targetCode string) (*domain.ExchangeRate, error)
	ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error)
}
