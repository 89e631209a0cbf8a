package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/traderiser/wallet-backend/internal/core/domain"
	"github.com/traderiser/wallet-backend/internal/dto"
	"github.com/traderiser/wallet-backend/internal/utils/syncing"
)

// CurrencyReaderSvc defines read operations for currency data
type CurrencyReaderSvc interface {
	// GetCurrencyByCode retrieves a specific currency by its code.
	GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves all available currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// CurrencyWriterSvc defines write operations for currency data
type CurrencyWriterSvc interface {
	// CreateCurrency persists a new currency.
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error)
}

// CurrencySvcFacade combines all currency-related service interfaces
type CurrencySvcFacade interface {
	CurrencyReaderSvc
	CurrencyWriterSvc
}

// ExchangeRateReaderSvc defines read operations against the rate table.
type ExchangeRateReaderSvc interface {
	// GetExchangeRate retrieves the configured rate for an ordered pair.
	GetExchangeRate(ctx context.Context, baseCode, targetCode string) (*domain.ExchangeRate, error)

	// ListExchangeRates retrieves all configured rates.
	ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error)

	// Convert converts an amount between currencies using the selected rate
	// kind, falling back to the inverse pair when only the opposite
	// direction is configured.
	Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string, kind domain.RateKind) (converted decimal.Decimal, rateUsed decimal.Decimal, err error)

	// Snapshot captures the live-rate table for use inside a database
	// transaction without further queries.
	Snapshot(ctx context.Context) (syncing.StaticRates, error)
}

// ExchangeRateWriterSvc defines write operations for the rate table.
type ExchangeRateWriterSvc interface {
	// UpsertExchangeRate creates or replaces the rate for an ordered pair.
	UpsertExchangeRate(ctx context.Context, req dto.UpsertExchangeRateRequest, updaterUserID string) (*domain.ExchangeRate, error)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
}
