package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/traderiser/wallet-backend/internal/core/domain"
)

// CreateCurrencyRequest defines the data needed to create a new currency.
type CreateCurrencyRequest struct {
	CurrencyCode string `json:"currencyCode" binding:"required,uppercase,len=3"`
	Name         string `json:"name" binding:"required"`
	Symbol       string `json:"symbol" binding:"required"`
	IsFiat       *bool  `json:"isFiat"`
}

// CurrencyResponse defines the data returned for a currency.
type CurrencyResponse struct {
	CurrencyCode string `json:"currencyCode"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	IsFiat       bool   `json:"isFiat"`
	IsActive     bool   `json:"isActive"`
}

// ToCurrencyResponse converts a domain.Currency to CurrencyResponse DTO
func ToCurrencyResponse(curr *domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		CurrencyCode: curr.CurrencyCode,
		Name:         curr.Name,
		Symbol:       curr.Symbol,
		IsFiat:       curr.IsFiat,
		IsActive:     curr.IsActive,
	}
}

// ToListCurrencyResponse converts a slice of domain.Currency to DTOs
func ToListCurrencyResponse(currencies []domain.Currency) []CurrencyResponse {
	res := make([]CurrencyResponse, len(currencies))
	for i := range currencies {
		res[i] = ToCurrencyResponse(&currencies[i])
	}
	return res
}

// UpsertExchangeRateRequest defines the data for creating or replacing the
// rate of one ordered currency pair.
type UpsertExchangeRateRequest struct {
	BaseCurrencyCode    string          `json:"baseCurrencyCode" binding:"required,uppercase,len=3"`
	TargetCurrencyCode  string          `json:"targetCurrencyCode" binding:"required,uppercase,len=3"`
	LiveRate            decimal.Decimal `json:"liveRate" binding:"required"`
	AdminWithdrawalRate decimal.Decimal `json:"adminWithdrawalRate" binding:"required"`
}

// ExchangeRateResponse defines the data returned for an exchange rate.
type ExchangeRateResponse struct {
	BaseCurrencyCode    string          `json:"baseCurrencyCode"`
	TargetCurrencyCode  string          `json:"targetCurrencyCode"`
	LiveRate            decimal.Decimal `json:"liveRate"`
	AdminWithdrawalRate decimal.Decimal `json:"adminWithdrawalRate"`
	LastUpdatedAt       time.Time       `json:"lastUpdatedAt"`
}

// ToExchangeRateResponse converts a domain.ExchangeRate to its DTO
func ToExchangeRateResponse(rate *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		BaseCurrencyCode:    rate.BaseCurrencyCode,
		TargetCurrencyCode:  rate.TargetCurrencyCode,
		LiveRate:            rate.Rate,
		AdminWithdrawalRate: rate.AdminWithdrawalRate,
		LastUpdatedAt:       rate.LastUpdatedAt,
	}
}

// ToListExchangeRateResponse converts a slice of domain.ExchangeRate to DTOs
func ToListExchangeRateResponse(rates []domain.ExchangeRate) []ExchangeRateResponse {
	res := make([]ExchangeRateResponse, len(rates))
	for i := range rates {
		res[i] = ToExchangeRateResponse(&rates[i])
	}
	return res
}
