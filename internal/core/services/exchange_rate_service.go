package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/traderiser/wallet-backend/internal/apperrors"
	"github.com/traderiser/wallet-backend/internal/core/domain"
	portsrepo "github.com/traderiser/wallet-backend/internal/core/ports/repositories"
	portssvc "github.com/traderiser/wallet-backend/internal/core/ports/services"
	"github.com/traderiser/wallet-backend/internal/dto"
	"github.com/traderiser/wallet-backend/internal/utils/syncing"
)

// exchangeRateService provides business logic for the rate table.
type exchangeRateService struct {
	rateRepo        portsrepo.ExchangeRateRepository
	currencyService portssvc.CurrencyReaderSvc
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepository, currencyService portssvc.CurrencyReaderSvc) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{
		rateRepo:        rateRepo,
		currencyService: currencyService,
	}
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// UpsertExchangeRate creates or replaces the rate of an ordered currency pair.
func (s *exchangeRateService) UpsertExchangeRate(ctx context.Context, req dto.UpsertExchangeRateRequest, updaterUserID string) (*domain.ExchangeRate, error) {
	if req.LiveRate.LessThanOrEqual(decimal.Zero) || req.AdminWithdrawalRate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rates must be positive", apperrors.ErrValidation)
	}
	if req.BaseCurrencyCode == req.TargetCurrencyCode {
		return nil, fmt.Errorf("%w: base and target currency codes cannot be the same", apperrors.ErrValidation)
	}

	for _, code := range []string{req.BaseCurrencyCode, req.TargetCurrencyCode} {
		if _, err := s.currencyService.GetCurrencyByCode(ctx, code); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: currency code '%s' not found", apperrors.ErrValidation, code)
			}
			return nil, fmt.Errorf("failed to validate currency '%s': %w", code, err)
		}
	}

	now := time.Now()
	rate := domain.ExchangeRate{
		ExchangeRateID:      uuid.NewString(),
		BaseCurrencyCode:    req.BaseCurrencyCode,
		TargetCurrencyCode:  req.TargetCurrencyCode,
		Rate:                req.LiveRate,
		AdminWithdrawalRate: req.AdminWithdrawalRate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     updaterUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: updaterUserID,
		},
	}

	if err := s.rateRepo.UpsertExchangeRate(ctx, rate); err != nil {
		return nil, fmt.Errorf("failed to upsert exchange rate in service: %w", err)
	}
	return &rate, nil
}

// GetExchangeRate retrieves the configured rate for one ordered pair.
func (s *exchangeRateService) GetExchangeRate(ctx context.Context, baseCode, targetCode string) (*domain.ExchangeRate, error) {
	baseCode = strings.ToUpper(baseCode)
	targetCode = strings.ToUpper(targetCode)
	if len(baseCode) != 3 || len(targetCode) != 3 {
		return nil, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}

	rate, err := s.rateRepo.FindExchangeRate(ctx, baseCode, targetCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rate in service: %w", err)
	}
	return rate, nil
}

// ListExchangeRates retrieves all configured rates.
func (s *exchangeRateService) ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	rates, err := s.rateRepo.ListExchangeRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates in service: %w", err)
	}
	return rates, nil
}

// Convert converts an amount between currencies using the selected rate kind.
// When only the opposite direction is configured, the inverse of that rate is
// used, matching how the original rate table was seeded one-way.
func (s *exchangeRateService) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string, kind domain.RateKind) (decimal.Decimal, decimal.Decimal, error) {
	one := decimal.NewFromInt(1)
	if fromCode == toCode {
		return amount, one, nil
	}

	pick := func(r *domain.ExchangeRate) decimal.Decimal {
		if kind == domain.WithdrawalRate {
			return r.AdminWithdrawalRate
		}
		return r.Rate
	}

	direct, err := s.rateRepo.FindExchangeRate(ctx, fromCode, toCode)
	if err == nil && direct != nil {
		rate := pick(direct)
		return amount.Mul(rate), rate, nil
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("failed to look up exchange rate: %w", err)
	}

	inverse, err := s.rateRepo.FindExchangeRate(ctx, toCode, fromCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("%w: %s to %s", apperrors.ErrRateNotFound, fromCode, toCode)
		}
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("failed to look up exchange rate: %w", err)
	}
	configured := pick(inverse)
	if configured.IsZero() {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("%w: zero rate configured for %s to %s", apperrors.ErrRateNotFound, toCode, fromCode)
	}
	rate := one.Div(configured)
	return amount.Mul(rate), rate, nil
}

// Snapshot captures the live-rate table for use inside a database transaction.
func (s *exchangeRateService) Snapshot(ctx context.Context) (syncing.StaticRates, error) {
	rates, err := s.rateRepo.ListExchangeRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot exchange rates: %w", err)
	}
	snapshot := make(syncing.StaticRates, len(rates))
	for _, r := range rates {
		snapshot[syncing.Pair{Base: r.BaseCurrencyCode, Target: r.TargetCurrencyCode}] = r.Rate
	}
	return snapshot, nil
}
