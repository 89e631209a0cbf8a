package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/traderiser/wallet-backend/internal/apperrors"
	"github.com/traderiser/wallet-backend/internal/core/domain"
	portssvc "github.com/traderiser/wallet-backend/internal/core/ports/services"
	"github.com/traderiser/wallet-backend/internal/core/services"
	"github.com/traderiser/wallet-backend/internal/dto"
)

type ExchangeRateServiceTestSuite struct {
	suite.Suite
	mockRateRepo     *MockExchangeRateRepository
	mockCurrencyRepo *MockCurrencyRepository
	service          portssvc.ExchangeRateSvcFacade
}

func (suite *ExchangeRateServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockExchangeRateRepository)
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	currencyService := services.NewCurrencyService(suite.mockCurrencyRepo)
	suite.service = services.NewExchangeRateService(suite.mockRateRepo, currencyService)
}

func (suite *ExchangeRateServiceTestSuite) kshToUSD() *domain.ExchangeRate {
	return &domain.ExchangeRate{
		ExchangeRateID:      uuid.NewString(),
		BaseCurrencyCode:    "KSH",
		TargetCurrencyCode:  "USD",
		Rate:                decimal.RequireFromString("0.0078"),
		AdminWithdrawalRate: decimal.RequireFromString("0.0076"),
	}
}

// --- Convert ---

func (suite *ExchangeRateServiceTestSuite) TestConvert_SameCurrency() {
	ctx := context.Background()
	amount := decimal.RequireFromString("42.00")

	converted, rateUsed, err := suite.service.Convert(ctx, amount, "USD", "USD", domain.LiveRate)

	suite.Require().NoError(err)
	suite.True(converted.Equal(amount))
	suite.True(rateUsed.Equal(decimal.NewFromInt(1)))
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindExchangeRate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestConvert_DirectLiveRate() {
	ctx := context.Background()
	amount := decimal.RequireFromString("1000.00")

	suite.mockRateRepo.On("FindExchangeRate", ctx, "KSH", "USD").Return(suite.kshToUSD(), nil).Once()

	converted, rateUsed, err := suite.service.Convert(ctx, amount, "KSH", "USD", domain.LiveRate)

	suite.Require().NoError(err)
	suite.True(converted.Equal(decimal.RequireFromString("7.80")))
	suite.True(rateUsed.Equal(decimal.RequireFromString("0.0078")))
}

func (suite *ExchangeRateServiceTestSuite) TestConvert_DirectWithdrawalRate() {
	ctx := context.Background()
	amount := decimal.RequireFromString("1000.00")

	suite.mockRateRepo.On("FindExchangeRate", ctx, "KSH", "USD").Return(suite.kshToUSD(), nil).Once()

	converted, rateUsed, err := suite.service.Convert(ctx, amount, "KSH", "USD", domain.WithdrawalRate)

	suite.Require().NoError(err)
	suite.True(converted.Equal(decimal.RequireFromString("7.60")))
	suite.True(rateUsed.Equal(decimal.RequireFromString("0.0076")))
}

func (suite *ExchangeRateServiceTestSuite) TestConvert_InverseFallback() {
	ctx := context.Background()
	amount := decimal.RequireFromString("7.80")

	suite.mockRateRepo.On("FindExchangeRate", ctx, "USD", "KSH").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindExchangeRate", ctx, "KSH", "USD").Return(suite.kshToUSD(), nil).Once()

	converted, rateUsed, err := suite.service.Convert(ctx, amount, "USD", "KSH", domain.LiveRate)

	suite.Require().NoError(err)
	expectedRate := decimal.NewFromInt(1).Div(decimal.RequireFromString("0.0078"))
	suite.True(rateUsed.Equal(expectedRate))
	suite.True(converted.Equal(amount.Mul(expectedRate)))
}

func (suite *ExchangeRateServiceTestSuite) TestConvert_NoRateEitherDirection() {
	ctx := context.Background()

	suite.mockRateRepo.On("FindExchangeRate", ctx, "EUR", "JPY").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindExchangeRate", ctx, "JPY", "EUR").Return(nil, apperrors.ErrNotFound).Once()

	_, _, err := suite.service.Convert(ctx, decimal.NewFromInt(10), "EUR", "JPY", domain.LiveRate)

	suite.Require().ErrorIs(err, apperrors.ErrRateNotFound)
}

// --- UpsertExchangeRate ---

func (suite *ExchangeRateServiceTestSuite) TestUpsertExchangeRate_Success() {
	ctx := context.Background()
	updaterID := uuid.NewString()
	req := dto.UpsertExchangeRateRequest{
		BaseCurrencyCode:    "KSH",
		TargetCurrencyCode:  "USD",
		LiveRate:            decimal.RequireFromString("0.0079"),
		AdminWithdrawalRate: decimal.RequireFromString("0.0077"),
	}

	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "KSH").Return(&domain.Currency{CurrencyCode: "KSH"}, nil).Once()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "USD").Return(&domain.Currency{CurrencyCode: "USD"}, nil).Once()
	suite.mockRateRepo.On("UpsertExchangeRate", ctx, mock.MatchedBy(func(r domain.ExchangeRate) bool {
		return r.BaseCurrencyCode == "KSH" && r.TargetCurrencyCode == "USD" &&
			r.Rate.Equal(req.LiveRate) && r.AdminWithdrawalRate.Equal(req.AdminWithdrawalRate)
	})).Return(nil).Once()

	rate, err := suite.service.UpsertExchangeRate(ctx, req, updaterID)

	suite.Require().NoError(err)
	suite.NotEmpty(rate.ExchangeRateID)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestUpsertExchangeRate_NonPositiveRate() {
	ctx := context.Background()
	req := dto.UpsertExchangeRateRequest{
		BaseCurrencyCode:    "KSH",
		TargetCurrencyCode:  "USD",
		LiveRate:            decimal.Zero,
		AdminWithdrawalRate: decimal.RequireFromString("0.0077"),
	}

	_, err := suite.service.UpsertExchangeRate(ctx, req, uuid.NewString())

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "UpsertExchangeRate", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestUpsertExchangeRate_SamePair() {
	ctx := context.Background()
	req := dto.UpsertExchangeRateRequest{
		BaseCurrencyCode:    "USD",
		TargetCurrencyCode:  "USD",
		LiveRate:            decimal.NewFromInt(1),
		AdminWithdrawalRate: decimal.NewFromInt(1),
	}

	_, err := suite.service.UpsertExchangeRate(ctx, req, uuid.NewString())

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExchangeRateServiceTestSuite) TestUpsertExchangeRate_UnknownCurrency() {
	ctx := context.Background()
	req := dto.UpsertExchangeRateRequest{
		BaseCurrencyCode:    "XXX",
		TargetCurrencyCode:  "USD",
		LiveRate:            decimal.RequireFromString("0.5"),
		AdminWithdrawalRate: decimal.RequireFromString("0.5"),
	}

	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "XXX").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.UpsertExchangeRate(ctx, req, uuid.NewString())

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

// --- Snapshot ---

func (suite *ExchangeRateServiceTestSuite) TestSnapshot_BuildsRateTable() {
	ctx := context.Background()

	suite.mockRateRepo.On("ListExchangeRates", ctx).Return([]domain.ExchangeRate{*suite.kshToUSD()}, nil).Once()

	snapshot, err := suite.service.Snapshot(ctx)

	suite.Require().NoError(err)
	rate, err := snapshot.LiveRate("KSH", "USD")
	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.RequireFromString("0.0078")))

	// Inverse pairs are answered by inverting the configured rate.
	inverse, err := snapshot.LiveRate("USD", "KSH")
	suite.Require().NoError(err)
	suite.True(inverse.Equal(decimal.NewFromInt(1).Div(decimal.RequireFromString("0.0078"))))

	_, err = snapshot.LiveRate("EUR", "JPY")
	suite.Require().ErrorIs(err, apperrors.ErrRateNotFound)
}

func TestExchangeRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}
