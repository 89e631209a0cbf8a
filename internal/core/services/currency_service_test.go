package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/traderiser/wallet-backend/internal/apperrors"
	"github.com/traderiser/wallet-backend/internal/core/domain"
	portssvc "github.com/traderiser/wallet-backend/internal/core/ports/services"
	"github.com/traderiser/wallet-backend/internal/core/services"
	"github.com/traderiser/wallet-backend/internal/dto"
)

type CurrencyServiceTestSuite struct {
	suite.Suite
	mockCurrencyRepo *MockCurrencyRepository
	service          portssvc.CurrencySvcFacade
}

func (suite *CurrencyServiceTestSuite) SetupTest() {
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.service = services.NewCurrencyService(suite.mockCurrencyRepo)
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_Success() {
	ctx := context.Background()
	creatorID := uuid.NewString()
	req := dto.CreateCurrencyRequest{
		CurrencyCode: "KSH",
		Name:         "Kenyan Shilling",
		Symbol:       "KSh",
	}

	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "KSH").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockCurrencyRepo.On("SaveCurrency", ctx, mock.MatchedBy(func(c domain.Currency) bool {
		return c.CurrencyCode == "KSH" && c.IsFiat && c.IsActive && c.CreatedBy == creatorID
	})).Return(nil).Once()

	currency, err := suite.service.CreateCurrency(ctx, req, creatorID)

	suite.Require().NoError(err)
	suite.Equal("KSH", currency.CurrencyCode)
	suite.mockCurrencyRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_Duplicate() {
	ctx := context.Background()

	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "USD").
		Return(&domain.Currency{CurrencyCode: "USD"}, nil).Once()

	_, err := suite.service.CreateCurrency(ctx, dto.CreateCurrencyRequest{
		CurrencyCode: "USD",
		Name:         "US Dollar",
		Symbol:       "$",
	}, uuid.NewString())

	suite.Require().ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockCurrencyRepo.AssertNotCalled(suite.T(), "SaveCurrency", mock.Anything, mock.Anything)
}

func (suite *CurrencyServiceTestSuite) TestGetCurrencyByCode_NormalizesCase() {
	ctx := context.Background()

	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "USD").
		Return(&domain.Currency{CurrencyCode: "USD"}, nil).Once()

	currency, err := suite.service.GetCurrencyByCode(ctx, "usd")

	suite.Require().NoError(err)
	suite.Equal("USD", currency.CurrencyCode)
}

func (suite *CurrencyServiceTestSuite) TestGetCurrencyByCode_BadLength() {
	ctx := context.Background()

	_, err := suite.service.GetCurrencyByCode(ctx, "US")

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockCurrencyRepo.AssertNotCalled(suite.T(), "FindCurrencyByCode", mock.Anything, mock.Anything)
}

func TestCurrencyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CurrencyServiceTestSuite))
}
