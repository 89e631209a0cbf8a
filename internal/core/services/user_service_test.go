package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/traderiser/wallet-backend/internal/apperrors"
	"github.com/traderiser/wallet-backend/internal/core/domain"
	portssvc "github.com/traderiser/wallet-backend/internal/core/ports/services"
	"github.com/traderiser/wallet-backend/internal/core/services"
	"github.com/traderiser/wallet-backend/internal/dto"
	"github.com/traderiser/wallet-backend/internal/utils"
)

type UserServiceTestSuite struct {
	suite.Suite
	mockUserRepo  *MockUserRepository
	mockMpesaRepo *MockMpesaNumberRepository
	service       portssvc.UserSvcFacade
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockMpesaRepo = new(MockMpesaNumberRepository)
	suite.service = services.NewUserService(suite.mockUserRepo, suite.mockMpesaRepo, services.TokenConfig{
		Secret: "test-secret",
		Expiry: time.Hour,
		Issuer: "wallet-test",
	})
}

func (suite *UserServiceTestSuite) TestRegister_Success() {
	ctx := context.Background()
	req := dto.RegisterRequest{
		Username: "newuser",
		Email:    "new@example.com",
		Password: "s3cretpass",
	}

	suite.mockUserRepo.On("FindUserByUsername", ctx, "newuser").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Username == "newuser" &&
			u.PasswordHash != "" &&
			u.PasswordHash != req.Password
	})).Return(nil).Once()

	user, err := suite.service.Register(ctx, req)

	suite.Require().NoError(err)
	suite.NotEmpty(user.UserID)
	suite.True(utils.CheckPasswordHash("s3cretpass", user.PasswordHash))
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestRegister_DuplicateUsername() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByUsername", ctx, "taken").
		Return(&domain.User{UserID: uuid.NewString(), Username: "taken"}, nil).Once()

	_, err := suite.service.Register(ctx, dto.RegisterRequest{
		Username: "taken",
		Email:    "taken@example.com",
		Password: "s3cretpass",
	})

	suite.Require().ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestAuthenticate_Success() {
	ctx := context.Background()
	hash, err := utils.HashPassword("s3cretpass")
	suite.Require().NoError(err)
	user := &domain.User{
		UserID:       uuid.NewString(),
		Username:     "testuser",
		PasswordHash: hash,
	}

	suite.mockUserRepo.On("FindUserByUsername", ctx, "testuser").Return(user, nil).Once()

	resp, err := suite.service.Authenticate(ctx, dto.LoginRequest{
		Username: "testuser",
		Password: "s3cretpass",
	})

	suite.Require().NoError(err)
	suite.NotEmpty(resp.Token)

	// The token subject must be the authenticated user.
	parsed, err := jwt.ParseWithClaims(resp.Token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	suite.Require().NoError(err)
	claims := parsed.Claims.(*jwt.RegisteredClaims)
	suite.Equal(user.UserID, claims.Subject)
	suite.Equal("wallet-test", claims.Issuer)
}

func (suite *UserServiceTestSuite) TestAuthenticate_WrongPassword() {
	ctx := context.Background()
	hash, err := utils.HashPassword("s3cretpass")
	suite.Require().NoError(err)

	suite.mockUserRepo.On("FindUserByUsername", ctx, "testuser").
		Return(&domain.User{UserID: uuid.NewString(), PasswordHash: hash}, nil).Once()

	_, err = suite.service.Authenticate(ctx, dto.LoginRequest{
		Username: "testuser",
		Password: "wrongpass",
	})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *UserServiceTestSuite) TestAuthenticate_UnknownUser() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByUsername", ctx, "ghost").
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.Authenticate(ctx, dto.LoginRequest{
		Username: "ghost",
		Password: "whatever",
	})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *UserServiceTestSuite) TestPutMpesaNumber_ResetsVerification() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockMpesaRepo.On("UpsertMpesaNumber", ctx, mock.MatchedBy(func(n domain.MpesaNumber) bool {
		return n.UserID == userID && n.PhoneNumber == "254711111111" && !n.IsVerified
	})).Return(nil).Once()

	number, err := suite.service.PutMpesaNumber(ctx, userID, dto.PutMpesaNumberRequest{PhoneNumber: "254711111111"})

	suite.Require().NoError(err)
	suite.False(number.IsVerified)
	suite.mockMpesaRepo.AssertExpectations(suite.T())
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
