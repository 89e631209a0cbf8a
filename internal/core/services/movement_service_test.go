package services_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/traderiser/wallet-backend/internal/apperrors"
	"github.com/traderiser/wallet-backend/internal/core/domain"
	portssvc "github.com/traderiser/wallet-backend/internal/core/ports/services"
	"github.com/traderiser/wallet-backend/internal/core/services"
	"github.com/traderiser/wallet-backend/internal/dto"
	"github.com/traderiser/wallet-backend/internal/gateway"
	"github.com/traderiser/wallet-backend/internal/notifier"
	"github.com/traderiser/wallet-backend/internal/utils/syncing"
)

// --- Test Suite ---

type MovementServiceTestSuite struct {
	suite.Suite
	mockMovementRepo *MockMovementRepository
	mockWalletRepo   *MockWalletRepository
	mockAccountRepo  *MockAccountRepository
	mockUserRepo     *MockUserRepository
	mockMpesaRepo    *MockMpesaNumberRepository
	mockOTPService   *MockOTPService
	mockRateReader   *MockRateReader
	mockPushPayment  *MockPushPayment
	mockNotifier     *MockNotifier
	service          portssvc.MovementSvcFacade

	userID   string
	account  domain.Account
	wallet   domain.Wallet
	testUser domain.User
}

func (suite *MovementServiceTestSuite) SetupTest() {
	suite.mockMovementRepo = new(MockMovementRepository)
	suite.mockWalletRepo = new(MockWalletRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockMpesaRepo = new(MockMpesaNumberRepository)
	suite.mockOTPService = new(MockOTPService)
	suite.mockRateReader = new(MockRateReader)
	suite.mockPushPayment = new(MockPushPayment)
	suite.mockNotifier = new(MockNotifier)

	suite.service = services.NewMovementService(services.MovementServiceDeps{
		MovementRepo: suite.mockMovementRepo,
		WalletRepo:   suite.mockWalletRepo,
		AccountRepo:  suite.mockAccountRepo,
		UserRepo:     suite.mockUserRepo,
		MpesaRepo:    suite.mockMpesaRepo,
		OTPService:   suite.mockOTPService,
		RateService:  suite.mockRateReader,
		PushPayment:  suite.mockPushPayment,
		Notifier:     suite.mockNotifier,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		InitTimeout:  5 * time.Second,
	})

	suite.userID = uuid.NewString()
	suite.account = domain.Account{
		AccountID:   uuid.NewString(),
		UserID:      suite.userID,
		AccountType: domain.AccountStandard,
		Balance:     decimal.RequireFromString("100.00"),
	}
	suite.wallet = domain.Wallet{
		WalletID:     uuid.NewString(),
		AccountID:    suite.account.AccountID,
		WalletType:   domain.WalletMain,
		CurrencyCode: domain.HomeCurrencyCode,
		Balance:      decimal.RequireFromString("100.00"),
	}
	suite.testUser = domain.User{
		UserID:   suite.userID,
		Username: "testuser",
		Email:    "test@example.com",
	}
}

// expectWalletResolution wires the account and wallet lookups used to pick
// the movement's target wallet.
func (suite *MovementServiceTestSuite) expectWalletResolution() {
	suite.mockAccountRepo.On("FindAccountsByUserID", mock.Anything, suite.userID).
		Return([]domain.Account{suite.account}, nil).Once()
	suite.mockWalletRepo.On("FindWalletsByUserID", mock.Anything, suite.userID).
		Return([]domain.Wallet{suite.wallet}, nil).Once()
}

// expectNotificationLookups wires the wallet-to-user resolution the notifier
// path performs.
func (suite *MovementServiceTestSuite) expectNotificationLookups() {
	suite.mockWalletRepo.On("FindWalletByID", mock.Anything, suite.wallet.WalletID).
		Return(&suite.wallet, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, suite.account.AccountID).
		Return(&suite.account, nil).Once()
	suite.mockUserRepo.On("FindUserByID", mock.Anything, suite.userID).
		Return(&suite.testUser, nil).Once()
}

// --- InitiateDeposit ---

func (suite *MovementServiceTestSuite) TestInitiateDeposit_Success() {
	ctx := context.Background()
	amount := decimal.RequireFromString("1000.00")
	converted := decimal.RequireFromString("7.80")
	rate := decimal.RequireFromString("0.0078")

	suite.expectWalletResolution()
	suite.mockRateReader.On("Convert", mock.Anything, amount, "KSH", domain.HomeCurrencyCode, domain.LiveRate).
		Return(converted, rate, nil).Once()
	suite.mockMovementRepo.On("SaveMovement", mock.Anything, mock.MatchedBy(func(m domain.Movement) bool {
		return m.MovementType == domain.Deposit &&
			m.Status == domain.MovementPending &&
			m.WalletID == suite.wallet.WalletID &&
			m.ConvertedAmount.Equal(converted) &&
			m.ExchangeRateUsed.Equal(rate)
	})).Return(nil).Once()
	suite.mockPushPayment.On("Initiate", mock.Anything, "254700000001", amount, mock.AnythingOfType("string")).
		Return(&gateway.Initiation{CheckoutRequestID: "ws_CO_123"}, nil).Once()
	suite.mockMovementRepo.On("SetCheckoutRequestID", mock.Anything, mock.AnythingOfType("string"), "ws_CO_123").
		Return(nil).Once()

	movement, err := suite.service.InitiateDeposit(ctx, suite.userID, dto.DepositRequest{
		Amount: amount,
		Phone:  "254700000001",
	})

	suite.Require().NoError(err)
	suite.Require().NotNil(movement)
	suite.Equal(domain.MovementPending, movement.Status)
	suite.Equal("ws_CO_123", movement.CheckoutRequestID)
	suite.Contains(movement.ReferenceID, "WT-")
	suite.True(movement.ConvertedAmount.Equal(converted))
	suite.mockMovementRepo.AssertExpectations(suite.T())
	suite.mockPushPayment.AssertExpectations(suite.T())
}

func (suite *MovementServiceTestSuite) TestInitiateDeposit_NonPositiveAmount() {
	ctx := context.Background()

	_, err := suite.service.InitiateDeposit(ctx, suite.userID, dto.DepositRequest{
		Amount: decimal.Zero,
		Phone:  "254700000001",
	})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockMovementRepo.AssertNotCalled(suite.T(), "SaveMovement", mock.Anything, mock.Anything)
}

func (suite *MovementServiceTestSuite) TestInitiateDeposit_NoPhoneAnywhere() {
	ctx := context.Background()

	suite.expectWalletResolution()
	suite.mockMpesaRepo.On("FindMpesaNumberByUserID", mock.Anything, suite.userID).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.InitiateDeposit(ctx, suite.userID, dto.DepositRequest{
		Amount: decimal.RequireFromString("500.00"),
	})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *MovementServiceTestSuite) TestInitiateDeposit_RegisteredNumberFallback() {
	ctx := context.Background()
	amount := decimal.RequireFromString("500.00")

	suite.expectWalletResolution()
	suite.mockMpesaRepo.On("FindMpesaNumberByUserID", mock.Anything, suite.userID).
		Return(&domain.MpesaNumber{UserID: suite.userID, PhoneNumber: "254711111111"}, nil).Once()
	suite.mockRateReader.On("Convert", mock.Anything, amount, "KSH", domain.HomeCurrencyCode, domain.LiveRate).
		Return(decimal.RequireFromString("3.90"), decimal.RequireFromString("0.0078"), nil).Once()
	suite.mockMovementRepo.On("SaveMovement", mock.Anything, mock.AnythingOfType("domain.Movement")).
		Return(nil).Once()
	suite.mockPushPayment.On("Initiate", mock.Anything, "254711111111", amount, mock.AnythingOfType("string")).
		Return(&gateway.Initiation{CheckoutRequestID: "ws_CO_456"}, nil).Once()
	suite.mockMovementRepo.On("SetCheckoutRequestID", mock.Anything, mock.AnythingOfType("string"), "ws_CO_456").
		Return(nil).Once()

	movement, err := suite.service.InitiateDeposit(ctx, suite.userID, dto.DepositRequest{Amount: amount})

	suite.Require().NoError(err)
	suite.Equal("254711111111", movement.Phone)
}

func (suite *MovementServiceTestSuite) TestInitiateDeposit_GatewayRejectionFailsMovement() {
	ctx := context.Background()
	amount := decimal.RequireFromString("1000.00")
	rejection := fmt.Errorf("%w: invalid phone number", apperrors.ErrGatewayRejected)

	suite.expectWalletResolution()
	suite.mockRateReader.On("Convert", mock.Anything, amount, "KSH", domain.HomeCurrencyCode, domain.LiveRate).
		Return(decimal.RequireFromString("7.80"), decimal.RequireFromString("0.0078"), nil).Once()
	suite.mockMovementRepo.On("SaveMovement", mock.Anything, mock.AnythingOfType("domain.Movement")).
		Return(nil).Once()
	suite.mockPushPayment.On("Initiate", mock.Anything, "254700000001", amount, mock.AnythingOfType("string")).
		Return(nil, rejection).Once()
	suite.mockMovementRepo.On("FailDeposit", mock.Anything, mock.AnythingOfType("string"), rejection.Error(), mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	_, err := suite.service.InitiateDeposit(ctx, suite.userID, dto.DepositRequest{
		Amount: amount,
		Phone:  "254700000001",
	})

	suite.Require().ErrorIs(err, apperrors.ErrGatewayRejected)
	suite.mockMovementRepo.AssertExpectations(suite.T())
	suite.mockMovementRepo.AssertNotCalled(suite.T(), "SetCheckoutRequestID", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MovementServiceTestSuite) TestInitiateDeposit_GatewayUnreachableFailsMovement() {
	ctx := context.Background()
	amount := decimal.RequireFromString("1000.00")

	suite.expectWalletResolution()
	suite.mockRateReader.On("Convert", mock.Anything, amount, "KSH", domain.HomeCurrencyCode, domain.LiveRate).
		Return(decimal.RequireFromString("7.80"), decimal.RequireFromString("0.0078"), nil).Once()
	suite.mockMovementRepo.On("SaveMovement", mock.Anything, mock.AnythingOfType("domain.Movement")).
		Return(nil).Once()
	suite.mockPushPayment.On("Initiate", mock.Anything, "254700000001", amount, mock.AnythingOfType("string")).
		Return(nil, apperrors.ErrGatewayUnreachable).Once()
	suite.mockMovementRepo.On("FailDeposit", mock.Anything, mock.AnythingOfType("string"), "gateway unreachable", mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	_, err := suite.service.InitiateDeposit(ctx, suite.userID, dto.DepositRequest{
		Amount: amount,
		Phone:  "254700000001",
	})

	suite.Require().ErrorIs(err, apperrors.ErrGatewayUnreachable)
	suite.mockMovementRepo.AssertExpectations(suite.T())
}

// --- HandleGatewayResult ---

func (suite *MovementServiceTestSuite) TestHandleGatewayResult_SuccessSettles() {
	ctx := context.Background()
	movement := suite.pendingDeposit()
	rates := syncing.StaticRates{}

	suite.mockMovementRepo.On("FindMovementByCheckoutRequestID", mock.Anything, movement.CheckoutRequestID).
		Return(&movement, nil).Once()
	suite.mockRateReader.On("Snapshot", mock.Anything).Return(rates, nil).Once()
	suite.mockMovementRepo.On("SettleDeposit", mock.Anything, movement.MovementID, "QBC12345", mock.AnythingOfType("time.Time"), rates).
		Return(nil).Once()
	suite.expectNotificationLookups()
	suite.mockNotifier.On("Send", mock.Anything, mock.MatchedBy(func(m notifier.Message) bool {
		return m.Kind == notifier.KindMovementCompleted && m.Recipient == suite.testUser.Email
	})).Return(nil).Once()

	err := suite.service.HandleGatewayResult(ctx, dto.GatewayResult{
		CheckoutRequestID: movement.CheckoutRequestID,
		ResultCode:        0,
		Receipt:           "QBC12345",
	})

	suite.Require().NoError(err)
	suite.mockMovementRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *MovementServiceTestSuite) TestHandleGatewayResult_DuplicateIsNoOp() {
	ctx := context.Background()
	movement := suite.pendingDeposit()

	suite.mockMovementRepo.On("FindMovementByCheckoutRequestID", mock.Anything, movement.CheckoutRequestID).
		Return(&movement, nil).Once()
	suite.mockRateReader.On("Snapshot", mock.Anything).Return(syncing.StaticRates{}, nil).Once()
	suite.mockMovementRepo.On("SettleDeposit", mock.Anything, movement.MovementID, "QBC12345", mock.AnythingOfType("time.Time"), mock.Anything).
		Return(apperrors.ErrAlreadySettled).Once()

	err := suite.service.HandleGatewayResult(ctx, dto.GatewayResult{
		CheckoutRequestID: movement.CheckoutRequestID,
		ResultCode:        0,
		Receipt:           "QBC12345",
	})

	suite.Require().NoError(err)
	suite.mockNotifier.AssertNotCalled(suite.T(), "Send", mock.Anything, mock.Anything)
}

func (suite *MovementServiceTestSuite) TestHandleGatewayResult_FailureFailsDeposit() {
	ctx := context.Background()
	movement := suite.pendingDeposit()

	suite.mockMovementRepo.On("FindMovementByCheckoutRequestID", mock.Anything, movement.CheckoutRequestID).
		Return(&movement, nil).Once()
	suite.mockMovementRepo.On("FailDeposit", mock.Anything, movement.MovementID, "Request cancelled by user", mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.expectNotificationLookups()
	suite.mockNotifier.On("Send", mock.Anything, mock.MatchedBy(func(m notifier.Message) bool {
		return m.Kind == notifier.KindMovementFailed
	})).Return(nil).Once()

	err := suite.service.HandleGatewayResult(ctx, dto.GatewayResult{
		CheckoutRequestID: movement.CheckoutRequestID,
		ResultCode:        1032,
		ResultDesc:        "Request cancelled by user",
	})

	suite.Require().NoError(err)
	suite.mockMovementRepo.AssertExpectations(suite.T())
}

func (suite *MovementServiceTestSuite) TestHandleGatewayResult_UnknownCorrelationID() {
	ctx := context.Background()

	suite.mockMovementRepo.On("FindMovementByCheckoutRequestID", mock.Anything, "ws_CO_unknown").
		Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.HandleGatewayResult(ctx, dto.GatewayResult{
		CheckoutRequestID: "ws_CO_unknown",
		ResultCode:        0,
	})

	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
}

// --- RequestWithdrawalOTP ---

func (suite *MovementServiceTestSuite) TestRequestWithdrawalOTP_Success() {
	ctx := context.Background()
	amount := decimal.RequireFromString("10.00")
	payout := decimal.RequireFromString("1315.78")
	rate := decimal.RequireFromString("131.578")

	suite.expectWalletResolution()
	suite.mockRateReader.On("Convert", mock.Anything, amount, domain.HomeCurrencyCode, "KSH", domain.WithdrawalRate).
		Return(payout, rate, nil).Once()
	suite.mockMovementRepo.On("SaveMovement", mock.Anything, mock.MatchedBy(func(m domain.Movement) bool {
		return m.MovementType == domain.Withdrawal &&
			m.Status == domain.MovementPending &&
			m.ConvertedAmount.Equal(payout)
	})).Return(nil).Once()
	suite.mockOTPService.On("Issue", mock.Anything, suite.userID, mock.AnythingOfType("string")).
		Return(&domain.OTPChallenge{OTPID: uuid.NewString()}, nil).Once()

	movement, err := suite.service.RequestWithdrawalOTP(ctx, suite.userID, dto.WithdrawOTPRequest{
		Amount: amount,
		Phone:  "254700000001",
	})

	suite.Require().NoError(err)
	suite.Equal(domain.Withdrawal, movement.MovementType)
	suite.mockOTPService.AssertExpectations(suite.T())
}

func (suite *MovementServiceTestSuite) TestRequestWithdrawalOTP_InsufficientFunds() {
	ctx := context.Background()

	suite.expectWalletResolution()

	_, err := suite.service.RequestWithdrawalOTP(ctx, suite.userID, dto.WithdrawOTPRequest{
		Amount: decimal.RequireFromString("100.01"),
		Phone:  "254700000001",
	})

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.mockMovementRepo.AssertNotCalled(suite.T(), "SaveMovement", mock.Anything, mock.Anything)
}

// --- VerifyWithdrawalOTP ---

func (suite *MovementServiceTestSuite) TestVerifyWithdrawalOTP_ReservesFunds() {
	ctx := context.Background()
	movement := suite.pendingWithdrawal()
	challenge := &domain.OTPChallenge{
		OTPID:      uuid.NewString(),
		UserID:     suite.userID,
		MovementID: movement.MovementID,
	}
	rates := syncing.StaticRates{}
	reserved := movement
	reserved.Description += " | Funds reserved"

	suite.mockMovementRepo.On("FindMovementByID", mock.Anything, movement.MovementID).
		Return(&movement, nil).Once()
	suite.mockWalletRepo.On("FindWalletByID", mock.Anything, suite.wallet.WalletID).
		Return(&suite.wallet, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, suite.account.AccountID).
		Return(&suite.account, nil).Once()
	suite.mockOTPService.On("Validate", mock.Anything, suite.userID, "123456", movement.MovementID).
		Return(challenge, nil).Once()
	suite.mockRateReader.On("Snapshot", mock.Anything).Return(rates, nil).Once()
	suite.mockMovementRepo.On("ReserveWithdrawal", mock.Anything, movement, challenge.OTPID, rates).
		Return(nil).Once()
	suite.mockMovementRepo.On("FindMovementByID", mock.Anything, movement.MovementID).
		Return(&reserved, nil).Once()

	result, err := suite.service.VerifyWithdrawalOTP(ctx, suite.userID, dto.WithdrawVerifyRequest{
		Code:       "123456",
		MovementID: movement.MovementID,
	})

	suite.Require().NoError(err)
	suite.Contains(result.Description, "Funds reserved")
	suite.mockMovementRepo.AssertExpectations(suite.T())
}

func (suite *MovementServiceTestSuite) TestVerifyWithdrawalOTP_OtherUsersMovement() {
	ctx := context.Background()
	movement := suite.pendingWithdrawal()
	otherAccount := suite.account
	otherAccount.UserID = uuid.NewString()

	suite.mockMovementRepo.On("FindMovementByID", mock.Anything, movement.MovementID).
		Return(&movement, nil).Once()
	suite.mockWalletRepo.On("FindWalletByID", mock.Anything, suite.wallet.WalletID).
		Return(&suite.wallet, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, suite.account.AccountID).
		Return(&otherAccount, nil).Once()

	_, err := suite.service.VerifyWithdrawalOTP(ctx, suite.userID, dto.WithdrawVerifyRequest{
		Code:       "123456",
		MovementID: movement.MovementID,
	})

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.mockOTPService.AssertNotCalled(suite.T(), "Validate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MovementServiceTestSuite) TestVerifyWithdrawalOTP_TerminalMovement() {
	ctx := context.Background()
	movement := suite.pendingWithdrawal()
	movement.Status = domain.MovementFailed

	suite.mockMovementRepo.On("FindMovementByID", mock.Anything, movement.MovementID).
		Return(&movement, nil).Once()

	_, err := suite.service.VerifyWithdrawalOTP(ctx, suite.userID, dto.WithdrawVerifyRequest{
		Code:       "123456",
		MovementID: movement.MovementID,
	})

	suite.Require().ErrorIs(err, apperrors.ErrInvalidTransition)
}

// --- Operator transitions ---

func (suite *MovementServiceTestSuite) TestCompleteWithdrawal_Success() {
	ctx := context.Background()
	actorID := uuid.NewString()
	movement := suite.pendingWithdrawal()
	completed := movement
	completed.Status = domain.MovementCompleted

	suite.mockMovementRepo.On("FindMovementByID", mock.Anything, movement.MovementID).
		Return(&movement, nil).Once()
	suite.mockMovementRepo.On("CompleteWithdrawal", mock.Anything, movement.MovementID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.expectNotificationLookups()
	suite.mockNotifier.On("Send", mock.Anything, mock.AnythingOfType("notifier.Message")).Return(nil).Once()
	suite.mockMovementRepo.On("FindMovementByID", mock.Anything, movement.MovementID).
		Return(&completed, nil).Once()

	result, err := suite.service.CompleteWithdrawal(ctx, actorID, movement.MovementID)

	suite.Require().NoError(err)
	suite.Equal(domain.MovementCompleted, result.Status)
}

func (suite *MovementServiceTestSuite) TestCompleteWithdrawal_RejectsDeposit() {
	ctx := context.Background()
	movement := suite.pendingDeposit()

	suite.mockMovementRepo.On("FindMovementByID", mock.Anything, movement.MovementID).
		Return(&movement, nil).Once()

	_, err := suite.service.CompleteWithdrawal(ctx, uuid.NewString(), movement.MovementID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockMovementRepo.AssertNotCalled(suite.T(), "CompleteWithdrawal", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MovementServiceTestSuite) TestFailMovement_Success() {
	ctx := context.Background()
	movement := suite.pendingWithdrawal()
	failed := movement
	failed.Status = domain.MovementFailed

	suite.mockMovementRepo.On("FindMovementByID", mock.Anything, movement.MovementID).
		Return(&movement, nil).Once()
	suite.mockMovementRepo.On("FailMovement", mock.Anything, movement.MovementID, "payout rejected by operator").
		Return(nil).Once()
	suite.expectNotificationLookups()
	suite.mockNotifier.On("Send", mock.Anything, mock.AnythingOfType("notifier.Message")).Return(nil).Once()
	suite.mockMovementRepo.On("FindMovementByID", mock.Anything, movement.MovementID).
		Return(&failed, nil).Once()

	result, err := suite.service.FailMovement(ctx, uuid.NewString(), movement.MovementID, "payout rejected by operator")

	suite.Require().NoError(err)
	suite.Equal(domain.MovementFailed, result.Status)
}

// --- Reads ---

func (suite *MovementServiceTestSuite) TestGetMovement_OwnershipEnforced() {
	ctx := context.Background()
	movement := suite.pendingDeposit()
	otherAccount := suite.account
	otherAccount.UserID = uuid.NewString()

	suite.mockMovementRepo.On("FindMovementByID", mock.Anything, movement.MovementID).
		Return(&movement, nil).Once()
	suite.mockWalletRepo.On("FindWalletByID", mock.Anything, suite.wallet.WalletID).
		Return(&suite.wallet, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, suite.account.AccountID).
		Return(&otherAccount, nil).Once()

	_, err := suite.service.GetMovement(ctx, suite.userID, movement.MovementID)

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *MovementServiceTestSuite) TestListMovements_ClampsLimit() {
	ctx := context.Background()

	// Oversized page sizes clamp to the maximum, absent ones default to 50.
	suite.mockMovementRepo.On("ListMovementsByUserID", mock.Anything, suite.userID, 100, 0).
		Return([]domain.Movement{}, nil).Once()
	suite.mockMovementRepo.On("ListMovementsByUserID", mock.Anything, suite.userID, 50, 0).
		Return([]domain.Movement{}, nil).Once()

	_, err := suite.service.ListMovements(ctx, suite.userID, 1000, -5)
	suite.Require().NoError(err)

	_, err = suite.service.ListMovements(ctx, suite.userID, 0, 0)
	suite.Require().NoError(err)

	suite.mockMovementRepo.AssertExpectations(suite.T())
}

// --- Fixtures ---

func (suite *MovementServiceTestSuite) pendingDeposit() domain.Movement {
	return domain.Movement{
		MovementID:         uuid.NewString(),
		WalletID:           suite.wallet.WalletID,
		MovementType:       domain.Deposit,
		Amount:             decimal.RequireFromString("1000.00"),
		CurrencyCode:       "KSH",
		TargetCurrencyCode: domain.HomeCurrencyCode,
		ConvertedAmount:    decimal.RequireFromString("7.80"),
		ExchangeRateUsed:   decimal.RequireFromString("0.0078"),
		Status:             domain.MovementPending,
		ReferenceID:        "WT-0123456789ab",
		Phone:              "254700000001",
		CheckoutRequestID:  "ws_CO_789",
		CreatedAt:          time.Now(),
	}
}

func (suite *MovementServiceTestSuite) pendingWithdrawal() domain.Movement {
	return domain.Movement{
		MovementID:         uuid.NewString(),
		WalletID:           suite.wallet.WalletID,
		MovementType:       domain.Withdrawal,
		Amount:             decimal.RequireFromString("10.00"),
		CurrencyCode:       domain.HomeCurrencyCode,
		TargetCurrencyCode: "KSH",
		ConvertedAmount:    decimal.RequireFromString("1315.78"),
		ExchangeRateUsed:   decimal.RequireFromString("131.578"),
		Status:             domain.MovementPending,
		ReferenceID:        "WT-ba9876543210",
		Phone:              "254700000001",
		CreatedAt:          time.Now(),
	}
}

func TestMovementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MovementServiceTestSuite))
}
