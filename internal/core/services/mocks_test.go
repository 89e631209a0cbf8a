package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/traderiser/wallet-backend/internal/core/domain"
	"github.com/traderiser/wallet-backend/internal/gateway"
	"github.com/traderiser/wallet-backend/internal/notifier"
	"github.com/traderiser/wallet-backend/internal/utils/syncing"
)

// --- Mock MovementRepository ---

type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) SaveMovement(ctx context.Context, movement domain.Movement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) FindMovementByID(ctx context.Context, movementID string) (*domain.Movement, error) {
	args := m.Called(ctx, movementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movement), args.Error(1)
}

func (m *MockMovementRepository) FindMovementByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.Movement, error) {
	args := m.Called(ctx, checkoutRequestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movement), args.Error(1)
}

func (m *MockMovementRepository) SetCheckoutRequestID(ctx context.Context, movementID, checkoutRequestID string) error {
	args := m.Called(ctx, movementID, checkoutRequestID)
	return args.Error(0)
}

func (m *MockMovementRepository) ListMovementsByUserID(ctx context.Context, userID string, limit, offset int) ([]domain.Movement, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Movement), args.Error(1)
}

func (m *MockMovementRepository) SettleDeposit(ctx context.Context, movementID, receipt string, settledAt time.Time, rates syncing.RateSource) error {
	args := m.Called(ctx, movementID, receipt, settledAt, rates)
	return args.Error(0)
}

func (m *MockMovementRepository) FailDeposit(ctx context.Context, movementID, reason string, failedAt time.Time) error {
	args := m.Called(ctx, movementID, reason, failedAt)
	return args.Error(0)
}

func (m *MockMovementRepository) ReserveWithdrawal(ctx context.Context, movement domain.Movement, otpID string, rates syncing.RateSource) error {
	args := m.Called(ctx, movement, otpID, rates)
	return args.Error(0)
}

func (m *MockMovementRepository) CompleteWithdrawal(ctx context.Context, movementID string, settledAt time.Time) error {
	args := m.Called(ctx, movementID, settledAt)
	return args.Error(0)
}

func (m *MockMovementRepository) FailMovement(ctx context.Context, movementID, reason string) error {
	args := m.Called(ctx, movementID, reason)
	return args.Error(0)
}

// --- Mock WalletRepository ---

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) FindWalletsByUserID(ctx context.Context, userID string) ([]domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) FindWalletForAccount(ctx context.Context, accountID string, walletType domain.WalletType, currencyCode string) (*domain.Wallet, error) {
	args := m.Called(ctx, accountID, walletType, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) SetWalletBalance(ctx context.Context, walletID string, newBalance decimal.Decimal, reason, reference string, rates syncing.RateSource) error {
	args := m.Called(ctx, walletID, newBalance, reason, reference, rates)
	return args.Error(0)
}

func (m *MockWalletRepository) ListLedgerEntries(ctx context.Context, walletID string, limit int) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, walletID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) SaveAccountWithWallets(ctx context.Context, account domain.Account, wallets []domain.Wallet) error {
	args := m.Called(ctx, account, wallets)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByUserID(ctx context.Context, userID string) ([]domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- Mock MpesaNumberRepository ---

type MockMpesaNumberRepository struct {
	mock.Mock
}

func (m *MockMpesaNumberRepository) UpsertMpesaNumber(ctx context.Context, number domain.MpesaNumber) error {
	args := m.Called(ctx, number)
	return args.Error(0)
}

func (m *MockMpesaNumberRepository) FindMpesaNumberByUserID(ctx context.Context, userID string) (*domain.MpesaNumber, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MpesaNumber), args.Error(1)
}

// --- Mock OTPRepository ---

type MockOTPRepository struct {
	mock.Mock
}

func (m *MockOTPRepository) SaveOTP(ctx context.Context, challenge domain.OTPChallenge) error {
	args := m.Called(ctx, challenge)
	return args.Error(0)
}

func (m *MockOTPRepository) FindLatestByCode(ctx context.Context, userID, code, purpose string) (*domain.OTPChallenge, error) {
	args := m.Called(ctx, userID, code, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OTPChallenge), args.Error(1)
}

// --- Mock OTPService ---

type MockOTPService struct {
	mock.Mock
}

func (m *MockOTPService) Issue(ctx context.Context, userID, movementID string) (*domain.OTPChallenge, error) {
	args := m.Called(ctx, userID, movementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OTPChallenge), args.Error(1)
}

func (m *MockOTPService) Validate(ctx context.Context, userID, code, movementID string) (*domain.OTPChallenge, error) {
	args := m.Called(ctx, userID, code, movementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OTPChallenge), args.Error(1)
}

// --- Mock ExchangeRateReaderSvc ---

type MockRateReader struct {
	mock.Mock
}

func (m *MockRateReader) GetExchangeRate(ctx context.Context, baseCode, targetCode string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, baseCode, targetCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockRateReader) ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockRateReader) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string, kind domain.RateKind) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, amount, fromCode, toCode, kind)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockRateReader) Snapshot(ctx context.Context) (syncing.StaticRates, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(syncing.StaticRates), args.Error(1)
}

// --- Mock PushPayment ---

type MockPushPayment struct {
	mock.Mock
}

func (m *MockPushPayment) Initiate(ctx context.Context, phone string, amount decimal.Decimal, reference string) (*gateway.Initiation, error) {
	args := m.Called(ctx, phone, amount, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Initiation), args.Error(1)
}

// --- Mock Notifier ---

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, message notifier.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

// --- Mock CurrencyRepository ---

type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

// --- Mock ExchangeRateRepository ---

type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) UpsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) FindExchangeRate(ctx context.Context, baseCode, targetCode string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, baseCode, targetCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}
