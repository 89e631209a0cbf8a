package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/traderiser/wallet-backend/internal/apperrors"
	"github.com/traderiser/wallet-backend/internal/core/domain"
	portsrepo "github.com/traderiser/wallet-backend/internal/core/ports/repositories"
	portssvc "github.com/traderiser/wallet-backend/internal/core/ports/services"
	"github.com/traderiser/wallet-backend/internal/dto"
)

// Default trading wallet currency created alongside every account.
const tradingCurrencyCode = "KSH"

// A user holds at most this many accounts: one demo and one real.
const maxAccountsPerUser = 2

// accountService provides account lifecycle logic.
type accountService struct {
	accountRepo   portsrepo.AccountRepository
	walletService portssvc.WalletSvcFacade
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepository, walletService portssvc.WalletSvcFacade) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo:   accountRepo,
		walletService: walletService,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount opens an account of the requested type together with its
// default wallets: the main home-currency wallet and the trading wallet.
// Demo accounts open with the demo seed balance mirrored into both.
func (s *accountService) CreateAccount(ctx context.Context, userID string, req dto.CreateAccountRequest) (*domain.Account, error) {
	accountType := domain.AccountType(req.AccountType)
	if !domain.KnownAccountType(accountType) {
		return nil, fmt.Errorf("%w: unknown account type '%s'", apperrors.ErrValidation, req.AccountType)
	}

	existing, err := s.accountRepo.FindAccountsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list existing accounts: %w", err)
	}
	if len(existing) >= maxAccountsPerUser {
		return nil, fmt.Errorf("%w: at most %d accounts per user", apperrors.ErrValidation, maxAccountsPerUser)
	}
	for _, acc := range existing {
		if acc.IsDemo() == (accountType == domain.AccountDemo) {
			return nil, fmt.Errorf("%w: user already holds a %s account", apperrors.ErrValidation, describeTier(acc.AccountType))
		}
	}

	opening := decimal.Zero
	if accountType == domain.AccountDemo {
		opening = domain.DemoOpeningBalance
	}

	now := time.Now()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	account := domain.Account{
		AccountID:   uuid.NewString(),
		UserID:      userID,
		AccountType: accountType,
		Balance:     opening,
		AuditFields: audit,
	}

	wallets := []domain.Wallet{
		{
			WalletID:     uuid.NewString(),
			AccountID:    account.AccountID,
			WalletType:   domain.WalletMain,
			CurrencyCode: domain.HomeCurrencyCode,
			Balance:      opening,
			AuditFields:  audit,
		},
		{
			WalletID:     uuid.NewString(),
			AccountID:    account.AccountID,
			WalletType:   domain.WalletTrading,
			CurrencyCode: tradingCurrencyCode,
			Balance:      decimal.Zero,
			AuditFields:  audit,
		},
	}

	if err := s.accountRepo.SaveAccountWithWallets(ctx, account, wallets); err != nil {
		return nil, fmt.Errorf("failed to create account in service: %w", err)
	}

	// Mirror the opening balance into the trading wallet. Zero-balance real
	// accounts have nothing to propagate.
	if opening.IsPositive() {
		if err := s.walletService.SetBalance(ctx, wallets[0].WalletID, opening, "demo_seed", account.AccountID); err != nil {
			return nil, fmt.Errorf("failed to seed demo balance: %w", err)
		}
	}

	return &account, nil
}

func describeTier(t domain.AccountType) string {
	if t == domain.AccountDemo {
		return "demo"
	}
	return "real"
}

// GetAccountByID retrieves one account owned by the user.
func (s *accountService) GetAccountByID(ctx context.Context, userID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account in service: %w", err)
	}
	if account.UserID != userID {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrForbidden, accountID)
	}
	return account, nil
}

// ListAccounts retrieves the user's accounts.
func (s *accountService) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts in service: %w", err)
	}
	return accounts, nil
}

// ResetDemoBalance restores a demo account to its opening balance through
// the ledger, so the reset is recorded and mirrored like any other write.
func (s *accountService) ResetDemoBalance(ctx context.Context, userID, accountID string) error {
	account, err := s.GetAccountByID(ctx, userID, accountID)
	if err != nil {
		return err
	}
	if !account.IsDemo() {
		return fmt.Errorf("%w: only demo accounts can be reset", apperrors.ErrValidation)
	}

	wallets, err := s.walletService.ListUserWallets(ctx, userID)
	if err != nil {
		return err
	}
	for _, w := range wallets {
		if w.AccountID == accountID && w.IsAccountMirror() {
			return s.walletService.SetBalance(ctx, w.WalletID, domain.DemoOpeningBalance, "demo_reset", accountID)
		}
	}
	return fmt.Errorf("%w: main %s wallet for account %s", apperrors.ErrNotFound, domain.HomeCurrencyCode, accountID)
}
