package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/traderiser/wallet-backend/internal/core/domain"
	portsrepo "github.com/traderiser/wallet-backend/internal/core/ports/repositories"
	portssvc "github.com/traderiser/wallet-backend/internal/core/ports/services"
)

// walletService is the wallet ledger facade. Reads are plain queries; the
// single write path records a ledger entry and mirrors the user's sibling
// wallets inside one repository transaction.
type walletService struct {
	walletRepo  portsrepo.WalletRepository
	rateService portssvc.ExchangeRateReaderSvc
}

// NewWalletService creates a new wallet service.
func NewWalletService(walletRepo portsrepo.WalletRepository, rateService portssvc.ExchangeRateReaderSvc) portssvc.WalletSvcFacade {
	return &walletService{
		walletRepo:  walletRepo,
		rateService: rateService,
	}
}

var _ portssvc.WalletSvcFacade = (*walletService)(nil)

// ListUserWallets retrieves every wallet of the user across all accounts.
func (s *walletService) ListUserWallets(ctx context.Context, userID string) ([]domain.Wallet, error) {
	wallets, err := s.walletRepo.FindWalletsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets in service: %w", err)
	}
	return wallets, nil
}

// GetBalance retrieves the current balance of one wallet.
func (s *walletService) GetBalance(ctx context.Context, walletID string) (decimal.Decimal, error) {
	wallet, err := s.walletRepo.FindWalletByID(ctx, walletID)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to get wallet in service: %w", err)
	}
	return wallet.Balance, nil
}

// SetBalance writes an absolute balance through the ledger, propagating the
// value to every sibling mirror atomically. A missing conversion rate aborts
// the whole write.
func (s *walletService) SetBalance(ctx context.Context, walletID string, newBalance decimal.Decimal, reason, reference string) error {
	rates, err := s.rateService.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := s.walletRepo.SetWalletBalance(ctx, walletID, newBalance, reason, reference, rates); err != nil {
		return fmt.Errorf("failed to set wallet balance in service: %w", err)
	}
	return nil
}

// ListLedgerEntries retrieves the wallet's write history, newest first.
func (s *walletService) ListLedgerEntries(ctx context.Context, walletID string, limit int) ([]domain.LedgerEntry, error) {
	entries, err := s.walletRepo.ListLedgerEntries(ctx, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries in service: %w", err)
	}
	return entries, nil
}
