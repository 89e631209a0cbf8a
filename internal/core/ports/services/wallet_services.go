package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/traderiser/wallet-backend/internal/core/domain"
)

// WalletReaderSvc defines read operations for wallets.
type WalletReaderSvc interface {
	// ListUserWallets retrieves every wallet of the user across all accounts.
	ListUserWallets(ctx context.Context, userID string) ([]domain.Wallet, error)

	// GetBalance retrieves the current balance of one wallet.
	GetBalance(ctx context.Context, walletID string) (decimal.Decimal, error)

	// ListLedgerEntries retrieves the immutable write history of one wallet,
	// newest first.
	ListLedgerEntries(ctx context.Context, walletID string, limit int) ([]domain.LedgerEntry, error)
}

// WalletWriterSvc defines the single balance-write entry point. All money
// movement flows through it; it records a ledger entry and synchronizes the
// user's sibling wallets in the same transaction.
type WalletWriterSvc interface {
	SetBalance(ctx context.Context, walletID string, newBalance decimal.Decimal, reason, reference string) error
}

// WalletSvcFacade combines all wallet-related service interfaces
type WalletSvcFacade interface {
	WalletReaderSvc
	WalletWriterSvc
}
