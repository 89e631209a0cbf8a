package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/traderiser/wallet-backend/internal/core/domain"
	"github.com/traderiser/wallet-backend/internal/utils/syncing"
)

// WalletRepository is the wallet ledger boundary. Every balance write runs in
// one database transaction that also records an immutable ledger entry and
// propagates the value to the user's sibling wallets; direct balance writes
// bypassing this interface are disallowed by design.
type WalletRepository interface {
	FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error)
	FindWalletsByUserID(ctx context.Context, userID string) ([]domain.Wallet, error)
	// FindWalletForAccount locates the wallet of one account by type and currency.
	FindWalletForAccount(ctx context.Context, accountID string, walletType domain.WalletType, currencyCode string) (*domain.Wallet, error)

	// SetWalletBalance writes an absolute balance, records the ledger entry
	// and synchronizes all sibling mirrors atomically.
	SetWalletBalance(ctx context.Context, walletID string, newBalance decimal.Decimal, reason, reference string, rates syncing.RateSource) error

	ListLedgerEntries(ctx context.Context, walletID string, limit int) ([]domain.LedgerEntry, error)
}

// WalletLedgerTx exposes the ledger write primitives for use inside a caller
// owned transaction, so movement settlement can share one transaction with
// the status flip that claims the movement.
type WalletLedgerTx interface {
	// LockUserWallets loads and row-locks every wallet of the user together
	// with the owning accounts, in deterministic order.
	LockUserWallets(ctx context.Context, tx pgx.Tx, userID string) ([]domain.Wallet, error)

	// WriteBalanceInTx writes an absolute balance to one of the locked
	// wallets, records its ledger entry and applies the mirror propagation
	// to the sibling wallets and account balances. wallets must be the set
	// returned by LockUserWallets in the same transaction.
	WriteBalanceInTx(ctx context.Context, tx pgx.Tx, walletID string, newBalance decimal.Decimal, reason, reference string, wallets []domain.Wallet, rates syncing.RateSource) error
}

// WalletRepositoryWithTx combines the service-facing wallet interface with
// the in-transaction primitives.
type WalletRepositoryWithTx interface {
	WalletRepository
	WalletLedgerTx
}
