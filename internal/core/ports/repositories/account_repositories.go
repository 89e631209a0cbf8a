package repositories

import (
	"context"

	"github.com/traderiser/wallet-backend/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	// SaveAccountWithWallets inserts an account and its initial wallets in
	// one transaction.
	SaveAccountWithWallets(ctx context.Context, account domain.Account, wallets []domain.Wallet) error
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	FindAccountsByUserID(ctx context.Context, userID string) ([]domain.Account, error)
}
