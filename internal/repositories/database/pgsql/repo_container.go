package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/traderiser/wallet-backend/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the concrete pgsql repositories. The movement
// repository receives the wallet repository's in-transaction primitives so
// settlement and balance writes share one transaction.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)
	mpesaRepo := newPgxMpesaNumberRepository(dbPool)
	currencyRepo := newPgxCurrencyRepository(dbPool)
	rateRepo := newPgxExchangeRateRepository(dbPool)
	accountRepo := newPgxAccountRepository(dbPool)
	walletRepo := newPgxWalletRepository(dbPool)
	movementRepo := newPgxMovementRepository(dbPool, walletRepo)
	otpRepo := newPgxOTPRepository(dbPool)

	return portsrepo.RepositoryProvider{
		UserRepo:     userRepo,
		MpesaRepo:    mpesaRepo,
		CurrencyRepo: currencyRepo,
		RateRepo:     rateRepo,
		AccountRepo:  accountRepo,
		WalletRepo:   walletRepo,
		MovementRepo: movementRepo,
		OTPRepo:      otpRepo,
	}
}
