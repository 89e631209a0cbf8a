package services

import (
	"log/slog"
	"time"

	portsrepo "github.com/traderiser/wallet-backend/internal/core/ports/repositories"
	portssvc "github.com/traderiser/wallet-backend/internal/core/ports/services"
	"github.com/traderiser/wallet-backend/internal/gateway"
	"github.com/traderiser/wallet-backend/internal/notifier"
)

// ContainerDeps holds everything the service layer is built from.
type ContainerDeps struct {
	Currency portsrepo.CurrencyRepository
	Rate     portsrepo.ExchangeRateRepository
	User     portsrepo.UserRepository
	Mpesa    portsrepo.MpesaNumberRepository
	Account  portsrepo.AccountRepository
	Wallet   portsrepo.WalletRepository
	Movement portsrepo.MovementRepository
	OTP      portsrepo.OTPRepository

	PushPayment gateway.PushPayment
	Notifier    notifier.Notifier
	Logger      *slog.Logger

	Tokens         TokenConfig
	OTPTTL         time.Duration
	GatewayTimeout time.Duration
}

// NewServiceContainer wires the application services in dependency order.
func NewServiceContainer(deps ContainerDeps) *portssvc.ServiceContainer {
	currencyService := NewCurrencyService(deps.Currency)
	rateService := NewExchangeRateService(deps.Rate, currencyService)
	walletService := NewWalletService(deps.Wallet, rateService)
	accountService := NewAccountService(deps.Account, walletService)
	userService := NewUserService(deps.User, deps.Mpesa, deps.Tokens)
	otpService := NewOTPService(deps.OTP, deps.User, deps.Notifier, deps.Logger, deps.OTPTTL)
	movementService := NewMovementService(MovementServiceDeps{
		MovementRepo: deps.Movement,
		WalletRepo:   deps.Wallet,
		AccountRepo:  deps.Account,
		UserRepo:     deps.User,
		MpesaRepo:    deps.Mpesa,
		OTPService:   otpService,
		RateService:  rateService,
		PushPayment:  deps.PushPayment,
		Notifier:     deps.Notifier,
		Logger:       deps.Logger,
		InitTimeout:  deps.GatewayTimeout,
	})

	return &portssvc.ServiceContainer{
		User:         userService,
		Account:      accountService,
		Currency:     currencyService,
		ExchangeRate: rateService,
		Wallet:       walletService,
		OTP:          otpService,
		Movement:     movementService,
	}
}
