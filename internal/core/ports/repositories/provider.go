package repositories

// RepositoryProvider holds the concrete repositories the service layer is
// wired with.
type RepositoryProvider struct {
	UserRepo     UserRepository
	MpesaRepo    MpesaNumberRepository
	CurrencyRepo CurrencyRepository
	RateRepo     ExchangeRateRepository
	AccountRepo  AccountRepository
	WalletRepo   WalletRepository
	MovementRepo MovementRepository
	OTPRepo      OTPRepository
}
