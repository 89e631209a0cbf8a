package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/traderiser/wallet-backend/internal/apperrors"
	"github.com/traderiser/wallet-backend/internal/core/domain"
	portsrepo "github.com/traderiser/wallet-backend/internal/core/ports/repositories"
	portssvc "github.com/traderiser/wallet-backend/internal/core/ports/services"
	"github.com/traderiser/wallet-backend/internal/dto"
	"github.com/traderiser/wallet-backend/internal/gateway"
	"github.com/traderiser/wallet-backend/internal/notifier"
	"github.com/traderiser/wallet-backend/internal/utils"
)

// Default source currency for mobile-money deposits and payout currency for
// withdrawals.
const gatewayCurrencyCode = "KSH"

// movementService drives money movements through their lifecycle. It is the
// single authority on transition legality; every settlement claims the
// movement row inside the repository transaction, so replayed or racing
// confirmations observe the terminal state and no-op.
type movementService struct {
	movementRepo portsrepo.MovementRepository
	walletRepo   portsrepo.WalletRepository
	accountRepo  portsrepo.AccountRepository
	userRepo     portsrepo.UserRepository
	mpesaRepo    portsrepo.MpesaNumberRepository
	otpService   portssvc.OTPSvcFacade
	rateService  portssvc.ExchangeRateReaderSvc
	pushPayment  gateway.PushPayment
	notify       notifier.Notifier
	logger       *slog.Logger
	initTimeout  time.Duration
	now          func() time.Time
}

// MovementServiceDeps bundles the collaborators of the movement service.
type MovementServiceDeps struct {
	MovementRepo portsrepo.MovementRepository
	WalletRepo   portsrepo.WalletRepository
	AccountRepo  portsrepo.AccountRepository
	UserRepo     portsrepo.UserRepository
	MpesaRepo    portsrepo.MpesaNumberRepository
	OTPService   portssvc.OTPSvcFacade
	RateService  portssvc.ExchangeRateReaderSvc
	PushPayment  gateway.PushPayment
	Notifier     notifier.Notifier
	Logger       *slog.Logger
	// InitTimeout bounds the gateway initiation call.
	InitTimeout time.Duration
}

// NewMovementService creates the money-movement state machine.
func NewMovementService(deps MovementServiceDeps) portssvc.MovementSvcFacade {
	timeout := deps.InitTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &movementService{
		movementRepo: deps.MovementRepo,
		walletRepo:   deps.WalletRepo,
		accountRepo:  deps.AccountRepo,
		userRepo:     deps.UserRepo,
		mpesaRepo:    deps.MpesaRepo,
		otpService:   deps.OTPService,
		rateService:  deps.RateService,
		pushPayment:  deps.PushPayment,
		notify:       deps.Notifier,
		logger:       deps.Logger,
		initTimeout:  timeout,
		now:          time.Now,
	}
}

var _ portssvc.MovementSvcFacade = (*movementService)(nil)

// InitiateDeposit creates a pending deposit with a frozen conversion and
// pushes the payment request to the gateway. The conversion is computed once
// here and never recomputed: the amount eventually credited is the one
// frozen at creation time.
func (s *movementService) InitiateDeposit(ctx context.Context, userID string, req dto.DepositRequest) (*domain.Movement, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: deposit amount must be positive", apperrors.ErrValidation)
	}

	sourceCurrency := req.CurrencyCode
	if sourceCurrency == "" {
		sourceCurrency = gatewayCurrencyCode
	}

	wallet, err := s.resolveWallet(ctx, userID, req.AccountType, req.WalletType)
	if err != nil {
		return nil, err
	}

	phone, err := s.resolvePhone(ctx, userID, req.Phone)
	if err != nil {
		return nil, err
	}

	converted, rateUsed, err := s.rateService.Convert(ctx, req.Amount, sourceCurrency, wallet.CurrencyCode, domain.LiveRate)
	if err != nil {
		return nil, err
	}

	reference, err := utils.GenerateMovementReference()
	if err != nil {
		return nil, fmt.Errorf("failed to generate movement reference: %w", err)
	}

	movement := domain.Movement{
		MovementID:         uuid.NewString(),
		WalletID:           wallet.WalletID,
		MovementType:       domain.Deposit,
		Amount:             req.Amount,
		CurrencyCode:       sourceCurrency,
		TargetCurrencyCode: wallet.CurrencyCode,
		ConvertedAmount:    converted,
		ExchangeRateUsed:   rateUsed,
		Status:             domain.MovementPending,
		ReferenceID:        reference,
		Description:        fmt.Sprintf("Deposit of %s %s requested", req.Amount, sourceCurrency),
		Phone:              phone,
		CreatedAt:          s.now(),
	}

	if err := s.movementRepo.SaveMovement(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to save deposit movement: %w", err)
	}

	initCtx, cancel := context.WithTimeout(ctx, s.initTimeout)
	defer cancel()

	initiation, err := s.pushPayment.Initiate(initCtx, phone, req.Amount, reference)
	if err != nil {
		// No funds have moved yet, so a failed initiation fails the movement
		// synchronously with the gateway's reason on the audit trail.
		reason := "gateway unreachable"
		if errors.Is(err, apperrors.ErrGatewayRejected) {
			reason = err.Error()
		}
		if failErr := s.movementRepo.FailDeposit(ctx, movement.MovementID, reason, s.now()); failErr != nil && !errors.Is(failErr, apperrors.ErrAlreadySettled) {
			s.logger.Error("Failed to record deposit initiation failure",
				slog.String("movement_id", movement.MovementID),
				slog.String("error", failErr.Error()))
		}
		return nil, err
	}

	if err := s.movementRepo.SetCheckoutRequestID(ctx, movement.MovementID, initiation.CheckoutRequestID); err != nil {
		return nil, fmt.Errorf("failed to store gateway correlation id: %w", err)
	}
	movement.CheckoutRequestID = initiation.CheckoutRequestID

	s.logger.Info("Deposit initiated",
		slog.String("movement_id", movement.MovementID),
		slog.String("reference", reference),
		slog.String("checkout_request_id", initiation.CheckoutRequestID))

	return &movement, nil
}

// HandleGatewayResult applies an asynchronous gateway result. The repository
// claims the movement row with a conditional status update; a replayed or
// racing result observes the terminal state, is logged and ignored.
func (s *movementService) HandleGatewayResult(ctx context.Context, result dto.GatewayResult) error {
	movement, err := s.movementRepo.FindMovementByCheckoutRequestID(ctx, result.CheckoutRequestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("Gateway result for unknown correlation id",
				slog.String("checkout_request_id", result.CheckoutRequestID))
		}
		return err
	}

	if result.Succeeded() {
		rates, err := s.rateService.Snapshot(ctx)
		if err != nil {
			return err
		}
		err = s.movementRepo.SettleDeposit(ctx, movement.MovementID, result.Receipt, s.now(), rates)
		if errors.Is(err, apperrors.ErrAlreadySettled) {
			s.logger.Info("Duplicate gateway result ignored",
				slog.String("movement_id", movement.MovementID),
				slog.String("checkout_request_id", result.CheckoutRequestID))
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to settle deposit %s: %w", movement.MovementID, err)
		}
		s.notifyMovement(ctx, movement, notifier.KindMovementCompleted,
			"Deposit Approved!",
			fmt.Sprintf("Your deposit of %s %s has been approved. %s %s credited. Ref: %s",
				movement.Amount, movement.CurrencyCode, movement.ConvertedAmount, movement.TargetCurrencyCode, movement.ReferenceID))
		return nil
	}

	err = s.movementRepo.FailDeposit(ctx, movement.MovementID, result.ResultDesc, s.now())
	if errors.Is(err, apperrors.ErrAlreadySettled) {
		s.logger.Info("Gateway failure for already settled movement ignored",
			slog.String("movement_id", movement.MovementID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to record deposit failure %s: %w", movement.MovementID, err)
	}
	s.notifyMovement(ctx, movement, notifier.KindMovementFailed,
		"Deposit Failed",
		fmt.Sprintf("Your deposit of %s %s failed. Ref: %s", movement.Amount, movement.CurrencyCode, movement.ReferenceID))
	return nil
}

// RequestWithdrawalOTP creates a pending withdrawal priced at the admin
// withdrawal rate and issues the OTP challenge gating it. No funds move until
// the challenge is verified.
func (s *movementService) RequestWithdrawalOTP(ctx context.Context, userID string, req dto.WithdrawOTPRequest) (*domain.Movement, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive", apperrors.ErrValidation)
	}

	wallet, err := s.resolveWallet(ctx, userID, req.AccountType, req.WalletType)
	if err != nil {
		return nil, err
	}
	if wallet.Balance.LessThan(req.Amount) {
		return nil, fmt.Errorf("%w: balance %s, requested %s", apperrors.ErrInsufficientFunds, wallet.Balance, req.Amount)
	}

	phone, err := s.resolvePhone(ctx, userID, req.Phone)
	if err != nil {
		return nil, err
	}

	payout, rateUsed, err := s.rateService.Convert(ctx, req.Amount, wallet.CurrencyCode, gatewayCurrencyCode, domain.WithdrawalRate)
	if err != nil {
		return nil, err
	}

	reference, err := utils.GenerateMovementReference()
	if err != nil {
		return nil, fmt.Errorf("failed to generate movement reference: %w", err)
	}

	movement := domain.Movement{
		MovementID:         uuid.NewString(),
		WalletID:           wallet.WalletID,
		MovementType:       domain.Withdrawal,
		Amount:             req.Amount,
		CurrencyCode:       wallet.CurrencyCode,
		TargetCurrencyCode: gatewayCurrencyCode,
		ConvertedAmount:    payout,
		ExchangeRateUsed:   rateUsed,
		Status:             domain.MovementPending,
		ReferenceID:        reference,
		Description:        fmt.Sprintf("Withdrawal of %s %s requested", req.Amount, wallet.CurrencyCode),
		Phone:              phone,
		CreatedAt:          s.now(),
	}

	if err := s.movementRepo.SaveMovement(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to save withdrawal movement: %w", err)
	}

	if _, err := s.otpService.Issue(ctx, userID, movement.MovementID); err != nil {
		return nil, fmt.Errorf("failed to issue withdrawal otp: %w", err)
	}

	return &movement, nil
}

// VerifyWithdrawalOTP validates the challenge and reserves the funds: the
// wallet is debited immediately, preventing the same balance from being spent
// while an operator reviews the payout. Claiming the challenge and debiting
// share one repository transaction.
func (s *movementService) VerifyWithdrawalOTP(ctx context.Context, userID string, req dto.WithdrawVerifyRequest) (*domain.Movement, error) {
	movement, err := s.movementRepo.FindMovementByID(ctx, req.MovementID)
	if err != nil {
		return nil, err
	}
	if movement.MovementType != domain.Withdrawal {
		return nil, fmt.Errorf("%w: movement %s is not a withdrawal", apperrors.ErrValidation, movement.MovementID)
	}
	if movement.Status.Terminal() {
		return nil, fmt.Errorf("%w: movement %s is %s", apperrors.ErrInvalidTransition, movement.MovementID, movement.Status)
	}
	if _, err := s.ownedWallet(ctx, userID, movement.WalletID); err != nil {
		return nil, err
	}

	challenge, err := s.otpService.Validate(ctx, userID, req.Code, req.MovementID)
	if err != nil {
		return nil, err
	}

	rates, err := s.rateService.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.movementRepo.ReserveWithdrawal(ctx, *movement, challenge.OTPID, rates); err != nil {
		return nil, err
	}

	s.logger.Info("Withdrawal funds reserved",
		slog.String("movement_id", movement.MovementID),
		slog.String("reference", movement.ReferenceID))

	return s.movementRepo.FindMovementByID(ctx, movement.MovementID)
}

// CompleteWithdrawal is the operator approval of a reserved withdrawal. The
// debit happened at verification time, so completion changes no balances.
func (s *movementService) CompleteWithdrawal(ctx context.Context, actorUserID, movementID string) (*domain.Movement, error) {
	movement, err := s.movementRepo.FindMovementByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if movement.MovementType != domain.Withdrawal {
		return nil, fmt.Errorf("%w: deposits settle via the gateway callback", apperrors.ErrValidation)
	}

	if err := s.movementRepo.CompleteWithdrawal(ctx, movementID, s.now()); err != nil {
		return nil, err
	}

	s.logger.Info("Withdrawal completed",
		slog.String("movement_id", movementID),
		slog.String("actor_user_id", actorUserID))
	s.notifyMovement(ctx, movement, notifier.KindMovementCompleted,
		"Withdrawal Paid!",
		fmt.Sprintf("%s %s has been sent to %s. Ref: %s", movement.Amount, movement.CurrencyCode, movement.Phone, movement.ReferenceID))

	return s.movementRepo.FindMovementByID(ctx, movementID)
}

// FailMovement is the operator path that fails a pending movement. For a
// reserved withdrawal the already-debited amount is not refunded; the failure
// is recorded for operator follow-up instead.
func (s *movementService) FailMovement(ctx context.Context, actorUserID, movementID, reason string) (*domain.Movement, error) {
	movement, err := s.movementRepo.FindMovementByID(ctx, movementID)
	if err != nil {
		return nil, err
	}

	if err := s.movementRepo.FailMovement(ctx, movementID, reason); err != nil {
		return nil, err
	}

	s.logger.Info("Movement failed by operator",
		slog.String("movement_id", movementID),
		slog.String("actor_user_id", actorUserID),
		slog.String("reason", reason))
	s.notifyMovement(ctx, movement, notifier.KindMovementFailed,
		"Transaction Failed",
		fmt.Sprintf("Your %s of %s %s failed. Ref: %s", movement.MovementType, movement.Amount, movement.CurrencyCode, movement.ReferenceID))

	return s.movementRepo.FindMovementByID(ctx, movementID)
}

// GetMovement retrieves one movement owned by the user.
func (s *movementService) GetMovement(ctx context.Context, userID, movementID string) (*domain.Movement, error) {
	movement, err := s.movementRepo.FindMovementByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedWallet(ctx, userID, movement.WalletID); err != nil {
		return nil, err
	}
	return movement, nil
}

// ListMovements retrieves the user's movement history, newest first.
func (s *movementService) ListMovements(ctx context.Context, userID string, limit, offset int) ([]domain.Movement, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	movements, err := s.movementRepo.ListMovementsByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements in service: %w", err)
	}
	return movements, nil
}

// resolveWallet locates the wallet targeted by a movement request: the
// requested wallet type of the requested account type, defaulting to the
// main wallet of the standard account.
func (s *movementService) resolveWallet(ctx context.Context, userID, accountType, walletType string) (*domain.Wallet, error) {
	accType := domain.AccountType(accountType)
	if accountType == "" {
		accType = domain.AccountStandard
	}
	wType := domain.WalletType(walletType)
	if walletType == "" {
		wType = domain.WalletMain
	}

	accounts, err := s.accountRepo.FindAccountsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	var account *domain.Account
	for i := range accounts {
		if accounts[i].AccountType == accType {
			account = &accounts[i]
			break
		}
	}
	if account == nil {
		return nil, fmt.Errorf("%w: no %s account for user", apperrors.ErrNotFound, accType)
	}

	wallets, err := s.walletRepo.FindWalletsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	for i := range wallets {
		if wallets[i].AccountID == account.AccountID && wallets[i].WalletType == wType {
			return &wallets[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no %s wallet for account %s", apperrors.ErrNotFound, wType, account.AccountID)
}

// resolvePhone picks the request phone or falls back to the registered
// payout number.
func (s *movementService) resolvePhone(ctx context.Context, userID, requestPhone string) (string, error) {
	if requestPhone != "" {
		return requestPhone, nil
	}
	number, err := s.mpesaRepo.FindMpesaNumberByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: no phone number provided or registered", apperrors.ErrValidation)
		}
		return "", fmt.Errorf("failed to look up registered number: %w", err)
	}
	return number.PhoneNumber, nil
}

// ownedWallet verifies that the wallet belongs to the user and returns it.
func (s *movementService) ownedWallet(ctx context.Context, userID, walletID string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.FindWalletByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindAccountByID(ctx, wallet.AccountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, fmt.Errorf("%w: movement belongs to another user", apperrors.ErrForbidden)
	}
	return wallet, nil
}

// notifyMovement sends a lifecycle notification to the wallet owner.
// Delivery is fire-and-forget: failures are logged, never propagated into
// the ledger transaction that triggered them.
func (s *movementService) notifyMovement(ctx context.Context, movement *domain.Movement, kind, subject, body string) {
	wallet, err := s.walletRepo.FindWalletByID(ctx, movement.WalletID)
	if err != nil {
		s.logger.Error("Failed to resolve wallet for notification", slog.String("error", err.Error()))
		return
	}
	account, err := s.accountRepo.FindAccountByID(ctx, wallet.AccountID)
	if err != nil {
		s.logger.Error("Failed to resolve account for notification", slog.String("error", err.Error()))
		return
	}
	user, err := s.userRepo.FindUserByID(ctx, account.UserID)
	if err != nil {
		s.logger.Error("Failed to resolve user for notification", slog.String("error", err.Error()))
		return
	}
	msg := notifier.Message{
		Kind:      kind,
		Recipient: user.Email,
		Subject:   subject,
		Body:      fmt.Sprintf("Hi %s,\n\n%s", user.Username, body),
	}
	if err := s.notify.Send(ctx, msg); err != nil {
		s.logger.Error("Failed to send movement notification",
			slog.String("movement_id", movement.MovementID),
			slog.String("kind", kind),
			slog.String("error", err.Error()))
	}
}
