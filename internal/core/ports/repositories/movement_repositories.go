package repositories

import (
	"context"
	"time"

	"github.com/traderiser/wallet-backend/internal/core/domain"
	"github.com/traderiser/wallet-backend/internal/utils/syncing"
)

// MovementRepository defines persistence for money movements, including the
// atomic settlement operations of the state machine. The balance mutation,
// ledger entry and status flip of one movement always share one database
// transaction, and the status flip is a conditional update that claims the
// movement row, so concurrent settlements serialize and the loser no-ops.
type MovementRepository interface {
	SaveMovement(ctx context.Context, movement domain.Movement) error
	FindMovementByID(ctx context.Context, movementID string) (*domain.Movement, error)
	FindMovementByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.Movement, error)
	// SetCheckoutRequestID stores the gateway correlation id after an
	// accepted initiation.
	SetCheckoutRequestID(ctx context.Context, movementID, checkoutRequestID string) error
	ListMovementsByUserID(ctx context.Context, userID string, limit, offset int) ([]domain.Movement, error)

	// SettleDeposit claims the pending movement, credits its wallet by the
	// frozen converted amount, mirrors siblings and marks the movement
	// completed. Returns apperrors.ErrAlreadySettled when the movement is
	// already terminal.
	SettleDeposit(ctx context.Context, movementID, receipt string, settledAt time.Time, rates syncing.RateSource) error

	// FailDeposit marks a pending deposit failed with the given reason; no
	// balance changes. Returns apperrors.ErrAlreadySettled when terminal.
	FailDeposit(ctx context.Context, movementID, reason string, failedAt time.Time) error

	// ReserveWithdrawal marks the OTP challenge used and debits the wallet
	// by the movement amount in one transaction; the movement stays pending
	// for operator approval. Returns apperrors.ErrOTPUsed when the challenge
	// was already claimed, apperrors.ErrInsufficientFunds when the locked
	// balance no longer covers the amount.
	ReserveWithdrawal(ctx context.Context, movement domain.Movement, otpID string, rates syncing.RateSource) error

	// CompleteWithdrawal flips a reserved withdrawal to completed. The funds
	// were debited at reservation time, so no balance changes. Returns
	// apperrors.ErrInvalidTransition when the movement is terminal.
	CompleteWithdrawal(ctx context.Context, movementID string, settledAt time.Time) error

	// FailMovement is the operator path that flips a pending movement to
	// failed, appending the reason. It never refunds a reserved debit.
	// Returns apperrors.ErrInvalidTransition when the movement is terminal.
	FailMovement(ctx context.Context, movementID, reason string) error
}

// OTPRepository defines persistence for one-time withdrawal codes.
type OTPRepository interface {
	SaveOTP(ctx context.Context, challenge domain.OTPChallenge) error
	// FindLatestByCode returns the newest challenge matching the user, code
	// and purpose, used or not; a used challenge must still be findable so
	// verification can distinguish "already used" from "never existed".
	FindLatestByCode(ctx context.Context, userID, code, purpose string) (*domain.OTPChallenge, error)
}
