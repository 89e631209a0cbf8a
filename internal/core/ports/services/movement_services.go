package services

import (
	"context"

	"github.com/traderiser/wallet-backend/internal/core/domain"
	"github.com/traderiser/wallet-backend/internal/dto"
)

// MovementSvcFacade drives a money movement through its lifecycle from
// request to terminal state. It is the single authority on transition
// legality and on the side effects of each transition.
type MovementSvcFacade interface {
	// InitiateDeposit creates a pending deposit with a frozen conversion and
	// pushes the payment request to the gateway. An immediate gateway
	// rejection fails the movement synchronously.
	InitiateDeposit(ctx context.Context, userID string, req dto.DepositRequest) (*domain.Movement, error)

	// HandleGatewayResult applies an asynchronous gateway result. Results
	// may arrive late, repeated or out of order; a result for an already
	// terminal movement is a logged no-op.
	HandleGatewayResult(ctx context.Context, result dto.GatewayResult) error

	// RequestWithdrawalOTP creates a pending withdrawal and issues the OTP
	// challenge gating it. Rejected up front when the wallet balance does
	// not cover the amount.
	RequestWithdrawalOTP(ctx context.Context, userID string, req dto.WithdrawOTPRequest) (*domain.Movement, error)

	// VerifyWithdrawalOTP validates the challenge and reserves the funds:
	// the wallet is debited immediately and the movement stays pending for
	// operator approval.
	VerifyWithdrawalOTP(ctx context.Context, userID string, req dto.WithdrawVerifyRequest) (*domain.Movement, error)

	// CompleteWithdrawal is the operator approval of a reserved withdrawal.
	// The debit already happened, so no balance changes.
	CompleteWithdrawal(ctx context.Context, actorUserID, movementID string) (*domain.Movement, error)

	// FailMovement is the operator path that fails a pending movement. A
	// reserved withdrawal debit is not refunded.
	FailMovement(ctx context.Context, actorUserID, movementID, reason string) (*domain.Movement, error)

	// GetMovement retrieves one movement owned by the user.
	GetMovement(ctx context.Context, userID, movementID string) (*domain.Movement, error)

	// ListMovements retrieves the user's movement history, newest first.
	ListMovements(ctx context.Context, userID string, limit, offset int) ([]domain.Movement, error)
}

// OTPSvcFacade issues and validates one-time withdrawal codes.
type OTPSvcFacade interface {
	// Issue generates a challenge bound to one pending withdrawal movement
	// and starts its expiry clock.
	Issue(ctx context.Context, userID, movementID string) (*domain.OTPChallenge, error)

	// Validate checks a submitted code against the newest unused challenge.
	// It fails closed (invalid, expired, used, wrong movement are all hard
	// rejections) and does NOT mark the challenge used; claiming it happens
	// atomically with the movement's funds reservation.
	Validate(ctx context.Context, userID, code, movementID string) (*domain.OTPChallenge, error)
}
