package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/traderiser/wallet-backend/internal/apperrors"
	"github.com/traderiser/wallet-backend/internal/core/domain"
	portsrepo "github.com/traderiser/wallet-backend/internal/core/ports/repositories"
	portssvc "github.com/traderiser/wallet-backend/internal/core/ports/services"
	"github.com/traderiser/wallet-backend/internal/notifier"
	"github.com/traderiser/wallet-backend/internal/utils"
)

const otpCodeLength = 6

// otpService issues and validates one-time withdrawal codes. Validation is
// read-only; the challenge is claimed (marked used) atomically with the
// movement's funds reservation in the movement repository.
type otpService struct {
	otpRepo  portsrepo.OTPRepository
	userRepo portsrepo.UserRepository
	notify   notifier.Notifier
	logger   *slog.Logger
	ttl      time.Duration
	now      func() time.Time
}

// NewOTPService creates a new OTP challenge manager. ttl is the validity
// window of issued codes.
func NewOTPService(otpRepo portsrepo.OTPRepository, userRepo portsrepo.UserRepository, notify notifier.Notifier, logger *slog.Logger, ttl time.Duration) portssvc.OTPSvcFacade {
	return &otpService{
		otpRepo:  otpRepo,
		userRepo: userRepo,
		notify:   notify,
		logger:   logger,
		ttl:      ttl,
		now:      time.Now,
	}
}

var _ portssvc.OTPSvcFacade = (*otpService)(nil)

// Issue generates a challenge bound to one pending withdrawal movement and
// starts its expiry clock. The code is delivered out-of-band; delivery
// failure is logged, never propagated.
func (s *otpService) Issue(ctx context.Context, userID, movementID string) (*domain.OTPChallenge, error) {
	code, err := utils.GenerateOTPCode(otpCodeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate otp code: %w", err)
	}

	challenge := domain.OTPChallenge{
		OTPID:      uuid.NewString(),
		UserID:     userID,
		Code:       code,
		Purpose:    domain.OTPPurposeWithdrawal,
		MovementID: movementID,
		CreatedAt:  s.now(),
		IsUsed:     false,
	}

	if err := s.otpRepo.SaveOTP(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to save otp challenge: %w", err)
	}

	if user, err := s.userRepo.FindUserByID(ctx, userID); err == nil {
		msg := notifier.Message{
			Kind:      notifier.KindOTPIssued,
			Recipient: user.Email,
			Subject:   "Your withdrawal code",
			Body:      fmt.Sprintf("Hi %s,\n\nYour withdrawal confirmation code is %s. It expires in %d seconds.", user.Username, code, int(s.ttl.Seconds())),
		}
		if err := s.notify.Send(ctx, msg); err != nil {
			s.logger.Error("Failed to send OTP notification",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
		}
	}

	return &challenge, nil
}

// Validate checks a submitted code against the newest matching challenge.
// It fails closed: an unknown code, a used code, an expired code or a code
// bound to a different movement are all hard rejections.
func (s *otpService) Validate(ctx context.Context, userID, code, movementID string) (*domain.OTPChallenge, error) {
	challenge, err := s.otpRepo.FindLatestByCode(ctx, userID, code, domain.OTPPurposeWithdrawal)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrOTPInvalid
		}
		return nil, fmt.Errorf("failed to look up otp challenge: %w", err)
	}

	if challenge.IsUsed {
		return nil, apperrors.ErrOTPUsed
	}
	if challenge.MovementID != movementID {
		return nil, apperrors.ErrOTPMovementMismatch
	}
	if challenge.ExpiredAt(s.now(), s.ttl) {
		return nil, apperrors.ErrOTPExpired
	}
	return challenge, nil
}
