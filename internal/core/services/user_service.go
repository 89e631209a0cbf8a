package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/traderiser/wallet-backend/internal/apperrors"
	"github.com/traderiser/wallet-backend/internal/core/domain"
	portsrepo "github.com/traderiser/wallet-backend/internal/core/ports/repositories"
	portssvc "github.com/traderiser/wallet-backend/internal/core/ports/services"
	"github.com/traderiser/wallet-backend/internal/dto"
	"github.com/traderiser/wallet-backend/internal/utils"
)

// TokenConfig holds JWT signing parameters.
type TokenConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

// userService provides registration, authentication and profile data.
type userService struct {
	userRepo  portsrepo.UserRepository
	mpesaRepo portsrepo.MpesaNumberRepository
	tokens    TokenConfig
}

// NewUserService creates a new user service.
func NewUserService(userRepo portsrepo.UserRepository, mpesaRepo portsrepo.MpesaNumberRepository, tokens TokenConfig) portssvc.UserSvcFacade {
	return &userService{
		userRepo:  userRepo,
		mpesaRepo: mpesaRepo,
		tokens:    tokens,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// Register creates a new user with a hashed password.
func (s *userService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	if existing, err := s.userRepo.FindUserByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: username '%s'", apperrors.ErrDuplicate, req.Username)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user in service: %w", err)
	}
	return &user, nil
}

// Authenticate verifies credentials and returns a signed JWT.
func (s *userService) Authenticate(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrValidation)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrValidation)
	}

	expiresAt := time.Now().Add(s.tokens.Expiry)
	claims := jwt.RegisteredClaims{
		Subject:   user.UserID,
		Issuer:    s.tokens.Issuer,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.tokens.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &dto.LoginResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      dto.ToUserResponse(user),
	}, nil
}

// GetUserByID retrieves one user.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user in service: %w", err)
	}
	return user, nil
}

// GetMpesaNumber retrieves the user's registered payout number.
func (s *userService) GetMpesaNumber(ctx context.Context, userID string) (*domain.MpesaNumber, error) {
	number, err := s.mpesaRepo.FindMpesaNumberByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mpesa number in service: %w", err)
	}
	return number, nil
}

// PutMpesaNumber registers or replaces the user's payout number. Replacing a
// number resets its verification flag.
func (s *userService) PutMpesaNumber(ctx context.Context, userID string, req dto.PutMpesaNumberRequest) (*domain.MpesaNumber, error) {
	now := time.Now()
	number := domain.MpesaNumber{
		UserID:      userID,
		PhoneNumber: req.PhoneNumber,
		IsVerified:  false,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.mpesaRepo.UpsertMpesaNumber(ctx, number); err != nil {
		return nil, fmt.Errorf("failed to save mpesa number in service: %w", err)
	}
	return &number, nil
}
