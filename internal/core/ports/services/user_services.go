package services

import (
	"context"

	"github.com/traderiser/wallet-backend/internal/core/domain"
	"github.com/traderiser/wallet-backend/internal/dto"
)

// UserSvcFacade defines user registration, authentication and profile data.
type UserSvcFacade interface {
	// Register creates a new user with a hashed password.
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error)

	// Authenticate verifies credentials and returns a signed JWT.
	Authenticate(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)

	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// GetMpesaNumber retrieves the user's registered payout number.
	GetMpesaNumber(ctx context.Context, userID string) (*domain.MpesaNumber, error)

	// PutMpesaNumber registers or replaces the user's payout number.
	PutMpesaNumber(ctx context.Context, userID string, req dto.PutMpesaNumberRequest) (*domain.MpesaNumber, error)
}

// AccountSvcFacade defines account lifecycle operations.
type AccountSvcFacade interface {
	// CreateAccount opens an account of the requested type together with its
	// default wallets. A user holds at most one demo and one real account;
	// demo accounts open with the demo seed balance.
	CreateAccount(ctx context.Context, userID string, req dto.CreateAccountRequest) (*domain.Account, error)

	GetAccountByID(ctx context.Context, userID, accountID string) (*domain.Account, error)

	ListAccounts(ctx context.Context, userID string) ([]domain.Account, error)

	// ResetDemoBalance restores a demo account to its opening balance.
	ResetDemoBalance(ctx context.Context, userID, accountID string) error
}
