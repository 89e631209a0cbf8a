package repositories

import (
	"context"

	"github.com/traderiser/wallet-backend/internal/core/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	SaveUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// MpesaNumberRepository defines persistence for users' registered payout numbers.
type MpesaNumberRepository interface {
	UpsertMpesaNumber(ctx context.Context, number domain.MpesaNumber) error
	FindMpesaNumberByUserID(ctx context.Context, userID string) (*domain.MpesaNumber, error)
}
