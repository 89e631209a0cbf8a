package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/traderiser/wallet-backend/internal/apperrors"
	"github.com/traderiser/wallet-backend/internal/core/domain"
	portsrepo "github.com/traderiser/wallet-backend/internal/core/ports/repositories"
)

type PgxMpesaNumberRepository struct {
	BaseRepository
}

// newPgxMpesaNumberRepository creates a new repository for registered payout numbers.
func newPgxMpesaNumberRepository(pool *pgxpool.Pool) portsrepo.MpesaNumberRepository {
	return &PgxMpesaNumberRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.MpesaNumberRepository = (*PgxMpesaNumberRepository)(nil)

// UpsertMpesaNumber creates or replaces the user's registered number. One
// row per user; replacing the number resets verification.
func (r *PgxMpesaNumberRepository) UpsertMpesaNumber(ctx context.Context, number domain.MpesaNumber) error {
	query := `
		INSERT INTO mpesa_numbers (user_id, phone_number, is_verified, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			phone_number = EXCLUDED.phone_number,
			is_verified = EXCLUDED.is_verified,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`

	_, err := r.Pool.Exec(ctx, query,
		number.UserID,
		number.PhoneNumber,
		number.IsVerified,
		number.CreatedAt,
		number.CreatedBy,
		number.LastUpdatedAt,
		number.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to upsert mpesa number for user "+number.UserID, err)
	}
	return nil
}

// FindMpesaNumberByUserID retrieves the user's registered number.
func (r *PgxMpesaNumberRepository) FindMpesaNumberByUserID(ctx context.Context, userID string) (*domain.MpesaNumber, error) {
	query := `
		SELECT user_id, phone_number, is_verified, created_at, created_by, last_updated_at, last_updated_by
		FROM mpesa_numbers
		WHERE user_id = $1;
	`
	var number domain.MpesaNumber
	err := r.Pool.QueryRow(ctx, query, userID).Scan(
		&number.UserID,
		&number.PhoneNumber,
		&number.IsVerified,
		&number.CreatedAt,
		&number.CreatedBy,
		&number.LastUpdatedAt,
		&number.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find mpesa number for user "+userID, err)
	}
	return &number, nil
}
