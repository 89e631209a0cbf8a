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

type PgxOTPRepository struct {
	BaseRepository
}

// newPgxOTPRepository creates a new repository for one-time withdrawal codes.
func newPgxOTPRepository(pool *pgxpool.Pool) portsrepo.OTPRepository {
	return &PgxOTPRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.OTPRepository = (*PgxOTPRepository)(nil)

// SaveOTP inserts a new challenge.
func (r *PgxOTPRepository) SaveOTP(ctx context.Context, challenge domain.OTPChallenge) error {
	query := `
		INSERT INTO otp_codes (otp_id, user_id, code, purpose, movement_id, created_at, is_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		challenge.OTPID,
		challenge.UserID,
		challenge.Code,
		challenge.Purpose,
		challenge.MovementID,
		challenge.CreatedAt,
		challenge.IsUsed,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save otp "+challenge.OTPID, err)
	}
	return nil
}

// FindLatestByCode returns the newest challenge matching the user, code and
// purpose, used or not. Used challenges stay findable so verification can
// report "already used" instead of "invalid".
func (r *PgxOTPRepository) FindLatestByCode(ctx context.Context, userID, code, purpose string) (*domain.OTPChallenge, error) {
	query := `
		SELECT otp_id, user_id, code, purpose, movement_id, created_at, is_used
		FROM otp_codes
		WHERE user_id = $1 AND code = $2 AND purpose = $3
		ORDER BY created_at DESC
		LIMIT 1;
	`
	var challenge domain.OTPChallenge
	err := r.Pool.QueryRow(ctx, query, userID, code, purpose).Scan(
		&challenge.OTPID,
		&challenge.UserID,
		&challenge.Code,
		&challenge.Purpose,
		&challenge.MovementID,
		&challenge.CreatedAt,
		&challenge.IsUsed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find otp by code", err)
	}
	return &challenge, nil
}
