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

type PgxExchangeRateRepository struct {
	BaseRepository
}

// newPgxExchangeRateRepository creates a new repository for the rate table.
func newPgxExchangeRateRepository(pool *pgxpool.Pool) portsrepo.ExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ExchangeRateRepository = (*PgxExchangeRateRepository)(nil)

// UpsertExchangeRate creates or replaces the rate row for an ordered pair.
// The pair is the natural key; the surrogate id survives an update.
func (r *PgxExchangeRateRepository) UpsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (
			exchange_rate_id, base_currency_code, target_currency_code,
			rate, admin_withdrawal_rate,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (base_currency_code, target_currency_code) DO UPDATE SET
			rate = EXCLUDED.rate,
			admin_withdrawal_rate = EXCLUDED.admin_withdrawal_rate,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`

	_, err := r.Pool.Exec(ctx, query,
		rate.ExchangeRateID,
		rate.BaseCurrencyCode,
		rate.TargetCurrencyCode,
		rate.Rate,
		rate.AdminWithdrawalRate,
		rate.CreatedAt,
		rate.CreatedBy,
		rate.LastUpdatedAt,
		rate.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to upsert exchange rate "+rate.BaseCurrencyCode+"/"+rate.TargetCurrencyCode, err)
	}
	return nil
}

// FindExchangeRate retrieves the rate for the exact ordered pair. Inverse
// fallback is the service's job, not the repository's.
func (r *PgxExchangeRateRepository) FindExchangeRate(ctx context.Context, baseCode, targetCode string) (*domain.ExchangeRate, error) {
	query := `
		SELECT exchange_rate_id, base_currency_code, target_currency_code,
		       rate, admin_withdrawal_rate,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM exchange_rates
		WHERE base_currency_code = $1 AND target_currency_code = $2;
	`
	var rate domain.ExchangeRate
	err := r.Pool.QueryRow(ctx, query, baseCode, targetCode).Scan(
		&rate.ExchangeRateID,
		&rate.BaseCurrencyCode,
		&rate.TargetCurrencyCode,
		&rate.Rate,
		&rate.AdminWithdrawalRate,
		&rate.CreatedAt,
		&rate.CreatedBy,
		&rate.LastUpdatedAt,
		&rate.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find exchange rate "+baseCode+"/"+targetCode, err)
	}
	return &rate, nil
}

// ListExchangeRates retrieves every configured rate ordered by pair.
func (r *PgxExchangeRateRepository) ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	query := `
		SELECT exchange_rate_id, base_currency_code, target_currency_code,
		       rate, admin_withdrawal_rate,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM exchange_rates
		ORDER BY base_currency_code, target_currency_code;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query exchange rates", err)
	}
	defer rows.Close()

	rates := []domain.ExchangeRate{}
	for rows.Next() {
		var rate domain.ExchangeRate
		if err := rows.Scan(
			&rate.ExchangeRateID,
			&rate.BaseCurrencyCode,
			&rate.TargetCurrencyCode,
			&rate.Rate,
			&rate.AdminWithdrawalRate,
			&rate.CreatedAt,
			&rate.CreatedBy,
			&rate.LastUpdatedAt,
			&rate.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan exchange rate row", err)
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating exchange rate rows", err)
	}
	return rates, nil
}
