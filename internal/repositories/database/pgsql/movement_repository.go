package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/traderiser/wallet-backend/internal/apperrors"
	"github.com/traderiser/wallet-backend/internal/core/domain"
	portsrepo "github.com/traderiser/wallet-backend/internal/core/ports/repositories"
	"github.com/traderiser/wallet-backend/internal/utils/syncing"
)

type PgxMovementRepository struct {
	BaseRepository
	walletTx portsrepo.WalletLedgerTx
}

// newPgxMovementRepository creates a new repository for money movements. The
// wallet ledger primitives are injected so settlement shares one transaction
// with the balance write.
func newPgxMovementRepository(pool *pgxpool.Pool, walletTx portsrepo.WalletLedgerTx) portsrepo.MovementRepository {
	return &PgxMovementRepository{
		BaseRepository: BaseRepository{Pool: pool},
		walletTx:       walletTx,
	}
}

var _ portsrepo.MovementRepository = (*PgxMovementRepository)(nil)

const movementColumns = `movement_id, wallet_id, movement_type, amount, currency_code,
	       target_currency_code, converted_amount, exchange_rate_used,
	       status, reference_id, description, phone, checkout_request_id,
	       created_at, completed_at`

func scanMovement(row pgx.Row) (*domain.Movement, error) {
	var m domain.Movement
	err := row.Scan(
		&m.MovementID,
		&m.WalletID,
		&m.MovementType,
		&m.Amount,
		&m.CurrencyCode,
		&m.TargetCurrencyCode,
		&m.ConvertedAmount,
		&m.ExchangeRateUsed,
		&m.Status,
		&m.ReferenceID,
		&m.Description,
		&m.Phone,
		&m.CheckoutRequestID,
		&m.CreatedAt,
		&m.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan movement row", err)
	}
	return &m, nil
}

// SaveMovement inserts a new movement record.
func (r *PgxMovementRepository) SaveMovement(ctx context.Context, movement domain.Movement) error {
	query := `
		INSERT INTO movements (
			movement_id, wallet_id, movement_type, amount, currency_code,
			target_currency_code, converted_amount, exchange_rate_used,
			status, reference_id, description, phone, checkout_request_id,
			created_at, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.Pool.Exec(ctx, query,
		movement.MovementID,
		movement.WalletID,
		movement.MovementType,
		movement.Amount,
		movement.CurrencyCode,
		movement.TargetCurrencyCode,
		movement.ConvertedAmount,
		movement.ExchangeRateUsed,
		movement.Status,
		movement.ReferenceID,
		movement.Description,
		movement.Phone,
		movement.CheckoutRequestID,
		movement.CreatedAt,
		movement.CompletedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%w: movement reference %s", apperrors.ErrDuplicate, movement.ReferenceID)
		}
		return apperrors.NewAppError(500, "failed to save movement "+movement.MovementID, err)
	}
	return nil
}

// FindMovementByID retrieves a movement by its id.
func (r *PgxMovementRepository) FindMovementByID(ctx context.Context, movementID string) (*domain.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE movement_id = $1;`
	return scanMovement(r.Pool.QueryRow(ctx, query, movementID))
}

// FindMovementByCheckoutRequestID retrieves a movement by its gateway
// correlation id.
func (r *PgxMovementRepository) FindMovementByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE checkout_request_id = $1;`
	return scanMovement(r.Pool.QueryRow(ctx, query, checkoutRequestID))
}

// SetCheckoutRequestID stores the gateway correlation id after an accepted
// initiation.
func (r *PgxMovementRepository) SetCheckoutRequestID(ctx context.Context, movementID, checkoutRequestID string) error {
	query := `UPDATE movements SET checkout_request_id = $2 WHERE movement_id = $1;`
	cmdTag, err := r.Pool.Exec(ctx, query, movementID, checkoutRequestID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to set checkout request id for movement "+movementID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListMovementsByUserID retrieves the user's movements, newest first.
func (r *PgxMovementRepository) ListMovementsByUserID(ctx context.Context, userID string, limit, offset int) ([]domain.Movement, error) {
	query := `
		SELECT m.movement_id, m.wallet_id, m.movement_type, m.amount, m.currency_code,
		       m.target_currency_code, m.converted_amount, m.exchange_rate_used,
		       m.status, m.reference_id, m.description, m.phone, m.checkout_request_id,
		       m.created_at, m.completed_at
		FROM movements m
		JOIN wallets w ON w.wallet_id = m.wallet_id
		JOIN accounts a ON a.account_id = w.account_id
		WHERE a.user_id = $1
		ORDER BY m.created_at DESC, m.movement_id DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query movements for user "+userID, err)
	}
	defer rows.Close()

	movements := []domain.Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating movement rows for user "+userID, err)
	}
	return movements, nil
}

// claimPending flips a pending movement into a terminal state, appending note
// to its description. The conditional update is the idempotency gate: exactly
// one caller wins the claim, later callers get ErrAlreadySettled. completed_at
// is stamped only on the completed transition; failed movements keep it NULL.
func (r *PgxMovementRepository) claimPending(ctx context.Context, tx pgx.Tx, movementID string, status domain.MovementStatus, note string, at time.Time) (*domain.Movement, error) {
	query := `
		UPDATE movements
		SET status = $2, completed_at = $3, description = description || $4
		WHERE movement_id = $1 AND status = $5
		RETURNING ` + movementColumns + `;
	`
	movement, err := scanMovement(tx.QueryRow(ctx, query, movementID, status, completionTimestamp(status, at), " | "+note, domain.MovementPending))
	if err == nil {
		return movement, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	// Lost the claim or the movement never existed; tell which.
	var exists bool
	if checkErr := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM movements WHERE movement_id = $1)`, movementID).Scan(&exists); checkErr != nil {
		return nil, apperrors.NewAppError(500, "failed to check movement "+movementID, checkErr)
	}
	if !exists {
		return nil, apperrors.ErrNotFound
	}
	return nil, fmt.Errorf("%w: movement %s already terminal", apperrors.ErrAlreadySettled, movementID)
}

// completionTimestamp returns the completed_at value for a terminal
// transition. Only the completed state carries a timestamp; a failed
// movement leaves the column NULL.
func completionTimestamp(status domain.MovementStatus, at time.Time) *time.Time {
	if status != domain.MovementCompleted {
		return nil
	}
	return &at
}

// ownerOf resolves the user owning the movement's wallet.
func (r *PgxMovementRepository) ownerOf(ctx context.Context, tx pgx.Tx, walletID string) (string, error) {
	var userID string
	query := `
		SELECT a.user_id
		FROM wallets w
		JOIN accounts a ON a.account_id = w.account_id
		WHERE w.wallet_id = $1;
	`
	if err := tx.QueryRow(ctx, query, walletID).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", apperrors.NewAppError(500, "failed to resolve owner of wallet "+walletID, err)
	}
	return userID, nil
}

// SettleDeposit claims the pending deposit, credits its wallet by the frozen
// converted amount and mirrors the siblings, all in one transaction.
func (r *PgxMovementRepository) SettleDeposit(ctx context.Context, movementID, receipt string, settledAt time.Time, rates syncing.RateSource) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	movement, err := r.claimPending(ctx, tx, movementID, domain.MovementCompleted, "Settled, receipt "+receipt, settledAt)
	if err != nil {
		return err
	}

	userID, err := r.ownerOf(ctx, tx, movement.WalletID)
	if err != nil {
		return err
	}
	wallets, err := r.walletTx.LockUserWallets(ctx, tx, userID)
	if err != nil {
		return err
	}
	var balance = movement.ConvertedAmount
	for _, w := range wallets {
		if w.WalletID == movement.WalletID {
			balance = w.Balance.Add(movement.ConvertedAmount)
		}
	}
	if err := r.walletTx.WriteBalanceInTx(ctx, tx, movement.WalletID, balance, "deposit_settled", movement.ReferenceID, wallets, rates); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// FailDeposit marks a pending deposit failed with the gateway's reason. No
// balance changes; nothing was credited yet.
func (r *PgxMovementRepository) FailDeposit(ctx context.Context, movementID, reason string, failedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := r.claimPending(ctx, tx, movementID, domain.MovementFailed, "Failed: "+reason, failedAt); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// ReserveWithdrawal claims the OTP challenge and debits the wallet in one
// transaction. The movement stays pending for operator approval; only the
// challenge's single-use flag and the balances change.
func (r *PgxMovementRepository) ReserveWithdrawal(ctx context.Context, movement domain.Movement, otpID string, rates syncing.RateSource) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Single-use claim: the conditional update serializes concurrent
	// verifications of the same challenge.
	cmdTag, err := tx.Exec(ctx, `UPDATE otp_codes SET is_used = TRUE WHERE otp_id = $1 AND is_used = FALSE;`, otpID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to claim otp "+otpID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: challenge already claimed", apperrors.ErrOTPUsed)
	}

	var status domain.MovementStatus
	if err := tx.QueryRow(ctx, `SELECT status FROM movements WHERE movement_id = $1 FOR UPDATE;`, movement.MovementID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to lock movement "+movement.MovementID, err)
	}
	if status.Terminal() {
		return fmt.Errorf("%w: movement %s is %s", apperrors.ErrInvalidTransition, movement.MovementID, status)
	}

	userID, err := r.ownerOf(ctx, tx, movement.WalletID)
	if err != nil {
		return err
	}
	wallets, err := r.walletTx.LockUserWallets(ctx, tx, userID)
	if err != nil {
		return err
	}
	var target *domain.Wallet
	for i := range wallets {
		if wallets[i].WalletID == movement.WalletID {
			target = &wallets[i]
			break
		}
	}
	if target == nil {
		return apperrors.ErrNotFound
	}
	// The balance may have dropped since the request-time check.
	if target.Balance.LessThan(movement.Amount) {
		return fmt.Errorf("%w: balance %s, requested %s", apperrors.ErrInsufficientFunds, target.Balance, movement.Amount)
	}

	newBalance := target.Balance.Sub(movement.Amount)
	if err := r.walletTx.WriteBalanceInTx(ctx, tx, movement.WalletID, newBalance, "withdrawal_reserved", movement.ReferenceID, wallets, rates); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE movements SET description = description || $2 WHERE movement_id = $1;`,
		movement.MovementID, " | Funds reserved"); err != nil {
		return apperrors.NewAppError(500, "failed to annotate movement "+movement.MovementID, err)
	}

	return r.Commit(ctx, tx)
}

// CompleteWithdrawal flips a reserved withdrawal to completed. The debit
// happened at reservation time.
func (r *PgxMovementRepository) CompleteWithdrawal(ctx context.Context, movementID string, settledAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	_, err = r.claimPending(ctx, tx, movementID, domain.MovementCompleted, "Payout approved", settledAt)
	if errors.Is(err, apperrors.ErrAlreadySettled) {
		return fmt.Errorf("%w: movement %s already terminal", apperrors.ErrInvalidTransition, movementID)
	}
	if err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// FailMovement is the operator path that fails a pending movement. A
// reserved withdrawal debit is intentionally not refunded here.
func (r *PgxMovementRepository) FailMovement(ctx context.Context, movementID, reason string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	_, err = r.claimPending(ctx, tx, movementID, domain.MovementFailed, "Failed: "+reason, time.Now().UTC())
	if errors.Is(err, apperrors.ErrAlreadySettled) {
		return fmt.Errorf("%w: movement %s already terminal", apperrors.ErrInvalidTransition, movementID)
	}
	if err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}
