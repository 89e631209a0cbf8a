package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/traderiser/wallet-backend/internal/apperrors"
	"github.com/traderiser/wallet-backend/internal/core/domain"
	portsrepo "github.com/traderiser/wallet-backend/internal/core/ports/repositories"
	"github.com/traderiser/wallet-backend/internal/utils/syncing"
)

// Ledger entry reason recorded for mirror rewrites triggered by another
// wallet's write.
const syncReason = "balance_sync"

type PgxWalletRepository struct {
	BaseRepository
}

// newPgxWalletRepository creates a new repository for wallet and ledger data.
func newPgxWalletRepository(pool *pgxpool.Pool) portsrepo.WalletRepositoryWithTx {
	return &PgxWalletRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.WalletRepositoryWithTx = (*PgxWalletRepository)(nil)

const walletColumns = `w.wallet_id, w.account_id, w.wallet_type, w.currency_code, w.balance,
	       w.created_at, w.created_by, w.last_updated_at, w.last_updated_by`

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(
		&w.WalletID,
		&w.AccountID,
		&w.WalletType,
		&w.CurrencyCode,
		&w.Balance,
		&w.CreatedAt,
		&w.CreatedBy,
		&w.LastUpdatedAt,
		&w.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan wallet row", err)
	}
	return &w, nil
}

// FindWalletByID retrieves a wallet by its id.
func (r *PgxWalletRepository) FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets w WHERE w.wallet_id = $1;`
	return scanWallet(r.Pool.QueryRow(ctx, query, walletID))
}

// FindWalletsByUserID retrieves every wallet of the user across all accounts.
func (r *PgxWalletRepository) FindWalletsByUserID(ctx context.Context, userID string) ([]domain.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets w
		JOIN accounts a ON a.account_id = w.account_id
		WHERE a.user_id = $1
		ORDER BY w.wallet_id;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query wallets for user "+userID, err)
	}
	defer rows.Close()
	return collectWallets(rows, "user "+userID)
}

// FindWalletForAccount locates the wallet of one account by type and currency.
func (r *PgxWalletRepository) FindWalletForAccount(ctx context.Context, accountID string, walletType domain.WalletType, currencyCode string) (*domain.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets w
		WHERE w.account_id = $1 AND w.wallet_type = $2 AND w.currency_code = $3;
	`
	return scanWallet(r.Pool.QueryRow(ctx, query, accountID, walletType, currencyCode))
}

func collectWallets(rows pgx.Rows, scope string) ([]domain.Wallet, error) {
	wallets := []domain.Wallet{}
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating wallet rows for "+scope, err)
	}
	return wallets, nil
}

// LockUserWallets loads and row-locks every wallet of the user together with
// the owning accounts. Deterministic lock order avoids deadlocks between
// concurrent settlements of the same user.
func (r *PgxWalletRepository) LockUserWallets(ctx context.Context, tx pgx.Tx, userID string) ([]domain.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets w
		JOIN accounts a ON a.account_id = w.account_id
		WHERE a.user_id = $1
		ORDER BY w.wallet_id
		FOR UPDATE OF w, a;
	`
	rows, err := tx.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock wallets for user "+userID, err)
	}
	defer rows.Close()
	return collectWallets(rows, "user "+userID)
}

// WriteBalanceInTx writes an absolute balance to one locked wallet, records
// the ledger entry, and rewrites the sibling mirrors and account balances
// from the propagation plan. The wallets slice must come from LockUserWallets
// in the same transaction. A wallet whose stored value already equals the
// target is left untouched and gets no ledger entry.
func (r *PgxWalletRepository) WriteBalanceInTx(ctx context.Context, tx pgx.Tx, walletID string, newBalance decimal.Decimal, reason, reference string, wallets []domain.Wallet, rates syncing.RateSource) error {
	var ref *domain.Wallet
	for i := range wallets {
		if wallets[i].WalletID == walletID {
			ref = &wallets[i]
			break
		}
	}
	if ref == nil {
		return fmt.Errorf("%w: wallet %s not in locked set", apperrors.ErrNotFound, walletID)
	}

	plan, err := syncing.BuildPlan(walletID, newBalance, ref.CurrencyCode, wallets, rates, nil)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	walletUpdate := `
		UPDATE wallets SET balance = $2, last_updated_at = $3 WHERE wallet_id = $1;
	`
	entryInsert := `
		INSERT INTO ledger_entries (entry_id, wallet_id, amount, balance_after, reason, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`

	if !ref.Balance.Equal(newBalance) {
		batch.Queue(walletUpdate, walletID, newBalance, now)
		batch.Queue(entryInsert, uuid.NewString(), walletID, newBalance.Sub(ref.Balance), newBalance, reason, reference, now)
	}

	balanceBefore := make(map[string]decimal.Decimal, len(wallets))
	for _, w := range wallets {
		balanceBefore[w.WalletID] = w.Balance
	}
	for wid, target := range plan.WalletBalances {
		batch.Queue(walletUpdate, wid, target, now)
		batch.Queue(entryInsert, uuid.NewString(), wid, target.Sub(balanceBefore[wid]), target, syncReason, reference, now)
	}

	accountUpdate := `
		UPDATE accounts SET balance = $2, last_updated_at = $3 WHERE account_id = $1;
	`
	for accountID, target := range plan.AccountBalances {
		batch.Queue(accountUpdate, accountID, target, now)
	}

	if batch.Len() == 0 {
		return nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to apply balance write for wallet "+walletID, err)
	}
	return nil
}

// SetWalletBalance writes an absolute balance in its own transaction,
// locking the user's wallet set first so the mirror propagation observes a
// consistent snapshot.
func (r *PgxWalletRepository) SetWalletBalance(ctx context.Context, walletID string, newBalance decimal.Decimal, reason, reference string, rates syncing.RateSource) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var userID string
	ownerQuery := `
		SELECT a.user_id
		FROM wallets w
		JOIN accounts a ON a.account_id = w.account_id
		WHERE w.wallet_id = $1;
	`
	if err := tx.QueryRow(ctx, ownerQuery, walletID).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to resolve owner of wallet "+walletID, err)
	}

	wallets, err := r.LockUserWallets(ctx, tx, userID)
	if err != nil {
		return err
	}
	if err := r.WriteBalanceInTx(ctx, tx, walletID, newBalance, reason, reference, wallets, rates); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// ListLedgerEntries retrieves the newest ledger entries of a wallet.
func (r *PgxWalletRepository) ListLedgerEntries(ctx context.Context, walletID string, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT entry_id, wallet_id, amount, balance_after, reason, reference, created_at
		FROM ledger_entries
		WHERE wallet_id = $1
		ORDER BY created_at DESC, entry_id DESC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, walletID, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query ledger entries for wallet "+walletID, err)
	}
	defer rows.Close()

	entries := []domain.LedgerEntry{}
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(
			&e.EntryID,
			&e.WalletID,
			&e.Amount,
			&e.BalanceAfter,
			&e.Reason,
			&e.Reference,
			&e.CreatedAt,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger entry row", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating ledger entry rows for wallet "+walletID, err)
	}
	return entries, nil
}
