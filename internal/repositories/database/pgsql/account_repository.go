package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finhub/ledgerd/internal/apperrors"
	"github.com/finhub/ledgerd/internal/core/domain"
	portsrepo "github.com/finhub/ledgerd/internal/core/ports/repositories"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepository {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepository
var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, owner_id, account_type, state, currency_code,
	posted_debit_balance, pending_debit_balance, posted_credit_balance, pending_credit_balance,
	version, timestamp_last_journal_entry, created_at`

// InsertAccountIfAbsent inserts a new account, relying on the primary key for
// the existence check so insert and check are one step.
func (r *PgxAccountRepository) InsertAccountIfAbsent(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (account_id, owner_id, account_type, state, currency_code,
			posted_debit_balance, pending_debit_balance, posted_credit_balance, pending_credit_balance,
			version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		account.ID,
		account.OwnerID,
		account.Type,
		account.State,
		account.CurrencyCode,
		account.PostedDebitBalance,
		account.PendingDebitBalance,
		account.PostedCreditBalance,
		account.PendingCreditBalance,
		account.Version,
		account.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, account.ID)
		}
		return fmt.Errorf("failed to save account %s: %w", account.ID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	account, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return &account, nil
}

// FindAccountsByIDs retrieves multiple accounts; missing IDs are absent from
// the result map.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`

	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by ids: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account, len(accountIDs))
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts[account.ID] = account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read account rows: %w", err)
	}
	return accounts, nil
}

// FindAccountsByOwnerID retrieves all accounts belonging to an owner.
func (r *PgxAccountRepository) FindAccountsByOwnerID(ctx context.Context, ownerID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 ORDER BY created_at, account_id;`

	rows, err := r.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read account rows: %w", err)
	}
	return accounts, nil
}

// UpdateAccountState transitions an account's lifecycle state under a row
// lock. Deleted is terminal.
func (r *PgxAccountRepository) UpdateAccountState(ctx context.Context, accountID string, state domain.AccountState, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var current domain.AccountState
	err = tx.QueryRow(ctx, `SELECT state FROM accounts WHERE account_id = $1 FOR UPDATE;`, accountID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		return fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}
	if current == domain.Deleted && state != domain.Deleted {
		return fmt.Errorf("%w: account %s is deleted", apperrors.ErrAccountInactive, accountID)
	}

	// State transitions bump the version so pinned admission reads see them.
	_, err = tx.Exec(ctx, `UPDATE accounts SET state = $2, version = version + 1 WHERE account_id = $1;`, accountID, state)
	if err != nil {
		return fmt.Errorf("failed to update state of account %s: %w", accountID, err)
	}
	return r.Commit(ctx, tx)
}

// ApplyBalanceDeltas applies all deltas in one transaction, or none at all.
func (r *PgxAccountRepository) ApplyBalanceDeltas(ctx context.Context, deltas map[string]domain.BalanceDelta, expectedVersions map[string]int64, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := applyDeltasTx(ctx, tx, deltas, expectedVersions, now); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}
