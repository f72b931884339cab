package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finhub/ledgerd/internal/apperrors"
	"github.com/finhub/ledgerd/internal/core/domain"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// applyDeltasTx locks the affected accounts, verifies the expected versions
// and writes the new balance fields, all inside the caller's transaction.
// Accounts are locked in sorted id order to keep concurrent writers
// deadlock-free. expectedVersions may name accounts with no delta; those are
// locked and verified but not written, which pins a balance the caller's
// admission check read.
func applyDeltasTx(ctx context.Context, tx pgx.Tx, deltas map[string]domain.BalanceDelta, expectedVersions map[string]int64, now time.Time) error {
	seen := make(map[string]bool, len(deltas)+len(expectedVersions))
	ids := make([]string, 0, len(deltas)+len(expectedVersions))
	for id := range deltas {
		seen[id] = true
		ids = append(ids, id)
	}
	for id := range expectedVersions {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	query := `
		SELECT account_id, owner_id, account_type, state, currency_code,
		       posted_debit_balance, pending_debit_balance, posted_credit_balance, pending_credit_balance,
		       version, timestamp_last_journal_entry, created_at
		FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to lock accounts: %w", err)
	}
	accounts := make(map[string]domain.Account, len(ids))
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			rows.Close()
			return err
		}
		accounts[account.ID] = account
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read locked accounts: %w", err)
	}

	batch := &pgx.Batch{}
	updates := 0
	for _, id := range ids {
		account, found := accounts[id]
		if !found {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		if expected, checked := expectedVersions[id]; checked && account.Version != expected {
			return fmt.Errorf("%w: account %s moved from version %d", apperrors.ErrRepoConflict, id, expected)
		}
		delta, mutated := deltas[id]
		if !mutated {
			continue
		}
		if err := account.ApplyDelta(delta, now); err != nil {
			return err
		}
		updates++
		batch.Queue(`
			UPDATE accounts
			SET posted_debit_balance = $2, pending_debit_balance = $3,
			    posted_credit_balance = $4, pending_credit_balance = $5,
			    version = $6, timestamp_last_journal_entry = $7
			WHERE account_id = $1;
		`, account.ID,
			account.PostedDebitBalance, account.PendingDebitBalance,
			account.PostedCreditBalance, account.PendingCreditBalance,
			account.Version, account.TimestampLastJournalEntry)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < updates; i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to update account balances: %w", err)
		}
	}
	return nil
}

// scanAccount reads one accounts row in column order.
func scanAccount(row pgx.Row) (domain.Account, error) {
	var account domain.Account
	var lastEntry sql.NullTime
	err := row.Scan(
		&account.ID,
		&account.OwnerID,
		&account.Type,
		&account.State,
		&account.CurrencyCode,
		&account.PostedDebitBalance,
		&account.PendingDebitBalance,
		&account.PostedCreditBalance,
		&account.PendingCreditBalance,
		&account.Version,
		&lastEntry,
		&account.CreatedAt,
	)
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to scan account row: %w", err)
	}
	if lastEntry.Valid {
		account.TimestampLastJournalEntry = lastEntry.Time
	}
	return account, nil
}
