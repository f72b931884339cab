package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finhub/ledgerd/internal/apperrors"
	"github.com/finhub/ledgerd/internal/core/domain"
	portsrepo "github.com/finhub/ledgerd/internal/core/ports/repositories"
	"github.com/finhub/ledgerd/internal/utils/pagination"
)

type PgxJournalEntryRepository struct {
	BaseRepository
}

// newPgxJournalEntryRepository creates a new repository for journal entries.
func newPgxJournalEntryRepository(pool *pgxpool.Pool) portsrepo.JournalEntryRepository {
	return &PgxJournalEntryRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxJournalEntryRepository implements portsrepo.JournalEntryRepository
var _ portsrepo.JournalEntryRepository = (*PgxJournalEntryRepository)(nil)

const entryColumns = `entry_id, owner_id, currency_code, amount,
	debited_account_id, credited_account_id, pending, entry_timestamp, seq`

func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
	var entry domain.JournalEntry
	err := row.Scan(
		&entry.ID,
		&entry.OwnerID,
		&entry.CurrencyCode,
		&entry.Amount,
		&entry.DebitedAccountID,
		&entry.CreditedAccountID,
		&entry.Pending,
		&entry.Timestamp,
		&entry.Seq,
	)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	return entry, nil
}

// insertEntryTx persists a journal entry inside the caller's transaction.
func insertEntryTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (entry_id, owner_id, currency_code, amount,
			debited_account_id, credited_account_id, pending, entry_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := tx.Exec(ctx, query,
		entry.ID,
		entry.OwnerID,
		entry.CurrencyCode,
		entry.Amount,
		entry.DebitedAccountID,
		entry.CreditedAccountID,
		entry.Pending,
		entry.Timestamp,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: journal entry with ID %s already exists", apperrors.ErrDuplicate, entry.ID)
		}
		return fmt.Errorf("failed to insert journal entry %s: %w", entry.ID, err)
	}
	return nil
}

// SaveJournalEntry persists the entry and applies its balance legs as one
// transaction.
func (r *PgxJournalEntryRepository) SaveJournalEntry(ctx context.Context, entry domain.JournalEntry, deltas map[string]domain.BalanceDelta, expectedVersions map[string]int64) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertEntryTx(ctx, tx, entry); err != nil {
		return err
	}
	if err := applyDeltasTx(ctx, tx, deltas, expectedVersions, entry.Timestamp); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// FindEntryByID retrieves a specific journal entry.
func (r *PgxJournalEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`

	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}
	return &entry, nil
}

// FindEntriesByAccountID lists entries touching the account in insertion
// order, fetching one row past the limit to decide whether a next page
// exists.
func (r *PgxJournalEntryRepository) FindEntriesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	afterSeq := int64(0)
	if nextToken != nil && *nextToken != "" {
		seq, err := pagination.DecodeSeqToken(*nextToken)
		if err != nil {
			return nil, nil, err
		}
		afterSeq = seq
	}

	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE (debited_account_id = $1 OR credited_account_id = $1) AND seq > $2
		ORDER BY seq
		LIMIT $3;
	`
	rows, err := r.Pool.Query(ctx, query, accountID, afterSeq, limit+1)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query entries for account %s: %w", accountID, err)
	}
	defer rows.Close()

	entries := make([]domain.JournalEntry, 0, limit)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan journal entry row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read journal entry rows: %w", err)
	}

	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		t := pagination.EncodeSeqToken(entries[limit-1].Seq)
		token = &t
	}
	return entries, token, nil
}
