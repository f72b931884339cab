package repositories

import (
	"context"

	"github.com/finhub/ledgerd/internal/core/domain"
)

// JournalEntryReader defines read operations for journal entries.
type JournalEntryReader interface {
	// FindEntryByID retrieves a specific journal entry.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntriesByAccountID retrieves entries where the account is either the
	// debited or credited party, in insertion order, using token-based
	// pagination. It returns the entries, a token for the next page, and an
	// error. An account with no entries yields an empty slice.
	FindEntriesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// JournalEntryWriter defines write operations for journal entries.
type JournalEntryWriter interface {
	// SaveJournalEntry persists the entry and applies its two balance legs as
	// one atomic write; a failure leaves no trace of the entry. It reports
	// apperrors.ErrDuplicate when the entry id already exists and
	// apperrors.ErrRepoConflict when expectedVersions no longer hold.
	SaveJournalEntry(ctx context.Context, entry domain.JournalEntry, deltas map[string]domain.BalanceDelta, expectedVersions map[string]int64) error
}

// JournalEntryRepository combines all journal-entry repository operations.
type JournalEntryRepository interface {
	JournalEntryReader
	JournalEntryWriter
}
