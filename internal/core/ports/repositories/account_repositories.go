package repositories

import (
	"context"
	"time"

	"github.com/finhub/ledgerd/internal/core/domain"
)

// AccountReader defines read operations for account data. Batch lookups
// return empty collections, never errors, when nothing matches.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs. Missing IDs
	// are simply absent from the result map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// FindAccountsByOwnerID retrieves all accounts belonging to an owner.
	FindAccountsByOwnerID(ctx context.Context, ownerID string) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// InsertAccountIfAbsent atomically persists a new account. It reports
	// apperrors.ErrDuplicate when the id is already taken; the existence
	// check and insert are a single step, never two.
	InsertAccountIfAbsent(ctx context.Context, account domain.Account) error

	// UpdateAccountState transitions an account's lifecycle state. Deleted is
	// terminal: transitions out of it report apperrors.ErrAccountInactive.
	UpdateAccountState(ctx context.Context, accountID string, state domain.AccountState, now time.Time) error

	// ApplyBalanceDeltas is the only sanctioned way to mutate balance fields.
	// All deltas apply atomically or not at all. When expectedVersions carries
	// an entry for an account, the write is conditional on that version and
	// reports apperrors.ErrRepoConflict on mismatch without mutating anything.
	ApplyBalanceDeltas(ctx context.Context, deltas map[string]domain.BalanceDelta, expectedVersions map[string]int64, now time.Time) error
}

// AccountRepository combines all account-related repository operations.
type AccountRepository interface {
	AccountReader
	AccountWriter
}
