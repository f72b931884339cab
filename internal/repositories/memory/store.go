// Package memory is an in-process adapter for every repository port. It
// mirrors the pgsql adapter's semantics, including version conflicts and
// duplicate detection, behind a single mutex so tests and embedded
// deployments exercise the same contracts.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/finhub/ledgerd/internal/apperrors"
	"github.com/finhub/ledgerd/internal/core/domain"
	portsrepo "github.com/finhub/ledgerd/internal/core/ports/repositories"
	"github.com/finhub/ledgerd/internal/utils/pagination"
)

// Store holds all ledger state in process. The zero value is not usable; use
// NewStore.
type Store struct {
	mu           sync.Mutex
	accounts     map[string]domain.Account
	entries      map[string]domain.JournalEntry
	entryOrder   []string
	reservations map[string]domain.Reservation
	currencies   map[string]domain.Currency
	nextSeq      int64
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]domain.Account),
		entries:      make(map[string]domain.JournalEntry),
		reservations: make(map[string]domain.Reservation),
		currencies:   make(map[string]domain.Currency),
	}
}

// NewRepositoryProvider wires a single store behind every repository port.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     store,
		JournalRepo:     store,
		ReservationRepo: store,
		CurrencyRepo:    store,
	}
}

var (
	_ portsrepo.AccountRepository      = (*Store)(nil)
	_ portsrepo.JournalEntryRepository = (*Store)(nil)
	_ portsrepo.ReservationRepository  = (*Store)(nil)
	_ portsrepo.CurrencyRepository     = (*Store)(nil)
)

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, found := s.accounts[accountID]
	if !found {
		return nil, apperrors.ErrNotFound
	}
	return &account, nil
}

func (s *Store) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if account, found := s.accounts[id]; found {
			result[id] = account
		}
	}
	return result, nil
}

func (s *Store) FindAccountsByOwnerID(ctx context.Context, ownerID string) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make([]domain.Account, 0)
	for _, account := range s.accounts {
		if account.OwnerID == ownerID {
			accounts = append(accounts, account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].ID < accounts[j].ID
		}
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (s *Store) InsertAccountIfAbsent(ctx context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.ID]; exists {
		return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, account.ID)
	}
	s.accounts[account.ID] = account
	return nil
}

func (s *Store) UpdateAccountState(ctx context.Context, accountID string, state domain.AccountState, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, found := s.accounts[accountID]
	if !found {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	if account.State == domain.Deleted && state != domain.Deleted {
		return fmt.Errorf("%w: account %s is deleted", apperrors.ErrAccountInactive, accountID)
	}
	account.State = state
	// State transitions bump the version so pinned admission reads see them.
	account.Version++
	s.accounts[accountID] = account
	return nil
}

func (s *Store) ApplyBalanceDeltas(ctx context.Context, deltas map[string]domain.BalanceDelta, expectedVersions map[string]int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyDeltasLocked(deltas, expectedVersions, now)
}

// applyDeltasLocked verifies and applies all deltas, or none. Callers hold
// the store mutex. expectedVersions may name accounts with no delta; those
// are verified but not mutated.
func (s *Store) applyDeltasLocked(deltas map[string]domain.BalanceDelta, expectedVersions map[string]int64, now time.Time) error {
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

	staged := make(map[string]domain.Account, len(ids))
	for _, id := range ids {
		account, found := s.accounts[id]
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
		staged[id] = account
	}
	for id, account := range staged {
		s.accounts[id] = account
	}
	return nil
}

func (s *Store) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, found := s.entries[entryID]
	if !found {
		return nil, apperrors.ErrNotFound
	}
	return &entry, nil
}

func (s *Store) FindEntriesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	afterSeq := int64(0)
	if nextToken != nil && *nextToken != "" {
		seq, err := pagination.DecodeSeqToken(*nextToken)
		if err != nil {
			return nil, nil, err
		}
		afterSeq = seq
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]domain.JournalEntry, 0, limit)
	for _, id := range s.entryOrder {
		entry := s.entries[id]
		if entry.Seq <= afterSeq {
			continue
		}
		if entry.DebitedAccountID != accountID && entry.CreditedAccountID != accountID {
			continue
		}
		entries = append(entries, entry)
		if len(entries) > limit {
			break
		}
	}

	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		t := pagination.EncodeSeqToken(entries[limit-1].Seq)
		token = &t
	}
	return entries, token, nil
}

func (s *Store) SaveJournalEntry(ctx context.Context, entry domain.JournalEntry, deltas map[string]domain.BalanceDelta, expectedVersions map[string]int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveEntryLocked(entry, deltas, expectedVersions)
}

func (s *Store) saveEntryLocked(entry domain.JournalEntry, deltas map[string]domain.BalanceDelta, expectedVersions map[string]int64) error {
	if _, exists := s.entries[entry.ID]; exists {
		return fmt.Errorf("%w: journal entry with ID %s already exists", apperrors.ErrDuplicate, entry.ID)
	}
	if err := s.applyDeltasLocked(deltas, expectedVersions, entry.Timestamp); err != nil {
		return err
	}
	s.nextSeq++
	entry.Seq = s.nextSeq
	s.entries[entry.ID] = entry
	s.entryOrder = append(s.entryOrder, entry.ID)
	return nil
}

func (s *Store) FindReservationByTransferID(ctx context.Context, transferID string) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, found := s.reservations[transferID]
	if !found {
		return nil, apperrors.ErrNotFound
	}
	return &res, nil
}

func (s *Store) SaveReservation(ctx context.Context, res domain.Reservation, entry domain.JournalEntry, deltas map[string]domain.BalanceDelta, expectedVersions map[string]int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reservations[res.TransferID]; exists {
		return fmt.Errorf("%w: transfer %s is already reserved", apperrors.ErrDuplicate, res.TransferID)
	}
	// The reservation references its pending entry; enforce it like the
	// storage foreign key does.
	if res.EntryID != entry.ID {
		return fmt.Errorf("%w: reservation %s references entry %s, got %s",
			apperrors.ErrValidation, res.TransferID, res.EntryID, entry.ID)
	}
	if err := s.saveEntryLocked(entry, deltas, expectedVersions); err != nil {
		return err
	}
	s.reservations[res.TransferID] = res
	return nil
}

func (s *Store) TransitionReservation(ctx context.Context, transferID string, from, to domain.ReservationState, payeeAccountID *string, entry *domain.JournalEntry, deltas map[string]domain.BalanceDelta, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, found := s.reservations[transferID]
	if !found {
		return fmt.Errorf("%w: reservation %s", apperrors.ErrNotFound, transferID)
	}
	if res.State != from {
		return fmt.Errorf("%w: reservation %s is no longer %s", apperrors.ErrRepoConflict, transferID, from)
	}

	if entry != nil {
		if err := s.saveEntryLocked(*entry, deltas, nil); err != nil {
			return err
		}
	} else if len(deltas) > 0 {
		if err := s.applyDeltasLocked(deltas, nil, now); err != nil {
			return err
		}
	}

	res.State = to
	if payeeAccountID != nil {
		res.PayeePositionAccountID = payeeAccountID
	}
	res.UpdatedAt = now
	s.reservations[transferID] = res
	return nil
}

func (s *Store) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	currency, found := s.currencies[code]
	if !found {
		return nil, apperrors.ErrNotFound
	}
	return &currency, nil
}

func (s *Store) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	currencies := make([]domain.Currency, 0, len(s.currencies))
	for _, currency := range s.currencies {
		currencies = append(currencies, currency)
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i].Code < currencies[j].Code })
	return currencies, nil
}

func (s *Store) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.currencies[currency.Code]; exists {
		return fmt.Errorf("%w: currency %s already exists", apperrors.ErrDuplicate, currency.Code)
	}
	s.currencies[currency.Code] = currency
	return nil
}
