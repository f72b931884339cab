package services

import (
	"context"

	"github.com/finhub/ledgerd/internal/core/domain"
	"github.com/finhub/ledgerd/internal/dto"
)

// LedgerSvcFacade is the Balance Ledger: it exclusively owns mutation of
// account balance fields, which evolve only through journal-entry application.
type LedgerSvcFacade interface {
	// CreateAccounts creates the given accounts and returns their ids in
	// request order. Creation is all-or-nothing per account, not per batch.
	CreateAccounts(ctx context.Context, reqs []dto.CreateAccountRequest) ([]string, error)

	// CreateJournalEntries posts the given entries and returns their ids in
	// request order.
	CreateJournalEntries(ctx context.Context, reqs []dto.CreateJournalEntryRequest) ([]string, error)

	// GetAccountsByIDs returns the accounts for the given ids; unknown ids are
	// simply absent.
	GetAccountsByIDs(ctx context.Context, ids []string) ([]dto.AccountResponse, error)

	// GetAccountsByOwnerID returns all accounts belonging to an owner.
	GetAccountsByOwnerID(ctx context.Context, ownerID string) ([]dto.AccountResponse, error)

	// GetJournalEntriesByAccountID returns the account's entries in insertion
	// order with token pagination.
	GetJournalEntriesByAccountID(ctx context.Context, accountID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// SetAccountsState transitions every listed account to the given state.
	SetAccountsState(ctx context.Context, ids []string, state domain.AccountState) error
}
