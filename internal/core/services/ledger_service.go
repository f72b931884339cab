package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finhub/ledgerd/internal/apperrors"
	"github.com/finhub/ledgerd/internal/core/domain"
	portsrepo "github.com/finhub/ledgerd/internal/core/ports/repositories"
	portssvc "github.com/finhub/ledgerd/internal/core/ports/services"
	"github.com/finhub/ledgerd/internal/dto"
	"github.com/finhub/ledgerd/internal/middleware"
	"github.com/finhub/ledgerd/internal/utils/money"
)

// ledgerService is the Balance Ledger. It owns the invariant that account
// balances evolve only through journal-entry application: every mutation
// flows through the repository's atomic balance-delta primitive, and the
// debit and credit legs of an entry always apply together.
type ledgerService struct {
	accountRepo portsrepo.AccountRepository
	entryRepo   portsrepo.JournalEntryRepository
	currencySvc portssvc.CurrencySvcFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(accountRepo portsrepo.AccountRepository, entryRepo portsrepo.JournalEntryRepository, currencySvc portssvc.CurrencySvcFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		currencySvc: currencySvc,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// CreateAccounts creates the given accounts. Each account either fully exists
// afterwards or does not exist at all; the batch itself is not transactional.
func (s *ledgerService) CreateAccounts(ctx context.Context, reqs []dto.CreateAccountRequest) ([]string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	ids := make([]string, 0, len(reqs))
	for _, req := range reqs {
		currency, err := s.currencySvc.GetCurrencyByCode(ctx, req.CurrencyCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown currency %s", apperrors.ErrValidation, req.CurrencyCode)
			}
			return nil, fmt.Errorf("failed to resolve currency %s: %w", req.CurrencyCode, err)
		}

		id := req.ID
		if id == "" {
			id = uuid.NewString()
		}

		now := time.Now().UTC()
		account := domain.Account{
			ID:           id,
			OwnerID:      req.OwnerID,
			Type:         req.Type,
			State:        domain.Active,
			CurrencyCode: req.CurrencyCode,
			CreatedAt:    now,
		}

		if req.OpeningBalance != "" {
			opening, err := money.ToMinorUnits(req.OpeningBalance, currency.Decimals)
			if err != nil {
				return nil, fmt.Errorf("opening balance for account %s: %w", id, err)
			}
			if opening < 0 {
				return nil, fmt.Errorf("%w: opening balance must be non-negative", apperrors.ErrValidation)
			}
			// Seed the posted side of the account's normal balance.
			if account.DebitNormal() {
				account.PostedDebitBalance = opening
			} else {
				account.PostedCreditBalance = opening
			}
		}

		if err := account.Validate(); err != nil {
			return nil, err
		}

		if err := s.accountRepo.InsertAccountIfAbsent(ctx, account); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				return nil, fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, id)
			}
			logger.Error("Failed to insert account", slog.String("account_id", id), slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to create account %s: %w", id, err)
		}

		logger.Info("Account created", slog.String("account_id", id), slog.String("owner_id", req.OwnerID), slog.String("type", string(req.Type)))
		ids = append(ids, id)
	}

	return ids, nil
}

// CreateJournalEntries posts the given entries in order. Each entry applies
// its debit and credit legs atomically; a failed entry is never half-applied.
func (s *ledgerService) CreateJournalEntries(ctx context.Context, reqs []dto.CreateJournalEntryRequest) ([]string, error) {
	ids := make([]string, 0, len(reqs))
	for _, req := range reqs {
		id, err := s.postJournalEntry(ctx, req)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *ledgerService) postJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	currency, err := s.currencySvc.GetCurrencyByCode(ctx, req.CurrencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: unknown currency %s", apperrors.ErrValidation, req.CurrencyCode)
		}
		return "", fmt.Errorf("failed to resolve currency %s: %w", req.CurrencyCode, err)
	}

	amount, err := money.ToMinorUnits(req.Amount, currency.Decimals)
	if err != nil {
		return "", err
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	entry := domain.JournalEntry{
		ID:                id,
		OwnerID:           req.OwnerID,
		CurrencyCode:      req.CurrencyCode,
		Amount:            amount,
		DebitedAccountID:  req.DebitedAccountID,
		CreditedAccountID: req.CreditedAccountID,
		Pending:           req.Pending,
		Timestamp:         time.Now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		return "", err
	}

	if err := s.checkEntryAccounts(ctx, entry); err != nil {
		return "", err
	}

	if err := s.entryRepo.SaveJournalEntry(ctx, entry, entry.Deltas(), nil); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return "", fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, id)
		}
		logger.Error("Failed to save journal entry", slog.String("entry_id", id), slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to save journal entry %s: %w", id, err)
	}

	logger.Info("Journal entry posted",
		slog.String("entry_id", id),
		slog.String("debited_account_id", entry.DebitedAccountID),
		slog.String("credited_account_id", entry.CreditedAccountID),
		slog.Int64("amount", amount),
		slog.Bool("pending", entry.Pending))
	return id, nil
}

// checkEntryAccounts validates both legs before any mutation: the accounts
// exist, are active and carry the entry's currency.
func (s *ledgerService) checkEntryAccounts(ctx context.Context, entry domain.JournalEntry) error {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, []string{entry.DebitedAccountID, entry.CreditedAccountID})
	if err != nil {
		return fmt.Errorf("failed to fetch accounts for journal entry: %w", err)
	}

	for _, accountID := range []string{entry.DebitedAccountID, entry.CreditedAccountID} {
		account, found := accounts[accountID]
		if !found {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		if account.State != domain.Active {
			return fmt.Errorf("%w: account %s is %s", apperrors.ErrAccountInactive, accountID, account.State)
		}
		if account.CurrencyCode != entry.CurrencyCode {
			return fmt.Errorf("%w: account %s is %s, entry is %s", apperrors.ErrCurrencyMismatch, accountID, account.CurrencyCode, entry.CurrencyCode)
		}
	}
	return nil
}

func (s *ledgerService) GetAccountsByIDs(ctx context.Context, ids []string) ([]dto.AccountResponse, error) {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	responses := make([]dto.AccountResponse, 0, len(accounts))
	for _, id := range ids {
		account, found := accounts[id]
		if !found {
			continue
		}
		resp, err := s.toAccountResponse(ctx, account)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *ledgerService) GetAccountsByOwnerID(ctx context.Context, ownerID string) ([]dto.AccountResponse, error) {
	accounts, err := s.accountRepo.FindAccountsByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts for owner %s: %w", ownerID, err)
	}

	responses := make([]dto.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		resp, err := s.toAccountResponse(ctx, account)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *ledgerService) toAccountResponse(ctx context.Context, account domain.Account) (dto.AccountResponse, error) {
	currency, err := s.currencySvc.GetCurrencyByCode(ctx, account.CurrencyCode)
	if err != nil {
		return dto.AccountResponse{}, fmt.Errorf("failed to resolve currency %s: %w", account.CurrencyCode, err)
	}
	return dto.ToAccountResponse(account, currency.Decimals), nil
}

func (s *ledgerService) GetJournalEntriesByAccountID(ctx context.Context, accountID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, nextToken, err := s.entryRepo.FindEntriesByAccountID(ctx, accountID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve entries for account %s: %w", accountID, err)
	}

	responses := make([]dto.JournalEntryResponse, len(entries))
	for i, entry := range entries {
		currency, err := s.currencySvc.GetCurrencyByCode(ctx, entry.CurrencyCode)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve currency %s: %w", entry.CurrencyCode, err)
		}
		responses[i] = dto.ToJournalEntryResponse(entry, currency.Decimals)
	}

	return &dto.ListEntriesResponse{Entries: responses, NextToken: nextToken}, nil
}

// SetAccountsState transitions every listed account. Deleted accounts are
// terminal; the repository rejects any transition out of them.
func (s *ledgerService) SetAccountsState(ctx context.Context, ids []string, state domain.AccountState) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	switch state {
	case domain.Active, domain.Inactive, domain.Deleted:
	default:
		return fmt.Errorf("%w: unknown account state %q", apperrors.ErrValidation, state)
	}

	now := time.Now().UTC()
	for _, id := range ids {
		if err := s.accountRepo.UpdateAccountState(ctx, id, state, now); err != nil {
			return fmt.Errorf("failed to set state of account %s: %w", id, err)
		}
		logger.Info("Account state updated", slog.String("account_id", id), slog.String("state", string(state)))
	}
	return nil
}
