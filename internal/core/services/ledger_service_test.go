package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/finhub/ledgerd/internal/apperrors"
	"github.com/finhub/ledgerd/internal/core/domain"
	portssvc "github.com/finhub/ledgerd/internal/core/ports/services"
	"github.com/finhub/ledgerd/internal/core/services"
	"github.com/finhub/ledgerd/internal/dto"
	"github.com/finhub/ledgerd/internal/repositories/memory"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.Store
	ledger   portssvc.LedgerSvcFacade
	currency portssvc.CurrencySvcFacade
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	repos := memory.NewRepositoryProvider(s.store)
	s.currency = services.NewCurrencyService(repos.CurrencyRepo)
	s.ledger = services.NewLedgerService(repos.AccountRepo, repos.JournalRepo, s.currency)

	_, err := s.currency.CreateCurrency(s.ctx, dto.CreateCurrencyRequest{Code: "EUR", Decimals: 2})
	s.Require().NoError(err)
	_, err = s.currency.CreateCurrency(s.ctx, dto.CreateCurrencyRequest{Code: "JPY", Decimals: 0})
	s.Require().NoError(err)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) createAccount(id string, accType domain.AccountType, opening string) {
	_, err := s.ledger.CreateAccounts(s.ctx, []dto.CreateAccountRequest{{
		ID:             id,
		OwnerID:        "owner-1",
		Type:           accType,
		CurrencyCode:   "EUR",
		OpeningBalance: opening,
	}})
	s.Require().NoError(err)
}

func (s *LedgerServiceTestSuite) account(id string) domain.Account {
	account, err := s.store.FindAccountByID(s.ctx, id)
	s.Require().NoError(err)
	return *account
}

func (s *LedgerServiceTestSuite) TestCreateAccounts() {
	ids, err := s.ledger.CreateAccounts(s.ctx, []dto.CreateAccountRequest{
		{ID: "acc-pos", OwnerID: "owner-1", Type: domain.Position, CurrencyCode: "EUR"},
		{OwnerID: "owner-1", Type: domain.Liquidity, CurrencyCode: "EUR", OpeningBalance: "100.00"},
	})
	s.Require().NoError(err)
	s.Require().Len(ids, 2)
	s.Equal("acc-pos", ids[0])
	s.NotEmpty(ids[1])

	// Opening balance seeds the posted side of the normal balance.
	liquidity := s.account(ids[1])
	s.Equal(int64(10000), liquidity.PostedCreditBalance)
	s.Equal(int64(0), liquidity.PostedDebitBalance)
	s.Equal(int64(10000), liquidity.Balance())

	position := s.account("acc-pos")
	s.Equal(domain.Active, position.State)
	s.Equal(int64(0), position.Balance())
}

func (s *LedgerServiceTestSuite) TestCreateAccountDuplicateID() {
	s.createAccount("acc-1", domain.Position, "")
	_, err := s.ledger.CreateAccounts(s.ctx, []dto.CreateAccountRequest{{
		ID: "acc-1", OwnerID: "owner-1", Type: domain.Position, CurrencyCode: "EUR",
	}})
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *LedgerServiceTestSuite) TestCreateAccountUnknownCurrency() {
	_, err := s.ledger.CreateAccounts(s.ctx, []dto.CreateAccountRequest{{
		OwnerID: "owner-1", Type: domain.Position, CurrencyCode: "XXX",
	}})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestCreateJournalEntryMovesBothLegs() {
	s.createAccount("acc-a", domain.Settlement, "")
	s.createAccount("acc-b", domain.Settlement, "")

	ids, err := s.ledger.CreateJournalEntries(s.ctx, []dto.CreateJournalEntryRequest{{
		CurrencyCode:      "EUR",
		Amount:            "25.00",
		DebitedAccountID:  "acc-a",
		CreditedAccountID: "acc-b",
	}})
	s.Require().NoError(err)
	s.Require().Len(ids, 1)

	debited := s.account("acc-a")
	credited := s.account("acc-b")
	s.Equal(int64(2500), debited.PostedDebitBalance)
	s.Equal(int64(2500), credited.PostedCreditBalance)
	s.Equal(int64(1), debited.Version)
	s.Equal(int64(1), credited.Version)

	entry, err := s.store.FindEntryByID(s.ctx, ids[0])
	s.Require().NoError(err)
	s.Equal(int64(2500), entry.Amount)
	s.False(entry.Pending)
}

func (s *LedgerServiceTestSuite) TestCreateJournalEntryPending() {
	s.createAccount("acc-a", domain.Position, "")
	s.createAccount("acc-b", domain.HubMultilateralSettlement, "")

	_, err := s.ledger.CreateJournalEntries(s.ctx, []dto.CreateJournalEntryRequest{{
		CurrencyCode:      "EUR",
		Amount:            "10.00",
		DebitedAccountID:  "acc-a",
		CreditedAccountID: "acc-b",
		Pending:           true,
	}})
	s.Require().NoError(err)

	s.Equal(int64(1000), s.account("acc-a").PendingDebitBalance)
	s.Equal(int64(0), s.account("acc-a").PostedDebitBalance)
	s.Equal(int64(1000), s.account("acc-b").PendingCreditBalance)
}

func (s *LedgerServiceTestSuite) TestCreateJournalEntryInactiveAccount() {
	s.createAccount("acc-a", domain.Settlement, "")
	s.createAccount("acc-b", domain.Settlement, "")
	s.Require().NoError(s.ledger.SetAccountsState(s.ctx, []string{"acc-b"}, domain.Inactive))

	_, err := s.ledger.CreateJournalEntries(s.ctx, []dto.CreateJournalEntryRequest{{
		CurrencyCode:      "EUR",
		Amount:            "5.00",
		DebitedAccountID:  "acc-a",
		CreditedAccountID: "acc-b",
	}})
	s.ErrorIs(err, apperrors.ErrAccountInactive)

	// No half-applied leg.
	s.Equal(int64(0), s.account("acc-a").PostedDebitBalance)
}

func (s *LedgerServiceTestSuite) TestCreateJournalEntryCurrencyMismatch() {
	s.createAccount("acc-a", domain.Settlement, "")
	_, err := s.ledger.CreateAccounts(s.ctx, []dto.CreateAccountRequest{{
		ID: "acc-jpy", OwnerID: "owner-1", Type: domain.Settlement, CurrencyCode: "JPY",
	}})
	s.Require().NoError(err)

	_, err = s.ledger.CreateJournalEntries(s.ctx, []dto.CreateJournalEntryRequest{{
		CurrencyCode:      "EUR",
		Amount:            "5.00",
		DebitedAccountID:  "acc-a",
		CreditedAccountID: "acc-jpy",
	}})
	s.ErrorIs(err, apperrors.ErrCurrencyMismatch)
}

func (s *LedgerServiceTestSuite) TestCreateJournalEntryScaleRejected() {
	s.createAccount("acc-a", domain.Settlement, "")
	s.createAccount("acc-b", domain.Settlement, "")

	_, err := s.ledger.CreateJournalEntries(s.ctx, []dto.CreateJournalEntryRequest{{
		CurrencyCode:      "EUR",
		Amount:            "5.001",
		DebitedAccountID:  "acc-a",
		CreditedAccountID: "acc-b",
	}})
	s.ErrorIs(err, apperrors.ErrAmountFormat)
}

func (s *LedgerServiceTestSuite) TestGetAccountsByIDsSkipsMissing() {
	s.createAccount("acc-a", domain.Liquidity, "42.00")

	accounts, err := s.ledger.GetAccountsByIDs(s.ctx, []string{"acc-a", "no-such"})
	s.Require().NoError(err)
	s.Require().Len(accounts, 1)
	s.Equal("acc-a", accounts[0].ID)
	s.Equal("42.00", accounts[0].Balance)
}

func (s *LedgerServiceTestSuite) TestGetAccountsByOwnerID() {
	s.createAccount("acc-a", domain.Position, "")
	s.createAccount("acc-b", domain.Liquidity, "")

	accounts, err := s.ledger.GetAccountsByOwnerID(s.ctx, "owner-1")
	s.Require().NoError(err)
	s.Len(accounts, 2)

	none, err := s.ledger.GetAccountsByOwnerID(s.ctx, "owner-2")
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *LedgerServiceTestSuite) TestListEntriesPagination() {
	s.createAccount("acc-a", domain.Settlement, "")
	s.createAccount("acc-b", domain.Settlement, "")

	for i := 0; i < 5; i++ {
		_, err := s.ledger.CreateJournalEntries(s.ctx, []dto.CreateJournalEntryRequest{{
			CurrencyCode:      "EUR",
			Amount:            "1.00",
			DebitedAccountID:  "acc-a",
			CreditedAccountID: "acc-b",
		}})
		s.Require().NoError(err)
	}

	page1, err := s.ledger.GetJournalEntriesByAccountID(s.ctx, "acc-a", dto.ListEntriesParams{Limit: 2})
	s.Require().NoError(err)
	s.Len(page1.Entries, 2)
	s.Require().NotNil(page1.NextToken)

	page2, err := s.ledger.GetJournalEntriesByAccountID(s.ctx, "acc-a", dto.ListEntriesParams{Limit: 2, NextToken: page1.NextToken})
	s.Require().NoError(err)
	s.Len(page2.Entries, 2)
	s.Require().NotNil(page2.NextToken)

	page3, err := s.ledger.GetJournalEntriesByAccountID(s.ctx, "acc-a", dto.ListEntriesParams{Limit: 2, NextToken: page2.NextToken})
	s.Require().NoError(err)
	s.Len(page3.Entries, 1)
	s.Nil(page3.NextToken)

	// No overlap between pages.
	seen := map[string]bool{}
	for _, page := range [][]dto.JournalEntryResponse{page1.Entries, page2.Entries, page3.Entries} {
		for _, entry := range page {
			s.False(seen[entry.ID])
			seen[entry.ID] = true
		}
	}
}

func (s *LedgerServiceTestSuite) TestDeletedStateIsTerminal() {
	s.createAccount("acc-a", domain.Position, "")
	s.Require().NoError(s.ledger.SetAccountsState(s.ctx, []string{"acc-a"}, domain.Deleted))

	err := s.ledger.SetAccountsState(s.ctx, []string{"acc-a"}, domain.Active)
	s.ErrorIs(err, apperrors.ErrAccountInactive)
}
