package dto

import (
	"github.com/finhub/ledgerd/internal/core/domain"
	"github.com/finhub/ledgerd/internal/utils/money"
)

// ToAccountResponse converts a domain.Account to its response DTO, rendering
// the derived balance at the currency's scale.
func ToAccountResponse(a domain.Account, decimals uint8) AccountResponse {
	return AccountResponse{
		ID:                        a.ID,
		OwnerID:                   a.OwnerID,
		Type:                      a.Type,
		State:                     a.State,
		CurrencyCode:              a.CurrencyCode,
		PostedDebitBalance:        a.PostedDebitBalance,
		PendingDebitBalance:       a.PendingDebitBalance,
		PostedCreditBalance:       a.PostedCreditBalance,
		PendingCreditBalance:      a.PendingCreditBalance,
		Balance:                   money.FromMinorUnits(a.Balance(), decimals),
		TimestampLastJournalEntry: a.TimestampLastJournalEntry,
		CreatedAt:                 a.CreatedAt,
	}
}

// ToJournalEntryResponse converts a domain.JournalEntry to its response DTO.
func ToJournalEntryResponse(e domain.JournalEntry, decimals uint8) JournalEntryResponse {
	return JournalEntryResponse{
		ID:                e.ID,
		OwnerID:           e.OwnerID,
		CurrencyCode:      e.CurrencyCode,
		Amount:            money.FromMinorUnits(e.Amount, decimals),
		AmountMinorUnits:  e.Amount,
		DebitedAccountID:  e.DebitedAccountID,
		CreditedAccountID: e.CreditedAccountID,
		Pending:           e.Pending,
		Timestamp:         e.Timestamp,
	}
}
