package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finhub/ledgerd/internal/apperrors"
	"github.com/finhub/ledgerd/internal/core/domain"
)

func TestJournalEntryValidate(t *testing.T) {
	valid := domain.JournalEntry{
		ID:                "e-1",
		CurrencyCode:      "EUR",
		Amount:            100,
		DebitedAccountID:  "acc-a",
		CreditedAccountID: "acc-b",
	}
	assert.NoError(t, valid.Validate())

	testCases := []struct {
		name   string
		mutate func(e *domain.JournalEntry)
	}{
		{"missing id", func(e *domain.JournalEntry) { e.ID = "" }},
		{"zero amount", func(e *domain.JournalEntry) { e.Amount = 0 }},
		{"negative amount", func(e *domain.JournalEntry) { e.Amount = -1 }},
		{"missing debited account", func(e *domain.JournalEntry) { e.DebitedAccountID = "" }},
		{"missing credited account", func(e *domain.JournalEntry) { e.CreditedAccountID = "" }},
		{"same account both legs", func(e *domain.JournalEntry) { e.CreditedAccountID = e.DebitedAccountID }},
		{"missing currency", func(e *domain.JournalEntry) { e.CurrencyCode = "" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entry := valid
			tc.mutate(&entry)
			assert.ErrorIs(t, entry.Validate(), apperrors.ErrValidation)
		})
	}
}

func TestJournalEntryDeltas(t *testing.T) {
	entry := domain.JournalEntry{
		ID:                "e-1",
		Amount:            250,
		DebitedAccountID:  "acc-a",
		CreditedAccountID: "acc-b",
	}

	posted := entry.Deltas()
	assert.Equal(t, domain.BalanceDelta{PostedDebit: 250}, posted["acc-a"])
	assert.Equal(t, domain.BalanceDelta{PostedCredit: 250}, posted["acc-b"])

	entry.Pending = true
	pending := entry.Deltas()
	assert.Equal(t, domain.BalanceDelta{PendingDebit: 250}, pending["acc-a"])
	assert.Equal(t, domain.BalanceDelta{PendingCredit: 250}, pending["acc-b"])
}
