package dto

import (
	"time"
)

// CreateJournalEntryRequest defines the data needed to post a journal entry.
// Amount is a decimal string converted to minor units by the ledger using the
// registered scale of CurrencyCode.
type CreateJournalEntryRequest struct {
	ID                string  `json:"id"`
	OwnerID           *string `json:"ownerId"`
	CurrencyCode      string  `json:"currencyCode" binding:"required"`
	Amount            string  `json:"amount" binding:"required,amount"`
	DebitedAccountID  string  `json:"debitedAccountId" binding:"required"`
	CreditedAccountID string  `json:"creditedAccountId" binding:"required"`
	Pending           bool    `json:"pending"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	ID                string    `json:"id"`
	OwnerID           *string   `json:"ownerId,omitempty"`
	CurrencyCode      string    `json:"currencyCode"`
	Amount            string    `json:"amount"`
	AmountMinorUnits  int64     `json:"amountMinorUnits"`
	DebitedAccountID  string    `json:"debitedAccountId"`
	CreditedAccountID string    `json:"creditedAccountId"`
	Pending           bool      `json:"pending"`
	Timestamp         time.Time `json:"timestamp"`
}

// CreateJournalEntriesResponse returns the ids of the created entries in
// request order.
type CreateJournalEntriesResponse struct {
	IDs []string `json:"ids"`
}

// ListEntriesParams defines query parameters for listing an account's entries.
type ListEntriesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListEntriesResponse wraps a page of entries with the token for the next one.
type ListEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}
