package dto

import (
	"time"

	"github.com/finhub/ledgerd/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
// ID is optional: callers may assign their own (idempotency key) or let the
// server generate one. OpeningBalance, when supplied, seeds the posted side of
// the account's normal balance and must be non-negative.
type CreateAccountRequest struct {
	ID             string             `json:"id"`
	OwnerID        string             `json:"ownerId" binding:"required"`
	Type           domain.AccountType `json:"type" binding:"required,oneof=POSITION LIQUIDITY SETTLEMENT HUB_MULTILATERAL_SETTLEMENT HUB_RECONCILIATION"`
	CurrencyCode   string             `json:"currencyCode" binding:"required"`
	OpeningBalance string             `json:"openingBalance" binding:"omitempty,amount"`
}

// AccountResponse mirrors the persisted account fields; the four balance
// fields are integer minor units, `balance` is the derived signed balance as a
// decimal string.
type AccountResponse struct {
	ID                        string              `json:"id"`
	OwnerID                   string              `json:"ownerId"`
	Type                      domain.AccountType  `json:"type"`
	State                     domain.AccountState `json:"state"`
	CurrencyCode              string              `json:"currencyCode"`
	PostedDebitBalance        int64               `json:"postedDebitBalance"`
	PendingDebitBalance       int64               `json:"pendingDebitBalance"`
	PostedCreditBalance       int64               `json:"postedCreditBalance"`
	PendingCreditBalance      int64               `json:"pendingCreditBalance"`
	Balance                   string              `json:"balance"`
	TimestampLastJournalEntry time.Time           `json:"timestampLastJournalEntry"`
	CreatedAt                 time.Time           `json:"createdAt"`
}

// AccountIDsRequest carries the id list for bulk account state operations.
type AccountIDsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,required"`
}

// CreateAccountsResponse returns the ids of the created accounts in request
// order.
type CreateAccountsResponse struct {
	IDs []string `json:"ids"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}
