package domain

import (
	"fmt"
	"time"

	"github.com/finhub/ledgerd/internal/apperrors"
)

// JournalEntry is a single double-entry record: one debited account, one
// credited account, one positive amount. Entries are immutable once created;
// reversal happens through compensating entries or reservation transitions,
// never by mutating the entry.
type JournalEntry struct {
	ID                string    `json:"id"`
	OwnerID           *string   `json:"ownerId,omitempty"`
	CurrencyCode      string    `json:"currencyCode"`
	Amount            int64     `json:"amount"`
	DebitedAccountID  string    `json:"debitedAccountId"`
	CreditedAccountID string    `json:"creditedAccountId"`
	Pending           bool      `json:"pending"`
	Timestamp         time.Time `json:"timestamp"`

	// Seq is assigned by the repository on insert and is the insertion-order
	// tie-break for history queries.
	Seq int64 `json:"-"`
}

// Validate checks the structural rules for a journal entry.
func (e JournalEntry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: journal entry id is required", apperrors.ErrValidation)
	}
	if e.Amount <= 0 {
		return fmt.Errorf("%w: journal entry amount must be positive", apperrors.ErrValidation)
	}
	if e.DebitedAccountID == "" || e.CreditedAccountID == "" {
		return fmt.Errorf("%w: debited and credited account ids are required", apperrors.ErrValidation)
	}
	if e.DebitedAccountID == e.CreditedAccountID {
		return fmt.Errorf("%w: debited and credited accounts must differ", apperrors.ErrValidation)
	}
	if e.CurrencyCode == "" {
		return fmt.Errorf("%w: currency code is required", apperrors.ErrValidation)
	}
	return nil
}

// Deltas returns the balance deltas this entry applies to its two accounts,
// keyed by account id. The debit and credit legs always travel together.
func (e JournalEntry) Deltas() map[string]BalanceDelta {
	if e.Pending {
		return map[string]BalanceDelta{
			e.DebitedAccountID:  {PendingDebit: e.Amount},
			e.CreditedAccountID: {PendingCredit: e.Amount},
		}
	}
	return map[string]BalanceDelta{
		e.DebitedAccountID:  {PostedDebit: e.Amount},
		e.CreditedAccountID: {PostedCredit: e.Amount},
	}
}
