package domain

import (
	"fmt"
	"time"

	"github.com/finhub/ledgerd/internal/apperrors"
)

// AccountType defines the settlement role of an account.
type AccountType string

const (
	Position                  AccountType = "POSITION"
	Liquidity                 AccountType = "LIQUIDITY"
	Settlement                AccountType = "SETTLEMENT"
	HubMultilateralSettlement AccountType = "HUB_MULTILATERAL_SETTLEMENT"
	HubReconciliation         AccountType = "HUB_RECONCILIATION"
)

// AccountState is the lifecycle state of an account. Deleted is terminal.
type AccountState string

const (
	Active   AccountState = "ACTIVE"
	Inactive AccountState = "INACTIVE"
	Deleted  AccountState = "DELETED"
)

// Account represents a ledger account. All four balance fields are
// non-negative integers in minor units; the signed balance is always derived,
// never stored.
type Account struct {
	ID           string       `json:"id"`
	OwnerID      string       `json:"ownerId"`
	Type         AccountType  `json:"type"`
	State        AccountState `json:"state"`
	CurrencyCode string       `json:"currencyCode"`

	PostedDebitBalance   int64 `json:"postedDebitBalance"`
	PendingDebitBalance  int64 `json:"pendingDebitBalance"`
	PostedCreditBalance  int64 `json:"postedCreditBalance"`
	PendingCreditBalance int64 `json:"pendingCreditBalance"`

	// Version is the optimistic-concurrency token bumped on every applied
	// balance delta.
	Version int64 `json:"-"`

	TimestampLastJournalEntry time.Time `json:"timestampLastJournalEntry"`
	CreatedAt                 time.Time `json:"createdAt"`
}

// DebitNormal reports whether the account's derived balance grows with debits.
func (a Account) DebitNormal() bool {
	return a.Type == Position
}

// Balance derives the signed posted balance. Pending amounts are reservation
// state and do not contribute until committed.
func (a Account) Balance() int64 {
	if a.DebitNormal() {
		return a.PostedDebitBalance - a.PostedCreditBalance
	}
	return a.PostedCreditBalance - a.PostedDebitBalance
}

// Exposure is the payer-side intraday exposure used by the net-debit-cap
// check: posted and pending debits net of posted and pending credits.
func (a Account) Exposure() int64 {
	return a.PostedDebitBalance + a.PendingDebitBalance - a.PostedCreditBalance - a.PendingCreditBalance
}

// Validate checks the structural rules for an account.
func (a Account) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: account id is required", apperrors.ErrValidation)
	}
	if a.CurrencyCode == "" {
		return fmt.Errorf("%w: currency code is required", apperrors.ErrValidation)
	}
	switch a.Type {
	case Position, Liquidity, Settlement, HubMultilateralSettlement, HubReconciliation:
	default:
		return fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, a.Type)
	}
	switch a.State {
	case Active, Inactive, Deleted:
	default:
		return fmt.Errorf("%w: unknown account state %q", apperrors.ErrValidation, a.State)
	}
	if a.PostedDebitBalance < 0 || a.PendingDebitBalance < 0 || a.PostedCreditBalance < 0 || a.PendingCreditBalance < 0 {
		return fmt.Errorf("%w: balance fields must be non-negative", apperrors.ErrValidation)
	}
	return nil
}

// BalanceDelta is the only vocabulary for mutating account balances. Fields
// may be negative to reverse a pending leg; the repository rejects any delta
// that would drive a balance field below zero.
type BalanceDelta struct {
	PostedDebit   int64
	PostedCredit  int64
	PendingDebit  int64
	PendingCredit int64
}

// IsZero reports whether the delta has no effect.
func (d BalanceDelta) IsZero() bool {
	return d.PostedDebit == 0 && d.PostedCredit == 0 && d.PendingDebit == 0 && d.PendingCredit == 0
}

// Add combines two deltas.
func (d BalanceDelta) Add(other BalanceDelta) BalanceDelta {
	return BalanceDelta{
		PostedDebit:   d.PostedDebit + other.PostedDebit,
		PostedCredit:  d.PostedCredit + other.PostedCredit,
		PendingDebit:  d.PendingDebit + other.PendingDebit,
		PendingCredit: d.PendingCredit + other.PendingCredit,
	}
}

// ApplyDelta mutates the account's balance fields, bumps the version and
// stamps the journal-entry timestamp. It fails without mutation if the
// account is deleted or any resulting field would be negative.
func (a *Account) ApplyDelta(d BalanceDelta, ts time.Time) error {
	if a.State == Deleted {
		return fmt.Errorf("%w: account %s is deleted", apperrors.ErrAccountInactive, a.ID)
	}
	pd := a.PostedDebitBalance + d.PostedDebit
	pc := a.PostedCreditBalance + d.PostedCredit
	nd := a.PendingDebitBalance + d.PendingDebit
	nc := a.PendingCreditBalance + d.PendingCredit
	if pd < 0 || pc < 0 || nd < 0 || nc < 0 {
		return fmt.Errorf("%w: delta would drive a balance of account %s negative", apperrors.ErrValidation, a.ID)
	}
	a.PostedDebitBalance = pd
	a.PostedCreditBalance = pc
	a.PendingDebitBalance = nd
	a.PendingCreditBalance = nc
	a.Version++
	a.TimestampLastJournalEntry = ts
	return nil
}
