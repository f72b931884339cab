package domain

import "time"

// ReservationState is the state of a two-phase transfer reservation.
// Pending may move to Committed or Cancelled; both are terminal.
type ReservationState string

const (
	ReservationPending   ReservationState = "PENDING"
	ReservationCommitted ReservationState = "COMMITTED"
	ReservationCancelled ReservationState = "CANCELLED"
)

// Reservation records a liquidity reservation keyed by transfer id, together
// with the request fingerprint used to distinguish idempotent retries from
// conflicting reuse of the same transfer id.
type Reservation struct {
	TransferID              string           `json:"transferId"`
	State                   ReservationState `json:"state"`
	PayerPositionAccountID  string           `json:"payerPositionAccountId"`
	PayerLiquidityAccountID string           `json:"payerLiquidityAccountId"`
	HubAccountID            string           `json:"hubAccountId"`
	PayeePositionAccountID  *string          `json:"payeePositionAccountId,omitempty"`
	Amount                  int64            `json:"amount"`
	CurrencyCode            string           `json:"currencyCode"`
	NetDebitCap             int64            `json:"netDebitCap"`

	// EntryID is the pending journal entry posted at reservation time.
	EntryID string `json:"entryId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Terminal reports whether the reservation can no longer transition.
func (r Reservation) Terminal() bool {
	return r.State == ReservationCommitted || r.State == ReservationCancelled
}

// Matches reports whether a reserve retry carries the same parameters as the
// stored reservation.
func (r Reservation) Matches(payerPosID, payerLiqID, hubID string, amount int64, currencyCode string) bool {
	return r.PayerPositionAccountID == payerPosID &&
		r.PayerLiquidityAccountID == payerLiqID &&
		r.HubAccountID == hubID &&
		r.Amount == amount &&
		r.CurrencyCode == currencyCode
}
