package services

import (
	"context"

	"github.com/finhub/ledgerd/internal/dto"
)

// ReservationSvcFacade is the Reservation Coordinator: the three-phase
// reserve / commit / cancel protocol on top of the Balance Ledger, enforcing
// the payer's net debit cap.
type ReservationSvcFacade interface {
	// CheckLiquidAndReserve validates liquidity and reserves the transfer
	// amount by posting a pending entry from the payer's position account to
	// the hub account. Idempotent per transfer id.
	CheckLiquidAndReserve(ctx context.Context, req dto.ReserveRequest) error

	// CancelReservation reverses the pending amounts of a PENDING reservation.
	// Cancelling an already cancelled reservation is a no-op success.
	CancelReservation(ctx context.Context, transferID string) error

	// CancelReservationAndCommit converts the payer's pending debit to posted,
	// credits the payee's position account and clears the hub's pending leg.
	CancelReservationAndCommit(ctx context.Context, transferID string, payeePositionAccountID string) error
}
