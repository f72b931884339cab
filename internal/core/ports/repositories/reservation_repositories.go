package repositories

import (
	"context"
	"time"

	"github.com/finhub/ledgerd/internal/core/domain"
)

// ReservationRepository persists transfer reservations and applies their
// state transitions atomically with the balance movements they imply.
type ReservationRepository interface {
	// FindReservationByTransferID retrieves a reservation, or
	// apperrors.ErrNotFound when the transfer id was never reserved.
	FindReservationByTransferID(ctx context.Context, transferID string) (*domain.Reservation, error)

	// SaveReservation atomically inserts the reservation, persists its pending
	// journal entry and applies the pending balance deltas. It reports
	// apperrors.ErrDuplicate when the transfer id is already reserved and
	// apperrors.ErrRepoConflict when expectedVersions no longer hold; in both
	// cases nothing is mutated.
	SaveReservation(ctx context.Context, res domain.Reservation, entry domain.JournalEntry, deltas map[string]domain.BalanceDelta, expectedVersions map[string]int64) error

	// TransitionReservation atomically moves a reservation from one state to
	// another, optionally persisting a posted journal entry and applying
	// balance deltas in the same write. A reservation whose state is no longer
	// `from` reports apperrors.ErrRepoConflict without mutation; the caller
	// re-reads and re-evaluates.
	TransitionReservation(ctx context.Context, transferID string, from, to domain.ReservationState, payeeAccountID *string, entry *domain.JournalEntry, deltas map[string]domain.BalanceDelta, now time.Time) error
}
