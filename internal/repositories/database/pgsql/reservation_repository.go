package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finhub/ledgerd/internal/apperrors"
	"github.com/finhub/ledgerd/internal/core/domain"
	portsrepo "github.com/finhub/ledgerd/internal/core/ports/repositories"
)

type PgxReservationRepository struct {
	BaseRepository
}

// newPgxReservationRepository creates a new repository for transfer
// reservations.
func newPgxReservationRepository(pool *pgxpool.Pool) portsrepo.ReservationRepository {
	return &PgxReservationRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxReservationRepository implements portsrepo.ReservationRepository
var _ portsrepo.ReservationRepository = (*PgxReservationRepository)(nil)

const reservationColumns = `transfer_id, state, payer_position_account_id, payer_liquidity_account_id,
	hub_account_id, payee_position_account_id, amount, currency_code, net_debit_cap,
	entry_id, created_at, updated_at`

func scanReservation(row pgx.Row) (domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(
		&res.TransferID,
		&res.State,
		&res.PayerPositionAccountID,
		&res.PayerLiquidityAccountID,
		&res.HubAccountID,
		&res.PayeePositionAccountID,
		&res.Amount,
		&res.CurrencyCode,
		&res.NetDebitCap,
		&res.EntryID,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return domain.Reservation{}, err
	}
	return res, nil
}

// FindReservationByTransferID retrieves a reservation by transfer id.
func (r *PgxReservationRepository) FindReservationByTransferID(ctx context.Context, transferID string) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE transfer_id = $1;`

	res, err := scanReservation(r.Pool.QueryRow(ctx, query, transferID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation %s: %w", transferID, err)
	}
	return &res, nil
}

// SaveReservation inserts the pending journal entry, the reservation and the
// pending balance legs as one transaction. The entry goes first: the
// reservations row references it and the foreign key is checked per
// statement.
func (r *PgxReservationRepository) SaveReservation(ctx context.Context, res domain.Reservation, entry domain.JournalEntry, deltas map[string]domain.BalanceDelta, expectedVersions map[string]int64) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertEntryTx(ctx, tx, entry); err != nil {
		return err
	}

	query := `
		INSERT INTO reservations (transfer_id, state, payer_position_account_id, payer_liquidity_account_id,
			hub_account_id, payee_position_account_id, amount, currency_code, net_debit_cap,
			entry_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, query,
		res.TransferID,
		res.State,
		res.PayerPositionAccountID,
		res.PayerLiquidityAccountID,
		res.HubAccountID,
		res.PayeePositionAccountID,
		res.Amount,
		res.CurrencyCode,
		res.NetDebitCap,
		res.EntryID,
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: transfer %s is already reserved", apperrors.ErrDuplicate, res.TransferID)
		}
		return fmt.Errorf("failed to insert reservation %s: %w", res.TransferID, err)
	}

	if err := applyDeltasTx(ctx, tx, deltas, expectedVersions, entry.Timestamp); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// TransitionReservation moves a reservation between states, recording the
// optional posted entry and balance legs in the same transaction. The state
// column acts as the compare-and-swap token: an UPDATE that matches no
// PENDING row reports a conflict and mutates nothing.
func (r *PgxReservationRepository) TransitionReservation(ctx context.Context, transferID string, from, to domain.ReservationState, payeeAccountID *string, entry *domain.JournalEntry, deltas map[string]domain.BalanceDelta, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	tag, err := tx.Exec(ctx, `
		UPDATE reservations
		SET state = $3, payee_position_account_id = COALESCE($4, payee_position_account_id), updated_at = $5
		WHERE transfer_id = $1 AND state = $2;
	`, transferID, from, to, payeeAccountID, now)
	if err != nil {
		return fmt.Errorf("failed to transition reservation %s: %w", transferID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reservations WHERE transfer_id = $1);`, transferID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check reservation %s: %w", transferID, err)
		}
		if !exists {
			return fmt.Errorf("%w: reservation %s", apperrors.ErrNotFound, transferID)
		}
		return fmt.Errorf("%w: reservation %s is no longer %s", apperrors.ErrRepoConflict, transferID, from)
	}

	if entry != nil {
		if err := insertEntryTx(ctx, tx, *entry); err != nil {
			return err
		}
	}
	if len(deltas) > 0 {
		if err := applyDeltasTx(ctx, tx, deltas, nil, now); err != nil {
			return err
		}
	}
	return r.Commit(ctx, tx)
}
