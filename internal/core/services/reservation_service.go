package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finhub/ledgerd/internal/apperrors"
	"github.com/finhub/ledgerd/internal/core/domain"
	portsrepo "github.com/finhub/ledgerd/internal/core/ports/repositories"
	portssvc "github.com/finhub/ledgerd/internal/core/ports/services"
	"github.com/finhub/ledgerd/internal/dto"
	"github.com/finhub/ledgerd/internal/middleware"
	"github.com/finhub/ledgerd/internal/utils/money"
)

// maxReserveAttempts bounds the optimistic-concurrency retry loop. A conflict
// means another writer won the version race and nothing was mutated, so the
// attempt restarts from a fresh read of the accounts.
const maxReserveAttempts = 5

// reservationService is the Reservation Coordinator. It drives the two-phase
// transfer protocol: CheckLiquidAndReserve places a pending hold from the
// payer's position account to the hub account, and CancelReservation or
// CancelReservationAndCommit resolves it. Every transfer id resolves exactly
// once; retries are answered from the stored reservation.
type reservationService struct {
	accountRepo     portsrepo.AccountRepository
	reservationRepo portsrepo.ReservationRepository
	currencySvc     portssvc.CurrencySvcFacade
}

// NewReservationService creates a new ReservationService.
func NewReservationService(accountRepo portsrepo.AccountRepository, reservationRepo portsrepo.ReservationRepository, currencySvc portssvc.CurrencySvcFacade) portssvc.ReservationSvcFacade {
	return &reservationService{
		accountRepo:     accountRepo,
		reservationRepo: reservationRepo,
		currencySvc:     currencySvc,
	}
}

var _ portssvc.ReservationSvcFacade = (*reservationService)(nil)

// CheckLiquidAndReserve runs the payer-side admission check and, if it
// passes, reserves the transfer amount: the payer position account takes a
// pending debit and the hub account a pending credit, recorded as a pending
// journal entry. The check and the reservation are one atomic step per
// account version; a version conflict triggers a full re-read and re-check.
func (s *reservationService) CheckLiquidAndReserve(ctx context.Context, req dto.ReserveRequest) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	currency, err := s.currencySvc.GetCurrencyByCode(ctx, req.CurrencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: unknown currency %s", apperrors.ErrValidation, req.CurrencyCode)
		}
		return fmt.Errorf("failed to resolve currency %s: %w", req.CurrencyCode, err)
	}

	amount, err := money.ToMinorUnits(req.TransferAmount, currency.Decimals)
	if err != nil {
		return fmt.Errorf("transfer amount: %w", err)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: transfer amount must be positive", apperrors.ErrValidation)
	}
	netDebitCap, err := money.ToMinorUnits(req.PayerNetDebitCap, currency.Decimals)
	if err != nil {
		return fmt.Errorf("net debit cap: %w", err)
	}
	if netDebitCap < 0 {
		return fmt.Errorf("%w: net debit cap must be non-negative", apperrors.ErrValidation)
	}

	for attempt := 1; ; attempt++ {
		existing, err := s.reservationRepo.FindReservationByTransferID(ctx, req.TransferID)
		if err == nil {
			return s.resolveReserveRetry(ctx, *existing, req, amount)
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to look up reservation %s: %w", req.TransferID, err)
		}

		position, liquidity, hub, err := s.loadReserveAccounts(ctx, req)
		if err != nil {
			return err
		}

		if position.Exposure()+amount > netDebitCap {
			logger.Warn("Net debit cap exceeded",
				slog.String("transfer_id", req.TransferID),
				slog.String("payer_position_account_id", position.ID),
				slog.Int64("exposure", position.Exposure()),
				slog.Int64("amount", amount),
				slog.Int64("net_debit_cap", netDebitCap))
			return fmt.Errorf("%w: exposure %d plus amount %d exceeds cap %d",
				apperrors.ErrNetDebitCapExceeded, position.Exposure(), amount, netDebitCap)
		}
		if liquidity.Balance() < amount {
			logger.Warn("Insufficient liquidity",
				slog.String("transfer_id", req.TransferID),
				slog.String("payer_liquidity_account_id", liquidity.ID),
				slog.Int64("balance", liquidity.Balance()),
				slog.Int64("amount", amount))
			return fmt.Errorf("%w: liquidity balance %d is below amount %d",
				apperrors.ErrInsufficientLiquidity, liquidity.Balance(), amount)
		}

		now := time.Now().UTC()
		entry := domain.JournalEntry{
			ID:                uuid.NewString(),
			CurrencyCode:      req.CurrencyCode,
			Amount:            amount,
			DebitedAccountID:  position.ID,
			CreditedAccountID: hub.ID,
			Pending:           true,
			Timestamp:         now,
		}
		reservation := domain.Reservation{
			TransferID:              req.TransferID,
			State:                   domain.ReservationPending,
			PayerPositionAccountID:  position.ID,
			PayerLiquidityAccountID: liquidity.ID,
			HubAccountID:            hub.ID,
			Amount:                  amount,
			CurrencyCode:            req.CurrencyCode,
			NetDebitCap:             netDebitCap,
			EntryID:                 entry.ID,
			CreatedAt:               now,
			UpdatedAt:               now,
		}

		// The admission check holds only for the account versions it read.
		expectedVersions := map[string]int64{
			position.ID:  position.Version,
			liquidity.ID: liquidity.Version,
			hub.ID:       hub.Version,
		}
		err = s.reservationRepo.SaveReservation(ctx, reservation, entry, entry.Deltas(), expectedVersions)
		if err == nil {
			logger.Info("Reservation placed",
				slog.String("transfer_id", req.TransferID),
				slog.String("payer_position_account_id", position.ID),
				slog.Int64("amount", amount))
			return nil
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Raced with another reserve for the same transfer id; answer from
			// the stored reservation on the next pass.
			continue
		}
		if errors.Is(err, apperrors.ErrRepoConflict) {
			if attempt >= maxReserveAttempts {
				return fmt.Errorf("%w: reservation for transfer %s contended %d times",
					apperrors.ErrRepoConflict, req.TransferID, attempt)
			}
			logger.Debug("Reservation attempt conflicted, retrying",
				slog.String("transfer_id", req.TransferID),
				slog.Int("attempt", attempt))
			continue
		}
		return fmt.Errorf("failed to save reservation %s: %w", req.TransferID, err)
	}
}

// resolveReserveRetry answers a reserve call whose transfer id already has a
// reservation. A retry carrying the same parameters succeeds against a
// PENDING or COMMITTED reservation; anything else is a protocol error.
func (s *reservationService) resolveReserveRetry(ctx context.Context, existing domain.Reservation, req dto.ReserveRequest, amount int64) error {
	if !existing.Matches(req.PayerPositionAccountID, req.PayerLiquidityAccountID, req.HubAccountID, amount, req.CurrencyCode) {
		return fmt.Errorf("%w: transfer %s already reserved with different parameters",
			apperrors.ErrDuplicateRequest, req.TransferID)
	}
	if existing.State == domain.ReservationCancelled {
		return fmt.Errorf("%w: transfer %s was cancelled",
			apperrors.ErrInvalidReservationState, req.TransferID)
	}
	middleware.GetLoggerFromCtx(ctx).Info("Reservation retry answered idempotently",
		slog.String("transfer_id", req.TransferID),
		slog.String("state", string(existing.State)))
	return nil
}

// loadReserveAccounts fetches and validates the three accounts of a reserve
// request before any admission math runs.
func (s *reservationService) loadReserveAccounts(ctx context.Context, req dto.ReserveRequest) (position, liquidity, hub domain.Account, err error) {
	ids := []string{req.PayerPositionAccountID, req.PayerLiquidityAccountID, req.HubAccountID}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return position, liquidity, hub, fmt.Errorf("failed to fetch transfer accounts: %w", err)
	}

	for _, id := range ids {
		account, found := accounts[id]
		if !found {
			return position, liquidity, hub, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		if account.State != domain.Active {
			return position, liquidity, hub, fmt.Errorf("%w: account %s is %s", apperrors.ErrAccountInactive, id, account.State)
		}
		if account.CurrencyCode != req.CurrencyCode {
			return position, liquidity, hub, fmt.Errorf("%w: account %s is %s, transfer is %s",
				apperrors.ErrCurrencyMismatch, id, account.CurrencyCode, req.CurrencyCode)
		}
	}

	position = accounts[req.PayerPositionAccountID]
	liquidity = accounts[req.PayerLiquidityAccountID]
	hub = accounts[req.HubAccountID]

	if position.Type != domain.Position {
		return position, liquidity, hub, fmt.Errorf("%w: account %s is not a position account",
			apperrors.ErrValidation, position.ID)
	}
	if liquidity.DebitNormal() {
		return position, liquidity, hub, fmt.Errorf("%w: account %s cannot serve as a liquidity account",
			apperrors.ErrValidation, liquidity.ID)
	}
	return position, liquidity, hub, nil
}

// CancelReservation releases a PENDING reservation: the payer's pending debit
// and the hub's pending credit are reversed, and the transfer id is retired
// as CANCELLED. Cancelling twice is a no-op success.
func (s *reservationService) CancelReservation(ctx context.Context, transferID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	reservation, err := s.reservationRepo.FindReservationByTransferID(ctx, transferID)
	if err != nil {
		return fmt.Errorf("failed to look up reservation %s: %w", transferID, err)
	}

	switch reservation.State {
	case domain.ReservationCancelled:
		return nil
	case domain.ReservationCommitted:
		return fmt.Errorf("%w: transfer %s is already committed",
			apperrors.ErrInvalidReservationState, transferID)
	}

	deltas := map[string]domain.BalanceDelta{
		reservation.PayerPositionAccountID: {PendingDebit: -reservation.Amount},
		reservation.HubAccountID:           {PendingCredit: -reservation.Amount},
	}

	err = s.reservationRepo.TransitionReservation(ctx, transferID,
		domain.ReservationPending, domain.ReservationCancelled, nil, nil, deltas, time.Now().UTC())
	if err != nil {
		if errors.Is(err, apperrors.ErrRepoConflict) {
			// Lost the race to another resolver; re-read to report the outcome.
			return s.CancelReservation(ctx, transferID)
		}
		return fmt.Errorf("failed to cancel reservation %s: %w", transferID, err)
	}

	logger.Info("Reservation cancelled",
		slog.String("transfer_id", transferID),
		slog.Int64("amount", reservation.Amount))
	return nil
}

// CancelReservationAndCommit settles a PENDING reservation: the payer's
// pending debit becomes a posted debit, the hub's pending credit is cleared
// and the payee's position account takes the posted credit, recorded as a
// posted journal entry from payer to payee.
func (s *reservationService) CancelReservationAndCommit(ctx context.Context, transferID string, payeePositionAccountID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	reservation, err := s.reservationRepo.FindReservationByTransferID(ctx, transferID)
	if err != nil {
		return fmt.Errorf("failed to look up reservation %s: %w", transferID, err)
	}

	switch reservation.State {
	case domain.ReservationCommitted:
		if reservation.PayeePositionAccountID != nil && *reservation.PayeePositionAccountID == payeePositionAccountID {
			return nil
		}
		return fmt.Errorf("%w: transfer %s already committed to a different payee",
			apperrors.ErrDuplicateRequest, transferID)
	case domain.ReservationCancelled:
		return fmt.Errorf("%w: transfer %s was cancelled",
			apperrors.ErrInvalidReservationState, transferID)
	}

	if payeePositionAccountID == reservation.PayerPositionAccountID {
		return fmt.Errorf("%w: payee account must differ from the payer position account", apperrors.ErrValidation)
	}
	payee, err := s.loadPayeeAccount(ctx, payeePositionAccountID, reservation.CurrencyCode)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	entry := domain.JournalEntry{
		ID:                uuid.NewString(),
		CurrencyCode:      reservation.CurrencyCode,
		Amount:            reservation.Amount,
		DebitedAccountID:  reservation.PayerPositionAccountID,
		CreditedAccountID: payee.ID,
		Pending:           false,
		Timestamp:         now,
	}

	deltas := map[string]domain.BalanceDelta{
		reservation.PayerPositionAccountID: {PendingDebit: -reservation.Amount, PostedDebit: reservation.Amount},
	}
	// The hub and payee legs merge when the payee settles on the hub account.
	deltas[reservation.HubAccountID] = deltas[reservation.HubAccountID].Add(domain.BalanceDelta{PendingCredit: -reservation.Amount})
	deltas[payee.ID] = deltas[payee.ID].Add(domain.BalanceDelta{PostedCredit: reservation.Amount})

	err = s.reservationRepo.TransitionReservation(ctx, transferID,
		domain.ReservationPending, domain.ReservationCommitted, &payee.ID, &entry, deltas, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrRepoConflict) {
			return s.CancelReservationAndCommit(ctx, transferID, payeePositionAccountID)
		}
		return fmt.Errorf("failed to commit reservation %s: %w", transferID, err)
	}

	logger.Info("Reservation committed",
		slog.String("transfer_id", transferID),
		slog.String("payee_position_account_id", payee.ID),
		slog.Int64("amount", reservation.Amount))
	return nil
}

func (s *reservationService) loadPayeeAccount(ctx context.Context, accountID, currencyCode string) (domain.Account, error) {
	payee, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to fetch payee account %s: %w", accountID, err)
	}
	if payee.State != domain.Active {
		return domain.Account{}, fmt.Errorf("%w: account %s is %s", apperrors.ErrAccountInactive, accountID, payee.State)
	}
	if payee.CurrencyCode != currencyCode {
		return domain.Account{}, fmt.Errorf("%w: account %s is %s, transfer is %s",
			apperrors.ErrCurrencyMismatch, accountID, payee.CurrencyCode, currencyCode)
	}
	return *payee, nil
}
