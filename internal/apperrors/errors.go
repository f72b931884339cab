package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrAmountFormat indicates a decimal amount string that does not match the
// currency's scale or the accepted numeric pattern.
var ErrAmountFormat = errors.New("invalid amount format")

// ErrCurrencyMismatch indicates an entry or transfer whose currency does not
// match the currency of every account it touches.
var ErrCurrencyMismatch = errors.New("currency codes differ")

// ErrAccountInactive indicates an operation against an account that is
// inactive or deleted.
var ErrAccountInactive = errors.New("account is not active")

// ErrNetDebitCapExceeded indicates a reservation that would push the payer's
// exposure beyond its net debit cap.
var ErrNetDebitCapExceeded = errors.New("net debit cap exceeded")

// ErrInsufficientLiquidity indicates a reservation the payer's liquidity
// account balance cannot cover.
var ErrInsufficientLiquidity = errors.New("insufficient liquidity")

// ErrInvalidReservationState indicates a commit or cancel against a
// reservation that has already reached a conflicting terminal state.
var ErrInvalidReservationState = errors.New("invalid reservation state")

// ErrDuplicateRequest indicates a retry whose identifier matches a prior
// request but whose parameters differ.
var ErrDuplicateRequest = errors.New("duplicate request id with different parameters")

// ErrRepoConflict indicates a concurrent write was detected by the repository.
// The operation performed no mutation and may be retried.
var ErrRepoConflict = errors.New("repository write conflict")

// ErrRepoUnavailable indicates a transient repository failure (timeout,
// connectivity). The caller must not assume state did not change.
var ErrRepoUnavailable = errors.New("repository unavailable")

// AppError wraps an unexpected failure with an HTTP-ish status code so
// handlers can map it without inspecting the underlying error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given code, message and cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that also matches ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
