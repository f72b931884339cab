package repositories

import (
	"context"

	"github.com/finhub/ledgerd/internal/core/domain"
)

// CurrencyReader defines read operations for currency reference data.
type CurrencyReader interface {
	// FindCurrencyByCode retrieves a currency by its code.
	FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)

	// ListCurrencies retrieves all registered currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// CurrencyWriter defines write operations for currency reference data.
type CurrencyWriter interface {
	// SaveCurrency persists a new currency; apperrors.ErrDuplicate when the
	// code is already registered.
	SaveCurrency(ctx context.Context, currency domain.Currency) error
}

// CurrencyRepository combines all currency repository operations.
type CurrencyRepository interface {
	CurrencyReader
	CurrencyWriter
}
