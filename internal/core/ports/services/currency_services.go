package services

import (
	"context"

	"github.com/finhub/ledgerd/internal/core/domain"
	"github.com/finhub/ledgerd/internal/dto"
)

// CurrencySvcFacade manages currency reference data. Currencies are loaded at
// startup and immutable afterwards.
type CurrencySvcFacade interface {
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest) (*domain.Currency, error)
	GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}
