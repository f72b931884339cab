package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/finhub/ledgerd/internal/core/domain"
	portsrepo "github.com/finhub/ledgerd/internal/core/ports/repositories"
	portssvc "github.com/finhub/ledgerd/internal/core/ports/services"
	"github.com/finhub/ledgerd/internal/dto"
)

// currencyService serves currency reference data with an in-process cache.
// Currencies are immutable once registered, so cached entries never go stale.
type currencyService struct {
	currencyRepo portsrepo.CurrencyRepository

	mu    sync.RWMutex
	cache map[string]domain.Currency
}

// NewCurrencyService creates a new CurrencyService.
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepository) portssvc.CurrencySvcFacade {
	return &currencyService{
		currencyRepo: currencyRepo,
		cache:        make(map[string]domain.Currency),
	}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

func (s *currencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest) (*domain.Currency, error) {
	currency := domain.Currency{Code: req.Code, Decimals: req.Decimals}

	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		return nil, fmt.Errorf("failed to save currency %s: %w", currency.Code, err)
	}

	s.mu.Lock()
	s.cache[currency.Code] = currency
	s.mu.Unlock()

	return &currency, nil
}

func (s *currencyService) GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	s.mu.RLock()
	currency, ok := s.cache[code]
	s.mu.RUnlock()
	if ok {
		return &currency, nil
	}

	found, err := s.currencyRepo.FindCurrencyByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[found.Code] = *found
	s.mu.Unlock()

	return found, nil
}

func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	if currencies == nil {
		return []domain.Currency{}, nil
	}
	return currencies, nil
}
