package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/finhub/ledgerd/internal/apperrors"
	"github.com/finhub/ledgerd/internal/core/domain"
	portsrepo "github.com/finhub/ledgerd/internal/core/ports/repositories"
	"github.com/finhub/ledgerd/internal/core/services"
	"github.com/finhub/ledgerd/internal/dto"
)

// --- Mock CurrencyRepository ---
type MockCurrencyRepository struct {
	mock.Mock
}

var _ portsrepo.CurrencyRepository = (*MockCurrencyRepository)(nil)

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func TestCurrencyServiceCachesLookups(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCurrencyRepository)
	svc := services.NewCurrencyService(repo)

	eur := &domain.Currency{Code: "EUR", Decimals: 2}
	repo.On("FindCurrencyByCode", ctx, "EUR").Return(eur, nil).Once()

	first, err := svc.GetCurrencyByCode(ctx, "EUR")
	require.NoError(t, err)
	assert.Equal(t, uint8(2), first.Decimals)

	// Second lookup is served from the cache; the mock allows only one call.
	second, err := svc.GetCurrencyByCode(ctx, "EUR")
	require.NoError(t, err)
	assert.Equal(t, *first, *second)

	repo.AssertExpectations(t)
}

func TestCurrencyServiceCreatePrimesCache(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCurrencyRepository)
	svc := services.NewCurrencyService(repo)

	repo.On("SaveCurrency", ctx, domain.Currency{Code: "JPY", Decimals: 0}).Return(nil).Once()

	created, err := svc.CreateCurrency(ctx, dto.CreateCurrencyRequest{Code: "JPY", Decimals: 0})
	require.NoError(t, err)
	assert.Equal(t, "JPY", created.Code)

	// No FindCurrencyByCode expectation: the cache must answer.
	cached, err := svc.GetCurrencyByCode(ctx, "JPY")
	require.NoError(t, err)
	assert.Equal(t, uint8(0), cached.Decimals)

	repo.AssertExpectations(t)
}

func TestCurrencyServiceUnknownCode(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCurrencyRepository)
	svc := services.NewCurrencyService(repo)

	repo.On("FindCurrencyByCode", ctx, "XXX").Return(nil, apperrors.ErrNotFound).Once()

	_, err := svc.GetCurrencyByCode(ctx, "XXX")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertExpectations(t)
}
