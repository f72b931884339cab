package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhub/ledgerd/internal/core/domain"
	portssvc "github.com/finhub/ledgerd/internal/core/ports/services"
	"github.com/finhub/ledgerd/internal/core/services"
	"github.com/finhub/ledgerd/internal/dto"
	"github.com/finhub/ledgerd/internal/handlers"
	"github.com/finhub/ledgerd/internal/repositories/memory"
)

func newTestRouter(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, dto.RegisterValidators())

	store := memory.NewStore()
	repos := memory.NewRepositoryProvider(store)
	currencyService := services.NewCurrencyService(repos.CurrencyRepo)
	container := &portssvc.ServiceContainer{
		Ledger:      services.NewLedgerService(repos.AccountRepo, repos.JournalRepo, currencyService),
		Reservation: services.NewReservationService(repos.AccountRepo, repos.ReservationRepo, currencyService),
		Currency:    currencyService,
	}

	r := gin.New()
	handlers.RegisterRoutes(r, container, nil, nil)

	ctx := context.Background()
	_, err := currencyService.CreateCurrency(ctx, dto.CreateCurrencyRequest{Code: "EUR", Decimals: 2})
	require.NoError(t, err)
	_, err = container.Ledger.CreateAccounts(ctx, []dto.CreateAccountRequest{
		{ID: "payer-pos", OwnerID: "payer", Type: domain.Position, CurrencyCode: "EUR"},
		{ID: "payer-liq", OwnerID: "payer", Type: domain.Liquidity, CurrencyCode: "EUR", OpeningBalance: "500.00"},
		{ID: "hub", OwnerID: "hub", Type: domain.HubMultilateralSettlement, CurrencyCode: "EUR"},
		{ID: "payee-pos", OwnerID: "payee", Type: domain.Position, CurrencyCode: "EUR"},
	})
	require.NoError(t, err)
	return r, store
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) dto.TransferResultResponse {
	t.Helper()
	var result dto.TransferResultResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func reserveBody(transferID, amount, cap string) dto.ReserveRequest {
	return dto.ReserveRequest{
		TransferID:              transferID,
		PayerPositionAccountID:  "payer-pos",
		PayerLiquidityAccountID: "payer-liq",
		HubAccountID:            "hub",
		TransferAmount:          amount,
		CurrencyCode:            "EUR",
		PayerNetDebitCap:        cap,
	}
}

func TestReserveEndpoint(t *testing.T) {
	r, store := newTestRouter(t)

	w := postJSON(t, r, "/api/v1/transfers/reserve", reserveBody("t-1", "50.00", "500.00"))
	assert.Equal(t, http.StatusOK, w.Code)
	result := decodeResult(t, w)
	assert.True(t, result.Success)
	assert.Empty(t, result.ErrorMessage)

	account, err := store.FindAccountByID(context.Background(), "payer-pos")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), account.PendingDebitBalance)
}

func TestReserveEndpointCapExceeded(t *testing.T) {
	r, _ := newTestRouter(t)

	// Business rejections travel as HTTP 200 with success=false.
	w := postJSON(t, r, "/api/v1/transfers/reserve", reserveBody("t-1", "50.00", "40.00"))
	assert.Equal(t, http.StatusOK, w.Code)
	result := decodeResult(t, w)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.ErrorMessage)
}

func TestReserveEndpointRejectsMalformedAmount(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postJSON(t, r, "/api/v1/transfers/reserve", reserveBody("t-1", "fifty", "500.00"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decodeResult(t, w).Success)
}

func TestCommitAndCancelEndpoints(t *testing.T) {
	r, store := newTestRouter(t)

	w := postJSON(t, r, "/api/v1/transfers/reserve", reserveBody("t-1", "50.00", "500.00"))
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, r, "/api/v1/transfers/t-1/commit", dto.CommitRequest{PayeePositionAccountID: "payee-pos"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResult(t, w).Success)

	payee, err := store.FindAccountByID(context.Background(), "payee-pos")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), payee.PostedCreditBalance)

	// Cancel after commit is a protocol answer, not a transport error.
	w = postJSON(t, r, "/api/v1/transfers/t-1/cancel", dto.CancelRequest{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeResult(t, w).Success)
}

func TestCancelEndpoint(t *testing.T) {
	r, store := newTestRouter(t)

	w := postJSON(t, r, "/api/v1/transfers/reserve", reserveBody("t-1", "50.00", "500.00"))
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, r, "/api/v1/transfers/t-1/cancel", dto.CancelRequest{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResult(t, w).Success)

	account, err := store.FindAccountByID(context.Background(), "payer-pos")
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.PendingDebitBalance)
}
