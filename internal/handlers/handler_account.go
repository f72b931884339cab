package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/finhub/ledgerd/internal/apperrors"
	"github.com/finhub/ledgerd/internal/core/domain"
	portssvc "github.com/finhub/ledgerd/internal/core/ports/services"
	"github.com/finhub/ledgerd/internal/dto"
	"github.com/finhub/ledgerd/internal/middleware"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(ls portssvc.LedgerSvcFacade) *accountHandler {
	return &accountHandler{ledgerService: ls}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newAccountHandler(ledgerService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccounts)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:id/entries", h.listAccountEntries)
		accounts.POST("/activate", h.setState(domain.Active))
		accounts.POST("/deactivate", h.setState(domain.Inactive))
		accounts.POST("/delete", h.setState(domain.Deleted))
	}
}

func (h *accountHandler) createAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var reqs []dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccounts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if len(reqs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one account is required"})
		return
	}

	ids, err := h.ledgerService.CreateAccounts(c.Request.Context(), reqs)
	if err != nil {
		respondWithError(c, err, "Failed to create accounts")
		return
	}
	c.JSON(http.StatusCreated, dto.CreateAccountsResponse{IDs: ids})
}

// listAccounts serves both lookup styles: ?ids=a,b,c and ?ownerId=o.
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	idsParam := c.Query("ids")
	ownerID := c.Query("ownerId")

	var (
		accounts []dto.AccountResponse
		err      error
	)
	switch {
	case idsParam != "":
		ids := strings.Split(idsParam, ",")
		accounts, err = h.ledgerService.GetAccountsByIDs(c.Request.Context(), ids)
	case ownerID != "":
		accounts, err = h.ledgerService.GetAccountsByOwnerID(c.Request.Context(), ownerID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either ids or ownerId query parameter is required"})
		return
	}
	if err != nil {
		logger.Error("Failed to list accounts", slog.String("error", err.Error()))
		respondWithError(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: accounts})
}

func (h *accountHandler) listAccountEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListAccountEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.ledgerService.GetJournalEntriesByAccountID(c.Request.Context(), accountID, params)
	if err != nil {
		respondWithError(c, err, "Failed to list entries")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *accountHandler) setState(state domain.AccountState) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		var req dto.AccountIDsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for SetAccountsState", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}

		if err := h.ledgerService.SetAccountsState(c.Request.Context(), req.IDs, state); err != nil {
			respondWithError(c, err, "Failed to update account state")
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// respondWithError maps service errors onto HTTP statuses. Unrecognized
// errors become an opaque 500 with the fallback message.
func respondWithError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrAmountFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrCurrencyMismatch), errors.Is(err, apperrors.ErrAccountInactive), errors.Is(err, apperrors.ErrInvalidReservationState):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNetDebitCapExceeded), errors.Is(err, apperrors.ErrInsufficientLiquidity):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrRepoConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
