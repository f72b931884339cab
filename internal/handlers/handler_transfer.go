package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finhub/ledgerd/internal/apperrors"
	portssvc "github.com/finhub/ledgerd/internal/core/ports/services"
	"github.com/finhub/ledgerd/internal/dto"
	"github.com/finhub/ledgerd/internal/middleware"
)

// transferHandler handles the two-phase transfer endpoints. Responses use the
// uniform {success, errorMessage} envelope so the settlement caller can treat
// any reply with a body as a protocol answer rather than a transport failure.
type transferHandler struct {
	reservationService portssvc.ReservationSvcFacade
}

// newTransferHandler creates a new transferHandler.
func newTransferHandler(rs portssvc.ReservationSvcFacade) *transferHandler {
	return &transferHandler{reservationService: rs}
}

// registerTransferRoutes registers the reserve/commit/cancel routes.
func registerTransferRoutes(rg *gin.RouterGroup, reservationService portssvc.ReservationSvcFacade, extra ...gin.HandlerFunc) {
	h := newTransferHandler(reservationService)

	transfers := rg.Group("/transfers", extra...)
	{
		transfers.POST("/reserve", h.reserve)
		transfers.POST("/:transferID/commit", h.commit)
		transfers.POST("/:transferID/cancel", h.cancel)
	}
}

func (h *transferHandler) reserve(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Reserve", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.TransferResultResponse{Success: false, ErrorMessage: "Invalid request format: " + err.Error()})
		return
	}

	logger.Info("Received transfer reserve request",
		slog.String("transfer_id", req.TransferID),
		slog.String("request_id", req.RequestID))

	if err := h.reservationService.CheckLiquidAndReserve(c.Request.Context(), req); err != nil {
		h.respondTransferError(c, err, "Failed to reserve transfer")
		return
	}
	c.JSON(http.StatusOK, dto.TransferResultResponse{Success: true})
}

func (h *transferHandler) commit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transferID := c.Param("transferID")

	var req dto.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Commit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.TransferResultResponse{Success: false, ErrorMessage: "Invalid request format: " + err.Error()})
		return
	}

	if err := h.reservationService.CancelReservationAndCommit(c.Request.Context(), transferID, req.PayeePositionAccountID); err != nil {
		h.respondTransferError(c, err, "Failed to commit transfer")
		return
	}
	c.JSON(http.StatusOK, dto.TransferResultResponse{Success: true})
}

func (h *transferHandler) cancel(c *gin.Context) {
	transferID := c.Param("transferID")

	if err := h.reservationService.CancelReservation(c.Request.Context(), transferID); err != nil {
		h.respondTransferError(c, err, "Failed to cancel transfer")
		return
	}
	c.JSON(http.StatusOK, dto.TransferResultResponse{Success: true})
}

// respondTransferError renders business rejections as successful HTTP replies
// carrying success=false, reserving non-2xx statuses for malformed requests
// and infrastructure failures.
func (h *transferHandler) respondTransferError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	switch {
	case errors.Is(err, apperrors.ErrNetDebitCapExceeded),
		errors.Is(err, apperrors.ErrInsufficientLiquidity),
		errors.Is(err, apperrors.ErrInvalidReservationState),
		errors.Is(err, apperrors.ErrDuplicateRequest),
		errors.Is(err, apperrors.ErrAccountInactive),
		errors.Is(err, apperrors.ErrCurrencyMismatch),
		errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Transfer rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusOK, dto.TransferResultResponse{Success: false, ErrorMessage: err.Error()})
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrAmountFormat):
		c.JSON(http.StatusBadRequest, dto.TransferResultResponse{Success: false, ErrorMessage: err.Error()})
	case errors.Is(err, apperrors.ErrRepoConflict):
		logger.Warn("Transfer contended", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, dto.TransferResultResponse{Success: false, ErrorMessage: err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.TransferResultResponse{Success: false, ErrorMessage: fallback})
	}
}
