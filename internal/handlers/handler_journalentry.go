package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finhub/ledgerd/internal/core/ports/services"
	"github.com/finhub/ledgerd/internal/dto"
	"github.com/finhub/ledgerd/internal/middleware"
)

// journalEntryHandler handles HTTP requests related to journal entries.
type journalEntryHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newJournalEntryHandler creates a new journalEntryHandler.
func newJournalEntryHandler(ls portssvc.LedgerSvcFacade) *journalEntryHandler {
	return &journalEntryHandler{ledgerService: ls}
}

// registerJournalEntryRoutes registers routes related to journal entries.
func registerJournalEntryRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newJournalEntryHandler(ledgerService)

	entries := rg.Group("/journal-entries")
	{
		entries.POST("", h.createJournalEntries)
	}
}

func (h *journalEntryHandler) createJournalEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var reqs []dto.CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		logger.Warn("Failed to bind JSON for CreateJournalEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if len(reqs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one journal entry is required"})
		return
	}

	ids, err := h.ledgerService.CreateJournalEntries(c.Request.Context(), reqs)
	if err != nil {
		respondWithError(c, err, "Failed to create journal entries")
		return
	}
	c.JSON(http.StatusCreated, dto.CreateJournalEntriesResponse{IDs: ids})
}
