package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finhub/ledgerd/internal/core/ports/services"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through the service container interfaces.
func RegisterRoutes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
	transferLimiter gin.HandlerFunc,
	healthPing func(ctx context.Context) error,
) {
	registerHealthRoutes(r, healthPing)
	setupAPIV1Routes(r, services, transferLimiter)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific
// entity route registrations.
func setupAPIV1Routes(r *gin.Engine, services *portssvc.ServiceContainer, transferLimiter gin.HandlerFunc) {
	v1 := r.Group("/api/v1")

	registerCurrencyRoutes(v1, services.Currency)
	registerAccountRoutes(v1, services.Ledger)
	registerJournalEntryRoutes(v1, services.Ledger)

	if transferLimiter != nil {
		registerTransferRoutes(v1, services.Reservation, transferLimiter)
	} else {
		registerTransferRoutes(v1, services.Reservation)
	}
}
