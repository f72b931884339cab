package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finhub/ledgerd/internal/middleware"
)

// healthHandler reports process liveness and, when a pinger is configured,
// backing-store reachability.
type healthHandler struct {
	ping func(ctx context.Context) error
}

// registerHealthRoutes registers the health check route. ping may be nil,
// in which case only liveness is reported.
func registerHealthRoutes(r *gin.Engine, ping func(ctx context.Context) error) {
	h := &healthHandler{ping: ping}
	r.GET("/health", h.health)
}

func (h *healthHandler) health(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			middleware.GetLoggerFromCtx(c.Request.Context()).Error("Health check database ping failed", slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
