package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports service health.
type HealthHandler struct {
	db      Pinger
	service string
	timeout time.Duration
	log     *zap.Logger
}

// NewHealthHandler creates a HealthHandler that pings db with a 2 second budget.
func NewHealthHandler(db Pinger, service string, log *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, service: service, timeout: 2 * time.Second, log: log}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": h.service,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.service,
	})
}
