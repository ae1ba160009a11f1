package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// HealthHandler responde el estado del servicio y de MongoDB
type HealthHandler struct {
	ping func(ctx context.Context) error
}

func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// GetHealth 200 si la base responde, 503 si no
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	health, database, code := "healthy", "connected", http.StatusOK
	if err := h.ping(ctx); err != nil {
		health, database, code = "degraded", "disconnected", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":   health,
		"uptime":   int(time.Since(startTime).Seconds()),
		"database": database,
	})
}
