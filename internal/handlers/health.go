package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ecohistorias/eco-api/internal/database"
	"github.com/ecohistorias/eco-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	rdb *redis.Client
}

// NewHealthHandler creates a HealthHandler. rdb may be nil.
func NewHealthHandler(rdb *redis.Client) *HealthHandler {
	return &HealthHandler{rdb: rdb}
}

// Health reports database and Redis reachability and is never cached
func (h *HealthHandler) Health(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	result := services.HealthCheck(ctx, database.GetDB(), h.rdb)
	status := http.StatusOK
	if !result.Healthy() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, result)
}
