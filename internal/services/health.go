package services

import (
	"context"
	"log"
	"time"

	"github.com/ecohistorias/eco-api/internal/database"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
	Redis     string    `json:"redis,omitempty"`
}

// Healthy reports whether every dependency answered
func (r HealthCheckResult) Healthy() bool {
	return r.Status == "healthy"
}

// HealthCheck pings the database and, when configured, Redis. Failure details
// are logged, not returned.
func HealthCheck(ctx context.Context, db *gorm.DB, rdb *redis.Client) HealthCheckResult {
	result := HealthCheckResult{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Database:  "ok",
	}

	if err := database.Ping(ctx, db); err != nil {
		result.Status = "unhealthy"
		result.Database = "unreachable"
		log.Printf("Health check failed - database ping: %v", err)
	}

	if rdb != nil {
		result.Redis = "ok"
		if err := rdb.Ping(ctx).Err(); err != nil {
			result.Status = "unhealthy"
			result.Redis = "unreachable"
			log.Printf("Health check failed - redis ping: %v", err)
		}
	}

	return result
}
