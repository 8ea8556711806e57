package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/nkjh2020/investment-manager/internal/api/response"
	"github.com/nkjh2020/investment-manager/internal/infra/database/postgres"
	"github.com/nkjh2020/investment-manager/internal/service/marketdata"
)

// DBHealthChecker reports PostgreSQL pool health
type DBHealthChecker interface {
	Health(ctx context.Context) *postgres.HealthStatus
}

// RedisPinger is satisfied by redis.UniversalClient
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// PriceCacheStats exposes price cache counters
type PriceCacheStats interface {
	Stats(ctx context.Context) marketdata.CacheStats
}

// HealthDeps optional components; nil ones are reported as "disabled"
type HealthDeps struct {
	DB     DBHealthChecker
	Redis  RedisPinger
	Prices PriceCacheStats
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	deps      HealthDeps
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(deps HealthDeps, version string) *HealthHandler {
	return &HealthHandler{
		deps:      deps,
		startTime: time.Now(),
		version:   version,
	}
}

// ReadyResponse represents a readiness check response
type ReadyResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// DetailedHealthResponse represents detailed health information
type DetailedHealthResponse struct {
	Status        string                 `json:"status"`
	Version       string                 `json:"version"`
	UptimeSeconds int64                  `json:"uptime_seconds"`
	Checks        map[string]string      `json:"checks"`
	Database      *postgres.HealthStatus `json:"database,omitempty"`
	PriceCache    *marketdata.CacheStats `json:"price_cache,omitempty"`
}

// Health returns simple liveness check
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

// Ready checks the optional backing stores
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	checks, ready, _ := h.check(c.Request.Context())

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	c.JSON(code, ReadyResponse{Status: status, Timestamp: time.Now(), Checks: checks})
}

// Detailed returns component health plus cache counters
// GET /api/health/detailed
func (h *HealthHandler) Detailed(c *gin.Context) {
	ctx := c.Request.Context()
	checks, ready, db := h.check(ctx)

	resp := DetailedHealthResponse{
		Status:        "healthy",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        checks,
		Database:      db,
	}
	if !ready {
		resp.Status = "unhealthy"
	}
	if h.deps.Prices != nil {
		stats := h.deps.Prices.Stats(ctx)
		resp.PriceCache = &stats
	}

	response.Success(c, resp)
}

func (h *HealthHandler) check(ctx context.Context) (map[string]string, bool, *postgres.HealthStatus) {
	checks := map[string]string{"database": "disabled", "redis": "disabled"}
	ready := true

	var db *postgres.HealthStatus
	if h.deps.DB != nil {
		db = h.deps.DB.Health(ctx)
		checks["database"] = "ok"
		if db.Status == "unhealthy" {
			checks["database"] = "error"
			ready = false
		}
	}

	if h.deps.Redis != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		checks["redis"] = "ok"
		if err := h.deps.Redis.Ping(pingCtx).Err(); err != nil {
			checks["redis"] = "error"
			ready = false
		}
	}

	return checks, ready, db
}
