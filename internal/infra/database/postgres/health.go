package postgres

import (
	"context"
	"fmt"
	"time"
)

// HealthStatus represents database health status
type HealthStatus struct {
	Status       string `json:"status"` // healthy, degraded, unhealthy
	ResponseTime string `json:"response_time"`
	TotalConns   int32  `json:"total_conns"`
	MaxConns     int32  `json:"max_conns"`
	Error        string `json:"error,omitempty"`
}

// Health pings the database and reports pool usage
func (p *Pool) Health(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{Status: "healthy"}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := p.Ping(pingCtx); err != nil {
		status.Status = "unhealthy"
		status.Error = fmt.Sprintf("ping failed: %v", err)
		status.ResponseTime = time.Since(start).String()
		return status
	}

	stats := p.Stat()
	status.TotalConns = stats.TotalConns()
	status.MaxConns = stats.MaxConns()
	status.ResponseTime = time.Since(start).String()

	if stats.AcquiredConns() >= stats.MaxConns()-1 {
		status.Status = "degraded"
		status.Error = "connection pool nearly exhausted"
	}

	return status
}
