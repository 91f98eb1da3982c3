package last30days

import (
	"context"
	"time"

	healthuc "github.com/zkaiera/last30days-skill/internal/usecase/health"
)

// HealthStatus represents the aggregated provider health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // openai, xai, bird, cache -> "ok"/"error"
}

// Health probes every configured provider and the shared cache.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	c.obs.observe("health", start, nil)
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
