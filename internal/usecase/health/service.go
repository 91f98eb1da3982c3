package health

import (
	"context"
	"sort"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates that no search provider is usable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	cache     CachePinger
	providers map[string]Checker
}

// New creates a Service. cache can be nil for the in-process caches;
// providers maps a check name (openai, xai, bird) to its checker.
func New(cache CachePinger, providers map[string]Checker) *Service {
	return &Service{cache: cache, providers: providers}
}

// Names returns the configured provider check names in order.
func (s *Service) Names() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check runs health checks against all components. The status is
// Unhealthy when providers are configured and none of them passes.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	providersUp := 0
	for _, name := range s.Names() {
		if err := s.providers[name].HealthCheck(ctx); err != nil {
			checks[name] = CheckError
			continue
		}
		checks[name] = CheckOK
		providersUp++
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if len(s.providers) > 0 && providersUp == 0 {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}
