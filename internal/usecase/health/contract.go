package health

import "context"

// CachePinger checks resolution cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// Checker checks one upstream provider or local backend.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
