package last30days

import "github.com/zkaiera/last30days-skill/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyTopic          = domain.ErrEmptyTopic
	ErrInvalidDays         = domain.ErrInvalidDays
	ErrInvalidSources      = domain.ErrInvalidSources
	ErrConflictingDepth    = domain.ErrConflictingDepth
	ErrProviderUnavailable = domain.ErrProviderUnavailable
)
