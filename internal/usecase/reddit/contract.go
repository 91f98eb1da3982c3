package reddit

import (
	"context"
	"time"

	"github.com/zkaiera/last30days-skill/internal/domain"
)

// poster sends a Responses API request and returns the raw body.
type poster interface {
	Post(ctx context.Context, payload map[string]any, timeout time.Duration) ([]byte, error)
}

// searcher issues one Reddit search.
type searcher interface {
	Search(ctx context.Context, model string, req domain.SearchRequest) ([]byte, error)
}
