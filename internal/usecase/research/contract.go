package research

import (
	"context"

	"github.com/zkaiera/last30days-skill/internal/domain"
)

// RedditSearcher issues one LLM-backed Reddit search (with model fallback).
type RedditSearcher interface {
	Search(ctx context.Context, model string, req domain.SearchRequest) ([]byte, error)
}

// RedditLadder broadens a sparse first Reddit search.
type RedditLadder interface {
	Run(ctx context.Context, req domain.SearchRequest, model string, items []domain.RedditItem) []domain.RedditItem
}

// XSearcher issues one xAI-backed X search.
type XSearcher interface {
	Search(ctx context.Context, model string, req domain.SearchRequest) ([]byte, error)
}

// BirdSearcher searches X through the local CLI.
type BirdSearcher interface {
	Search(ctx context.Context, req domain.SearchRequest) domain.SearchOutcome[domain.XItem]
	SearchHandles(ctx context.Context, handles []string, topic, from string, countPer int) []domain.XItem
}

// SubredditSearcher searches specific subreddits without credentials.
type SubredditSearcher interface {
	SearchSubreddits(ctx context.Context, subreddits []string, query string, limit int) []domain.RedditItem
}

// Enricher fills a Reddit item with thread details.
type Enricher interface {
	Enrich(ctx context.Context, item domain.RedditItem) (domain.RedditItem, error)
}
