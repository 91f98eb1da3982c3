package reddit

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/zkaiera/last30days-skill/internal/domain"
	"github.com/zkaiera/last30days-skill/internal/metrics"
	"github.com/zkaiera/last30days-skill/internal/usecase/parse"
)

// Ladder thresholds.
const (
	coreRetryBelow      = 5
	subredditRetryBelow = 3
)

// Ladder broadens a sparse Reddit search: first with the core subject, then
// with a subreddit guess. Retries are best-effort and merge by URL.
type Ladder struct {
	searcher searcher
	logger   *zap.Logger
}

// NewLadder creates a Ladder.
func NewLadder(s searcher, logger *zap.Logger) *Ladder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ladder{searcher: s, logger: logger}
}

// Run applies the ladder to the items of a successful first search.
func (l *Ladder) Run(ctx context.Context, req domain.SearchRequest, model string, items []domain.RedditItem) []domain.RedditItem {
	if len(items) < coreRetryBelow {
		core := domain.CoreSubject(req.Topic)
		if !strings.EqualFold(core, req.Topic) {
			items = l.retry(ctx, req.WithTopic(core), model, items)
		}
	}
	if len(items) < subredditRetryBelow {
		items = l.retry(ctx, req.WithTopic(SubredditQuery(req.Topic)), model, items)
	}
	return items
}

func (l *Ladder) retry(ctx context.Context, req domain.SearchRequest, model string, items []domain.RedditItem) []domain.RedditItem {
	raw, err := l.searcher.Search(ctx, model, req)
	if err != nil {
		l.logger.Debug("Reddit retry failed", zap.String("query", req.Topic), zap.Error(err))
		return items
	}
	found, err := parse.RedditItems(raw)
	if err != nil {
		l.logger.Debug("Reddit retry returned no items", zap.String("query", req.Topic), zap.Error(err))
		return items
	}
	merged := MergeByURL(items, found)
	if added := len(merged) - len(items); added > 0 {
		metrics.ProviderItemsTotal.WithLabelValues("reddit", "retry").Add(float64(added))
		l.logger.Debug("Reddit retry added items", zap.String("query", req.Topic), zap.Int("added", added))
	}
	return merged
}

// MergeByURL returns items followed by the entries of extra whose URL is new.
func MergeByURL(items, extra []domain.RedditItem) []domain.RedditItem {
	out := make([]domain.RedditItem, len(items), len(items)+len(extra))
	copy(out, items)
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		seen[it.URL] = struct{}{}
	}
	for _, it := range extra {
		if _, ok := seen[it.URL]; ok {
			continue
		}
		seen[it.URL] = struct{}{}
		out = append(out, it)
	}
	return out
}
