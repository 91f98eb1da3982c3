package xsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zkaiera/last30days-skill/internal/domain"
	"github.com/zkaiera/last30days-skill/internal/usecase/parse"
)

// handleSearchTimeout bounds one per-handle query.
const handleSearchTimeout = 30 * time.Second

// errEmptyOutput marks a successful exit with nothing on stdout.
var errEmptyOutput = errors.New("empty response from bird")

// cli runs a bird search and returns its stdout.
type cli interface {
	Search(ctx context.Context, query string, count int, timeout time.Duration) ([]byte, error)
}

// BirdSearcher searches X through the local bird CLI. Since bird has no date
// flag, the window start goes into the query as since:<date>.
type BirdSearcher struct {
	cli    cli
	logger *zap.Logger
}

// NewBirdSearcher creates a BirdSearcher.
func NewBirdSearcher(c cli, logger *zap.Logger) *BirdSearcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BirdSearcher{cli: c, logger: logger}
}

// Search never fails: process and parse errors land in the outcome.
func (b *BirdSearcher) Search(ctx context.Context, req domain.SearchRequest) domain.SearchOutcome[domain.XItem] {
	query := fmt.Sprintf("%s since:%s", req.Topic, req.FromDate)
	out, err := b.cli.Search(ctx, query, req.Depth.BirdCount(), req.Depth.BirdTimeout())
	if err != nil {
		return domain.SearchOutcome[domain.XItem]{Err: err}
	}
	if len(out) == 0 {
		return domain.SearchOutcome[domain.XItem]{Err: errEmptyOutput}
	}

	items, err := parse.BirdItems(out)
	if err != nil {
		return domain.SearchOutcome[domain.XItem]{Raw: out, Err: err}
	}
	return domain.SearchOutcome[domain.XItem]{Items: items, Raw: out}
}

// SearchHandles queries recent posts from each handle about the topic's
// core subject. Failed handles are logged and skipped.
func (b *BirdSearcher) SearchHandles(ctx context.Context, handles []string, topic, from string, countPer int) []domain.XItem {
	core := domain.CoreSubject(topic)

	var all []domain.XItem
	for _, h := range handles {
		query := fmt.Sprintf("from:%s %s since:%s", h, core, from)
		out, err := b.cli.Search(ctx, query, countPer, handleSearchTimeout)
		if err != nil {
			b.logger.Debug("Handle search failed", zap.String("handle", h), zap.Error(err))
			continue
		}
		if len(out) == 0 {
			continue
		}
		items, err := parse.BirdItems(out)
		if err != nil {
			b.logger.Debug("Handle search returned bad JSON", zap.String("handle", h), zap.Error(err))
			continue
		}
		all = append(all, items...)
	}
	return all
}
