package research

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zkaiera/last30days-skill/internal/domain"
	"github.com/zkaiera/last30days-skill/internal/metrics"
	"github.com/zkaiera/last30days-skill/internal/usecase/entity"
)

// supplemental searches the handles and subreddits that phase 1 surfaced
// and returns only items whose URL phase 1 did not already return.
func (s *Service) supplemental(ctx context.Context, p Params, reddit []domain.RedditItem, x []domain.XItem) ([]domain.RedditItem, []domain.XItem) {
	maxEntities, countPer := p.Depth.SupplementalLimits()
	ents := entity.Extract(reddit, x, maxEntities, maxEntities)

	searchHandles := len(ents.XHandles) > 0 && p.XBackend == domain.XBackendBird && s.deps.Bird != nil
	searchSubs := len(ents.RedditSubreddits) > 0 && s.deps.Subreddits != nil
	if !searchHandles && !searchSubs {
		return nil, nil
	}

	s.logger.Debug("Supplemental search",
		zap.Strings("handles", ents.XHandles),
		zap.Strings("subreddits", ents.RedditSubreddits),
	)

	seen := make(map[string]struct{}, len(reddit)+len(x))
	for _, it := range reddit {
		seen[it.URL] = struct{}{}
	}
	for _, it := range x {
		seen[it.URL] = struct{}{}
	}

	var supReddit []domain.RedditItem
	var supX []domain.XItem

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentSearches)
	if searchSubs {
		g.Go(func() error {
			defer s.recoverSupplemental("subreddits")
			found := s.deps.Subreddits.SearchSubreddits(ctx, ents.RedditSubreddits, domain.CoreSubject(p.Topic), countPer)
			for _, it := range found {
				if _, dup := seen[it.URL]; !dup {
					supReddit = append(supReddit, it)
				}
			}
			return nil
		})
	}
	if searchHandles {
		g.Go(func() error {
			defer s.recoverSupplemental("handles")
			found := s.deps.Bird.SearchHandles(ctx, ents.XHandles, p.Topic, p.FromDate, countPer)
			for _, it := range found {
				if _, dup := seen[it.URL]; !dup {
					supX = append(supX, it)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	metrics.ProviderItemsTotal.WithLabelValues("reddit", "supplemental").Add(float64(len(supReddit)))
	metrics.ProviderItemsTotal.WithLabelValues("x", "supplemental").Add(float64(len(supX)))
	return supReddit, supX
}

func (s *Service) recoverSupplemental(target string) {
	if r := recover(); r != nil {
		s.logger.Warn("Supplemental search panicked", zap.String("target", target), zap.Any("panic", r))
	}
}
