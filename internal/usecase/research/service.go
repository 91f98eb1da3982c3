// Package research runs a research pass across Reddit and X.
package research

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zkaiera/last30days-skill/internal/domain"
	"github.com/zkaiera/last30days-skill/internal/metrics"
	"github.com/zkaiera/last30days-skill/internal/usecase/parse"
)

// maxConcurrentSearches bounds both the provider fan-out and the phase-2 fan-out.
const maxConcurrentSearches = 2

// Fixtures replace network responses in mock runs.
type Fixtures struct {
	OpenAI []byte
	XAI    []byte
}

// Deps are the collaborators of a Service. Nil entries disable the
// corresponding provider or stage.
type Deps struct {
	Reddit     RedditSearcher
	Ladder     RedditLadder
	XAI        XSearcher
	Bird       BirdSearcher
	Subreddits SubredditSearcher
	Enricher   Enricher
	Fixtures   Fixtures
}

// Params describe one run.
type Params struct {
	Topic       string
	Sources     domain.Sources
	FromDate    string
	ToDate      string
	Depth       domain.Depth
	XBackend    domain.XBackend
	OpenAIModel string
	XAIModel    string
	// Mock reads provider responses from Fixtures and skips retries and phase 2.
	Mock bool
}

func (p Params) request(provider domain.Provider) domain.SearchRequest {
	return domain.SearchRequest{
		Topic:    p.Topic,
		FromDate: p.FromDate,
		ToDate:   p.ToDate,
		Depth:    p.Depth,
		Provider: provider,
		Backend:  p.XBackend,
	}
}

// Service orchestrates provider searches.
type Service struct {
	deps   Deps
	logger *zap.Logger
}

// New creates a Service.
func New(deps Deps, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{deps: deps, logger: logger}
}

// Run executes phase 1 (both providers concurrently), enrichment and
// phase 2. It never fails as a whole: provider failures are reported in
// Result.RedditError and Result.XError next to whatever items were found.
func (s *Service) Run(ctx context.Context, p Params) domain.Result {
	res := domain.Result{WebNeeded: p.Sources.WebNeeded()}
	if p.Sources == domain.SourcesWeb {
		return res
	}

	var reddit domain.SearchOutcome[domain.RedditItem]
	var xo domain.SearchOutcome[domain.XItem]

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentSearches)
	if p.Sources.RunReddit() {
		g.Go(func() error {
			reddit = s.searchReddit(ctx, p)
			return nil
		})
	}
	if p.Sources.RunX() {
		g.Go(func() error {
			xo = s.searchX(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	res.RawOpenAI, res.RawXAI = reddit.Raw, xo.Raw
	res.RedditError, res.XError = errString(reddit.Err), errString(xo.Err)
	if reddit.Err != nil {
		s.logger.Warn("Reddit search failed", zap.Error(reddit.Err))
	}
	if xo.Err != nil {
		s.logger.Warn("X search failed", zap.Error(xo.Err))
	}

	res.RedditItems = s.enrich(ctx, reddit.Items)
	res.RawRedditEnriched = append([]domain.RedditItem(nil), res.RedditItems...)
	res.XItems = xo.Items

	if p.Depth != domain.DepthQuick && !p.Mock && (len(res.RedditItems) > 0 || len(res.XItems) > 0) {
		supReddit, supX := s.supplemental(ctx, p, res.RedditItems, res.XItems)
		res.RedditItems = append(res.RedditItems, supReddit...)
		res.XItems = append(res.XItems, supX...)
	}
	return res
}

// providerError wraps failures surfaced on the run result.
type providerError struct {
	msg string
}

func (e *providerError) Error() string { return e.msg }

func apiError(err error) error {
	return &providerError{msg: "API error: " + err.Error()}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func errorRaw(err error) json.RawMessage {
	data, _ := json.Marshal(map[string]string{"error": err.Error()})
	return data
}

func (s *Service) searchReddit(ctx context.Context, p Params) (out domain.SearchOutcome[domain.RedditItem]) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Reddit search panicked", zap.Any("panic", r))
			out.Err = &providerError{msg: fmt.Sprintf("panic: %v", r)}
		}
	}()

	req := p.request(domain.ProviderOpenAI)

	var raw []byte
	switch {
	case p.Mock:
		raw = s.deps.Fixtures.OpenAI
	case s.deps.Reddit == nil:
		out.Err = fmt.Errorf("reddit: %w", domain.ErrProviderUnavailable)
		return out
	default:
		var err error
		raw, err = s.deps.Reddit.Search(ctx, p.OpenAIModel, req)
		if err != nil {
			out.Err = apiError(err)
			out.Raw = errorRaw(err)
			return out
		}
	}
	out.Raw = raw

	items, err := parse.RedditItems(raw)
	if err != nil {
		s.logger.Warn("Reddit response had no items", zap.Error(err))
	}
	metrics.ProviderItemsTotal.WithLabelValues("reddit", "search").Add(float64(len(items)))

	if !p.Mock && s.deps.Ladder != nil {
		items = s.deps.Ladder.Run(ctx, req, p.OpenAIModel, items)
	}
	out.Items = items
	return out
}

func (s *Service) searchX(ctx context.Context, p Params) (out domain.SearchOutcome[domain.XItem]) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("X search panicked", zap.Any("panic", r))
			out.Err = &providerError{msg: fmt.Sprintf("panic: %v", r)}
		}
	}()

	req := p.request(domain.ProviderXAI)

	var raw []byte
	switch {
	case p.Mock:
		raw = s.deps.Fixtures.XAI
	case p.XBackend == domain.XBackendBird && s.deps.Bird != nil:
		out = s.deps.Bird.Search(ctx, req)
		if len(out.Raw) == 0 && out.Err != nil {
			out.Raw = errorRaw(out.Err)
		}
		metrics.ProviderItemsTotal.WithLabelValues("x", "search").Add(float64(len(out.Items)))
		return out
	case s.deps.XAI == nil:
		out.Err = fmt.Errorf("x: %w", domain.ErrProviderUnavailable)
		return out
	default:
		var err error
		raw, err = s.deps.XAI.Search(ctx, p.XAIModel, req)
		if err != nil {
			out.Err = apiError(err)
			out.Raw = errorRaw(err)
			return out
		}
	}
	out.Raw = raw

	items, err := parse.XItems(raw)
	if err != nil {
		s.logger.Warn("X response had no items", zap.Error(err))
	}
	metrics.ProviderItemsTotal.WithLabelValues("x", "search").Add(float64(len(items)))
	out.Items = items
	return out
}

// enrich fills each item sequentially; failed items are kept as they were.
func (s *Service) enrich(ctx context.Context, items []domain.RedditItem) []domain.RedditItem {
	if s.deps.Enricher == nil || len(items) == 0 {
		return items
	}
	out := make([]domain.RedditItem, len(items))
	for i, it := range items {
		enriched, err := s.deps.Enricher.Enrich(ctx, it)
		if err != nil {
			s.logger.Debug("Enrichment failed", zap.String("url", it.URL), zap.Error(err))
			out[i] = it
			continue
		}
		out[i] = enriched
	}
	return out
}
