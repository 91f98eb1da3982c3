// Package reddit searches Reddit through a web-search model and escalates
// sparse results through a retry ladder.
package reddit

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zkaiera/last30days-skill/internal/domain"
	"github.com/zkaiera/last30days-skill/internal/metrics"
)

// DefaultFallbackModels are tried, in order, after an access error.
var DefaultFallbackModels = []string{"gpt-4.1", "gpt-4o", "gpt-4o-mini"}

const includeSources = "web_search_call.action.sources"

var accessMarkers = []string{
	"verified",
	"organization must be",
	"does not have access",
	"not available",
	"not found",
}

var includeMarkers = []string{"invalid option", "invalid_value", "zoderror"}

// IsAccessError reports whether err means the model is not usable by this
// account (unverified organization, no access), as opposed to a transient
// or request error.
func IsAccessError(err error) bool {
	he, ok := domain.AsHTTPError(err)
	if !ok || (he.StatusCode != 400 && he.StatusCode != 403) || he.Body == "" {
		return false
	}
	body := strings.ToLower(he.Body)
	for _, m := range accessMarkers {
		if strings.Contains(body, m) {
			return true
		}
	}
	return false
}

// IsInvalidIncludeError reports whether a gateway rejected the include option.
func IsInvalidIncludeError(err error) bool {
	he, ok := domain.AsHTTPError(err)
	if !ok || he.StatusCode != 400 || he.Body == "" {
		return false
	}
	body := strings.ToLower(he.Body)
	if !strings.Contains(body, "include") {
		return false
	}
	for _, m := range includeMarkers {
		if strings.Contains(body, m) {
			return true
		}
	}
	return false
}

// SearcherConfig configures a Searcher.
type SearcherConfig struct {
	// BaseURL is only inspected for gateway quirks; the poster owns the endpoint.
	BaseURL string
	// FallbackModels overrides DefaultFallbackModels when non-empty.
	FallbackModels []string
	Logger         *zap.Logger
}

// Searcher runs a Reddit web search through the Responses API.
type Searcher struct {
	client         poster
	fallbackModels []string
	withSources    bool
	logger         *zap.Logger
}

// NewSearcher creates a Searcher.
func NewSearcher(client poster, cfg SearcherConfig) *Searcher {
	fallback := cfg.FallbackModels
	if len(fallback) == 0 {
		fallback = DefaultFallbackModels
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{
		client:         client,
		fallbackModels: fallback,
		withSources:    !domain.IsOpenRouter(cfg.BaseURL),
		logger:         logger,
	}
}

// Search returns the raw response of the first model that accepts the
// request. Only access errors move on to the next model; exhaustion returns
// the last access error.
func (s *Searcher) Search(ctx context.Context, model string, req domain.SearchRequest) ([]byte, error) {
	target := req.Depth.RedditTarget()
	input := buildPrompt(req.Topic, target.Min, target.Max)
	timeout := req.Depth.LLMTimeout()

	var lastErr error
	for _, m := range s.modelsToTry(model) {
		payload := map[string]any{
			"model": m,
			"tools": []map[string]any{{
				"type":    "web_search",
				"filters": map[string]any{"allowed_domains": []string{"reddit.com"}},
			}},
			"input": input,
		}
		if s.withSources {
			payload["include"] = []string{includeSources}
		}

		body, err := s.client.Post(ctx, payload, timeout)
		if err == nil {
			return body, nil
		}

		if s.withSources && IsInvalidIncludeError(err) {
			delete(payload, "include")
			body, err = s.client.Post(ctx, payload, timeout)
			if err == nil {
				return body, nil
			}
		}

		lastErr = err
		if !IsAccessError(err) {
			return nil, err
		}
		s.logger.Info("Model not accessible, trying fallback", zap.String("model", m), zap.Error(err))
		metrics.ModelFallbackTotal.WithLabelValues(string(domain.ProviderOpenAI)).Inc()
	}

	if lastErr != nil {
		s.logger.Warn("All models failed", zap.Error(lastErr))
		return nil, lastErr
	}
	return nil, fmt.Errorf("reddit search: %w", domain.ErrNoModels)
}

func (s *Searcher) modelsToTry(model string) []string {
	out := make([]string, 0, len(s.fallbackModels)+1)
	if model != "" {
		out = append(out, model)
	}
	for _, m := range s.fallbackModels {
		if m != model {
			out = append(out, m)
		}
	}
	return out
}
