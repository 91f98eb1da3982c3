// Package xsearch searches X through the xAI Responses API.
package xsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/zkaiera/last30days-skill/internal/domain"
)

const searchPrompt = `You have access to real-time X (Twitter) data. Search for posts about: %[1]s

Focus on posts from %[2]s to %[3]s. Find %[4]d-%[5]d high-quality, relevant posts.

IMPORTANT: Return ONLY valid JSON in this exact format, no other text:
{
  "items": [
    {
      "text": "Post text content (truncated if long)",
      "url": "https://x.com/user/status/...",
      "author_handle": "username",
      "date": "YYYY-MM-DD or null if unknown",
      "engagement": {
        "likes": 100,
        "reposts": 25,
        "replies": 15,
        "quotes": 5
      },
      "why_relevant": "Brief explanation of relevance",
      "relevance": 0.85
    }
  ]
}

Rules:
- relevance is 0.0 to 1.0 (1.0 = highly relevant)
- date must be YYYY-MM-DD format or null
- engagement can be null if unknown
- Include diverse voices/accounts if applicable
- Prefer posts with substantive content, not just links`

type poster interface {
	Post(ctx context.Context, payload map[string]any, timeout time.Duration) ([]byte, error)
}

// Searcher issues X searches. It has no model fallback: errors propagate.
type Searcher struct {
	client     poster
	openRouter bool
}

// NewSearcher creates a Searcher. baseURL selects the OpenRouter payload shape.
func NewSearcher(client poster, baseURL string) *Searcher {
	return &Searcher{client: client, openRouter: domain.IsOpenRouter(baseURL)}
}

// Search returns the raw Responses payload for req.
func (s *Searcher) Search(ctx context.Context, model string, req domain.SearchRequest) ([]byte, error) {
	target := req.Depth.XTarget()
	prompt := fmt.Sprintf(searchPrompt, req.Topic, req.FromDate, req.ToDate, target.Min, target.Max)

	payload := map[string]any{
		"model": model,
		"input": []map[string]any{{"role": "user", "content": prompt}},
	}
	if s.openRouter {
		// OpenRouter does not honor x_search; its web plugin covers X for xAI models.
		payload["plugins"] = []map[string]any{{"id": "web"}}
	} else {
		payload["tools"] = []map[string]any{{"type": "x_search"}}
	}

	body, err := s.client.Post(ctx, payload, req.Depth.LLMTimeout())
	if err != nil {
		return nil, fmt.Errorf("x search: %w", err)
	}
	return body, nil
}
