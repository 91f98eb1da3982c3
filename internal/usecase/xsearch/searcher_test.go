package xsearch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/zkaiera/last30days-skill/internal/domain"
)

type mockPoster struct {
	payload map[string]any
	timeout time.Duration
	err     error
}

func (m *mockPoster) Post(_ context.Context, payload map[string]any, timeout time.Duration) ([]byte, error) {
	m.payload = payload
	m.timeout = timeout
	if m.err != nil {
		return nil, m.err
	}
	return []byte(`{"output":"ok"}`), nil
}

func TestSearch_NativeTool(t *testing.T) {
	p := &mockPoster{}
	s := NewSearcher(p, "https://api.x.ai/v1")

	req := domain.SearchRequest{Topic: "bun 2.0", FromDate: "2026-01-01", ToDate: "2026-01-31", Depth: domain.DepthDeep}
	if _, err := s.Search(context.Background(), "grok-4-1-fast", req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tools, ok := p.payload["tools"].([]map[string]any)
	if !ok || len(tools) != 1 || tools[0]["type"] != "x_search" {
		t.Errorf("expected x_search tool, got %v", p.payload["tools"])
	}
	if _, ok := p.payload["plugins"]; ok {
		t.Error("native request must not carry plugins")
	}
	input := p.payload["input"].([]map[string]any)
	content := input[0]["content"].(string)
	if input[0]["role"] != "user" || !strings.Contains(content, "Find 40-60 high-quality") ||
		!strings.Contains(content, "from 2026-01-01 to 2026-01-31") {
		t.Errorf("unexpected input: %v", input)
	}
	if p.timeout != 180*time.Second {
		t.Errorf("expected deep timeout, got %v", p.timeout)
	}
}

func TestSearch_OpenRouterPlugin(t *testing.T) {
	p := &mockPoster{}
	s := NewSearcher(p, "https://openrouter.ai/api/v1")

	if _, err := s.Search(context.Background(), "x-ai/grok-4", domain.SearchRequest{Topic: "t"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plugins, ok := p.payload["plugins"].([]map[string]any)
	if !ok || plugins[0]["id"] != "web" {
		t.Errorf("expected web plugin, got %v", p.payload["plugins"])
	}
	if _, ok := p.payload["tools"]; ok {
		t.Error("OpenRouter request must not carry tools")
	}
}

func TestSearch_ErrorPropagates(t *testing.T) {
	p := &mockPoster{err: &domain.HTTPError{StatusCode: 403, Body: "not available"}}
	s := NewSearcher(p, "")

	_, err := s.Search(context.Background(), "grok", domain.SearchRequest{Topic: "t"})
	var he *domain.HTTPError
	if !errors.As(err, &he) || he.StatusCode != 403 {
		t.Errorf("expected wrapped HTTPError, got %v", err)
	}
}
