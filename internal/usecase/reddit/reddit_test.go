package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/zkaiera/last30days-skill/internal/domain"
)

// --- Mocks ---

type postCall struct {
	model      string
	hasInclude bool
	input      string
}

type mockPoster struct {
	calls []postCall
	// respond returns the result for the n-th call (0-based).
	respond func(n int, payload map[string]any) ([]byte, error)
}

func (m *mockPoster) Post(_ context.Context, payload map[string]any, _ time.Duration) ([]byte, error) {
	_, inc := payload["include"]
	input, _ := payload["input"].(string)
	m.calls = append(m.calls, postCall{model: payload["model"].(string), hasInclude: inc, input: input})
	return m.respond(len(m.calls)-1, payload)
}

func accessErr() error {
	return &domain.HTTPError{StatusCode: 403, Body: `{"error":{"message":"Your organization must be verified to use gpt-5"}}`}
}

type mockSearcher struct {
	queries []string
	results map[string][]string // topic -> urls
	err     map[string]error
}

func (m *mockSearcher) Search(_ context.Context, _ string, req domain.SearchRequest) ([]byte, error) {
	m.queries = append(m.queries, req.Topic)
	if err := m.err[req.Topic]; err != nil {
		return nil, err
	}
	return responseWithURLs(m.results[req.Topic]), nil
}

func responseWithURLs(urls []string) []byte {
	items := make([]map[string]any, 0, len(urls))
	for i, u := range urls {
		items = append(items, map[string]any{"title": fmt.Sprintf("t%d", i), "url": u, "subreddit": "sub"})
	}
	text, _ := json.Marshal(map[string]any{"items": items})
	out, _ := json.Marshal(map[string]any{"output": string(text)})
	return out
}

func redditURL(id string) string {
	return "https://www.reddit.com/r/nanobanana/comments/" + id + "/"
}

// --- Tests ---

func TestSubredditQuery(t *testing.T) {
	if got := SubredditQuery("best nano banana prompting practices"); got != "r/nanobanana site:reddit.com" {
		t.Errorf("unexpected query %q", got)
	}
	if got := SubredditQuery("Next.js"); got != "r/nextjs site:reddit.com" {
		t.Errorf("unexpected query %q", got)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		access  bool
		include bool
	}{
		{"verification", accessErr(), true, false},
		{"not found 400", &domain.HTTPError{StatusCode: 400, Body: "model not found"}, true, false},
		{"rate limit", &domain.HTTPError{StatusCode: 429, Body: "not available"}, false, false},
		{"server", &domain.HTTPError{StatusCode: 500, Body: "verified"}, false, false},
		{"include zod", &domain.HTTPError{StatusCode: 400, Body: `ZodError: include[0] invalid_value`}, false, true},
		{"include option", &domain.HTTPError{StatusCode: 400, Body: "Invalid option for 'include'"}, false, true},
		{"plain error", errors.New("timeout"), false, false},
		{"wrapped", fmt.Errorf("post: %w", accessErr()), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAccessError(tt.err); got != tt.access {
				t.Errorf("IsAccessError = %v, want %v", got, tt.access)
			}
			if got := IsInvalidIncludeError(tt.err); got != tt.include {
				t.Errorf("IsInvalidIncludeError = %v, want %v", got, tt.include)
			}
		})
	}
}

func TestSearcher_Success(t *testing.T) {
	p := &mockPoster{respond: func(int, map[string]any) ([]byte, error) { return []byte(`{"output":"ok"}`), nil }}
	s := NewSearcher(p, SearcherConfig{BaseURL: "https://api.openai.com/v1"})

	body, err := s.Search(context.Background(), "gpt-5.2", domain.SearchRequest{Topic: "go generics", Depth: domain.DepthQuick})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"output":"ok"}` {
		t.Errorf("unexpected body %s", body)
	}
	if len(p.calls) != 1 || !p.calls[0].hasInclude || p.calls[0].model != "gpt-5.2" {
		t.Errorf("unexpected calls: %+v", p.calls)
	}
}

func TestSearcher_OpenRouterOmitsInclude(t *testing.T) {
	p := &mockPoster{respond: func(int, map[string]any) ([]byte, error) { return []byte(`{}`), nil }}
	s := NewSearcher(p, SearcherConfig{BaseURL: "https://openrouter.ai/api/v1"})

	if _, err := s.Search(context.Background(), "openai/gpt-5", domain.SearchRequest{Topic: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.calls[0].hasInclude {
		t.Error("include must be omitted for OpenRouter")
	}
}

func TestSearcher_AccessFallback(t *testing.T) {
	p := &mockPoster{respond: func(n int, _ map[string]any) ([]byte, error) {
		if n < 2 {
			return nil, accessErr()
		}
		return []byte(`{"output":"ok"}`), nil
	}}
	s := NewSearcher(p, SearcherConfig{})

	if _, err := s.Search(context.Background(), "gpt-4.1", domain.SearchRequest{Topic: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := []string{p.calls[0].model, p.calls[1].model, p.calls[2].model}
	want := []string{"gpt-4.1", "gpt-4o", "gpt-4o-mini"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d: model %q, want %q (duplicates must be skipped)", i, got[i], want[i])
		}
	}
}

func TestSearcher_NonAccessErrorAborts(t *testing.T) {
	p := &mockPoster{respond: func(int, map[string]any) ([]byte, error) {
		return nil, &domain.HTTPError{StatusCode: 500, Body: "internal"}
	}}
	s := NewSearcher(p, SearcherConfig{})

	_, err := s.Search(context.Background(), "gpt-5", domain.SearchRequest{Topic: "x"})
	if he, ok := domain.AsHTTPError(err); !ok || he.StatusCode != 500 {
		t.Fatalf("expected 500 error, got %v", err)
	}
	if len(p.calls) != 1 {
		t.Errorf("expected a single call, got %d", len(p.calls))
	}
}

func TestSearcher_ExhaustionReturnsLastAccessError(t *testing.T) {
	p := &mockPoster{respond: func(n int, _ map[string]any) ([]byte, error) {
		return nil, &domain.HTTPError{StatusCode: 403, Body: fmt.Sprintf("does not have access #%d", n)}
	}}
	s := NewSearcher(p, SearcherConfig{FallbackModels: []string{"a", "b"}})

	_, err := s.Search(context.Background(), "gpt-5", domain.SearchRequest{Topic: "x"})
	he, ok := domain.AsHTTPError(err)
	if !ok || he.Body != "does not have access #2" {
		t.Fatalf("expected last access error, got %v", err)
	}
}

func TestSearcher_IncludeStripRetry(t *testing.T) {
	p := &mockPoster{respond: func(n int, payload map[string]any) ([]byte, error) {
		if _, ok := payload["include"]; ok {
			return nil, &domain.HTTPError{StatusCode: 400, Body: "include: invalid option"}
		}
		return []byte(`{"output":"ok"}`), nil
	}}
	s := NewSearcher(p, SearcherConfig{})

	if _, err := s.Search(context.Background(), "gpt-5", domain.SearchRequest{Topic: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.calls) != 2 || !p.calls[0].hasInclude || p.calls[1].hasInclude {
		t.Errorf("expected one stripped retry on the same model, got %+v", p.calls)
	}
	if p.calls[1].model != "gpt-5" {
		t.Errorf("strip retry must keep the model, got %q", p.calls[1].model)
	}
}

func TestSearcher_IncludeStripThenAccessFallback(t *testing.T) {
	p := &mockPoster{respond: func(n int, payload map[string]any) ([]byte, error) {
		switch {
		case n == 0:
			return nil, &domain.HTTPError{StatusCode: 400, Body: "zodError in include"}
		case n == 1:
			return nil, accessErr()
		default:
			return []byte(`{"output":"ok"}`), nil
		}
	}}
	s := NewSearcher(p, SearcherConfig{})

	if _, err := s.Search(context.Background(), "gpt-5", domain.SearchRequest{Topic: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.calls) != 3 || p.calls[2].model != "gpt-4.1" {
		t.Errorf("expected fallback to gpt-4.1 after stripped retry, got %+v", p.calls)
	}
}

func TestSearcher_PromptCarriesDepthTarget(t *testing.T) {
	p := &mockPoster{respond: func(int, map[string]any) ([]byte, error) { return []byte(`{}`), nil }}
	s := NewSearcher(p, SearcherConfig{})
	_, _ = s.Search(context.Background(), "gpt-5", domain.SearchRequest{Topic: "htmx", Depth: domain.DepthDeep})

	in := p.calls[0].input
	if !strings.Contains(in, "Find Reddit discussion threads about: htmx") || !strings.Contains(in, "Find 70-100 threads") {
		t.Errorf("unexpected prompt: %s", in)
	}
}

func TestLadder_NanoBananaScenario(t *testing.T) {
	topic := "best nano banana prompting practices"
	ms := &mockSearcher{results: map[string][]string{
		"nano banana":                  {redditURL("a")},
		"r/nanobanana site:reddit.com": {redditURL("b"), redditURL("d")},
	}}
	l := NewLadder(ms, nil)

	first := []domain.RedditItem{{ID: "R1", URL: redditURL("a")}, {ID: "R2", URL: redditURL("b")}}
	req := domain.SearchRequest{Topic: topic, Depth: domain.DepthDefault}
	items := l.Run(context.Background(), req, "gpt-5", first)

	want := []string{"nano banana", "r/nanobanana site:reddit.com"}
	if len(ms.queries) != 2 || ms.queries[0] != want[0] || ms.queries[1] != want[1] {
		t.Fatalf("unexpected queries %v", ms.queries)
	}
	if len(items) != 3 {
		t.Fatalf("expected union of 3 URLs, got %d", len(items))
	}
	if items[2].URL != redditURL("d") {
		t.Errorf("expected new item appended last, got %s", items[2].URL)
	}
}

func TestLadder_CoreRetryEnoughStopsLadder(t *testing.T) {
	ms := &mockSearcher{results: map[string][]string{
		"nano banana": {redditURL("c"), redditURL("d")},
	}}
	l := NewLadder(ms, nil)

	first := []domain.RedditItem{{URL: redditURL("a")}, {URL: redditURL("b")}}
	items := l.Run(context.Background(), domain.SearchRequest{Topic: "best nano banana prompting practices"}, "gpt-5", first)

	if len(ms.queries) != 1 {
		t.Errorf("subreddit guess must not fire once 3 items exist, got %v", ms.queries)
	}
	if len(items) != 4 {
		t.Errorf("expected 4 items, got %d", len(items))
	}
}

func TestLadder_SubredditGuessWhenStillSparse(t *testing.T) {
	topic := "best nano banana prompting practices"
	ms := &mockSearcher{results: map[string][]string{
		"nano banana":                  {redditURL("a")},
		"r/nanobanana site:reddit.com": {redditURL("b"), redditURL("a"), redditURL("d")},
	}}
	l := NewLadder(ms, nil)

	first := []domain.RedditItem{{ID: "R1", URL: redditURL("a")}, {ID: "R2", URL: redditURL("z")}}
	items := l.Run(context.Background(), domain.SearchRequest{Topic: topic}, "gpt-5", first)

	want := []string{"nano banana", "r/nanobanana site:reddit.com"}
	if len(ms.queries) != 2 || ms.queries[0] != want[0] || ms.queries[1] != want[1] {
		t.Fatalf("unexpected queries %v", ms.queries)
	}
	if len(items) != 4 {
		t.Fatalf("expected URL-deduplicated union of 4, got %d", len(items))
	}
	seen := map[string]bool{}
	for _, it := range items {
		if seen[it.URL] {
			t.Errorf("duplicate URL %s", it.URL)
		}
		seen[it.URL] = true
	}
}

func TestLadder_SkipsCoreRetryWhenCoreEqualsTopic(t *testing.T) {
	ms := &mockSearcher{results: map[string][]string{}}
	l := NewLadder(ms, nil)

	first := []domain.RedditItem{{URL: redditURL("a")}, {URL: redditURL("b")}, {URL: redditURL("c")}}
	l.Run(context.Background(), domain.SearchRequest{Topic: "Clawdbot"}, "gpt-5", first)

	if len(ms.queries) != 0 {
		t.Errorf("no retry expected when core subject equals topic and 3 items exist, got %v", ms.queries)
	}
}

func TestLadder_RetryErrorsKeepItems(t *testing.T) {
	boom := errors.New("timeout")
	ms := &mockSearcher{err: map[string]error{
		"nano banana":                  boom,
		"r/nanobanana site:reddit.com": boom,
	}}
	l := NewLadder(ms, nil)

	first := []domain.RedditItem{{URL: redditURL("a")}}
	items := l.Run(context.Background(), domain.SearchRequest{Topic: "best nano banana prompting practices"}, "gpt-5", first)
	if len(items) != 1 || items[0].URL != redditURL("a") {
		t.Errorf("expected original items kept, got %+v", items)
	}
	if len(ms.queries) != 2 {
		t.Errorf("expected both retries attempted, got %v", ms.queries)
	}
}

func TestLadder_EnoughItemsNoRetry(t *testing.T) {
	ms := &mockSearcher{}
	l := NewLadder(ms, nil)
	first := make([]domain.RedditItem, 5)
	for i := range first {
		first[i].URL = redditURL(fmt.Sprint(i))
	}
	l.Run(context.Background(), domain.SearchRequest{Topic: "best nano banana prompting practices"}, "gpt-5", first)
	if len(ms.queries) != 0 {
		t.Errorf("expected no retries, got %v", ms.queries)
	}
}
