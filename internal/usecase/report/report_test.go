package report

import (
	"testing"
	"time"

	"github.com/zkaiera/last30days-skill/internal/domain"
)

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

const (
	from = "2026-09-16"
	to   = "2026-10-16"
)

func TestFilterReddit(t *testing.T) {
	items := []domain.RedditItem{
		{ID: "R1", Date: strPtr("2026-10-01")},
		{ID: "R2", Date: strPtr("2026-08-01")},
		{ID: "R3"},
		{ID: "R4", Date: strPtr(to)},
	}
	got := FilterReddit(items, from, to)
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	for _, it := range got {
		if it.ID == "R2" {
			t.Error("R2 is outside the window and should be dropped")
		}
	}
}

func TestBuild_MinimumRedditGuarantee(t *testing.T) {
	old := strPtr("2025-01-01")
	res := domain.Result{RedditItems: []domain.RedditItem{
		{ID: "R1", URL: "u1", Title: "a", Date: old, Relevance: 0.2},
		{ID: "R2", URL: "u2", Title: "b", Date: old, Relevance: 0.9},
		{ID: "R3", URL: "u3", Title: "c", Date: old, Relevance: 0.5},
		{ID: "R4", URL: "u4", Title: "d", Date: old, Relevance: 0.7},
	}}
	rep := Build("topic", from, to, "reddit-only", Models{OpenAI: "gpt-5.2"}, res)
	if len(rep.Reddit) != 3 {
		t.Fatalf("expected 3 guaranteed threads, got %d", len(rep.Reddit))
	}
	for _, e := range rep.Reddit {
		if e.ID == "R1" {
			t.Error("lowest relevance thread should not survive")
		}
	}
	if rep.OpenAIModelUsed != "gpt-5.2" || rep.Mode != "reddit-only" {
		t.Errorf("unexpected header: %+v", rep)
	}
}

func TestBuild_ScoresSortsAndDedupes(t *testing.T) {
	res := domain.Result{
		XItems: []domain.XItem{
			{ID: "X1", URL: "https://x.com/a/status/1", Text: "Hello, world!", Date: strPtr("2026-10-15"), Relevance: 0.5},
			{ID: "X2", URL: "https://x.com/b/status/2", Text: "hello world", Date: strPtr("2026-10-10"), Relevance: 0.4},
			{ID: "X3", URL: "https://x.com/c/status/3", Text: "popular", Date: strPtr("2026-10-15"), Relevance: 0.9,
				Engagement: &domain.XEngagement{Likes: intPtr(1000), Reposts: intPtr(50)}},
			{ID: "X4", URL: "https://x.com/c/status/3/", Text: "same url", Date: strPtr("2026-10-14"), Relevance: 0.1},
		},
		XError: "partial",
	}
	b := Builder{Now: func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }}
	rep := b.Build("topic", from, to, "x-only", Models{XAI: "grok-4-1-fast"}, res)

	if len(rep.X) != 2 {
		t.Fatalf("expected 2 posts after dedupe, got %d: %+v", len(rep.X), rep.X)
	}
	if rep.X[0].ID != "X3" {
		t.Errorf("expected engaged post first, got %s", rep.X[0].ID)
	}
	if rep.X[1].ID != "X1" {
		t.Errorf("expected X1 to win the text duplicate, got %s", rep.X[1].ID)
	}
	if rep.GeneratedAt != "2026-10-16T12:00:00Z" {
		t.Errorf("unexpected generated_at %q", rep.GeneratedAt)
	}
	if rep.XError != "partial" {
		t.Errorf("error not carried: %q", rep.XError)
	}
}

func TestScorer_Bounds(t *testing.T) {
	s := NewScorer(to)
	entries := s.ScoreReddit([]domain.RedditItem{
		{Relevance: 1, Date: strPtr(to), Engagement: &domain.RedditEngagement{Score: intPtr(500), NumComments: intPtr(80)}},
		{Relevance: 0, Date: strPtr("2026-01-01")},
	})
	if entries[0].Score != 100 {
		t.Errorf("expected top score 100, got %d", entries[0].Score)
	}
	if entries[1].Score != 0 {
		t.Errorf("expected bottom score 0, got %d", entries[1].Score)
	}
}

func TestDateTieSorter(t *testing.T) {
	entries := []RedditEntry{
		{RedditItem: domain.RedditItem{ID: "a"}, Score: 50},
		{RedditItem: domain.RedditItem{ID: "b", Date: strPtr("2026-10-01")}, Score: 50},
		{RedditItem: domain.RedditItem{ID: "c", Date: strPtr("2026-10-05")}, Score: 50},
		{RedditItem: domain.RedditItem{ID: "d"}, Score: 70},
	}
	DateTieSorter{}.SortReddit(entries)
	want := []string{"d", "c", "b", "a"}
	for i, id := range want {
		if entries[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, entries[i].ID, id)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	if got := normalizeText("  Hello,   WORLD!! "); got != "hello world" {
		t.Errorf("got %q", got)
	}
}
