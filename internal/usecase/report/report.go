// Package report turns a research result into a ranked, deduplicated report.
package report

import (
	"sort"
	"time"

	"github.com/zkaiera/last30days-skill/internal/domain"
)

// minRedditResults is how many threads survive when the date filter would
// otherwise remove every Reddit result.
const minRedditResults = 3

// RedditEntry is a scored Reddit thread.
type RedditEntry struct {
	domain.RedditItem
	Score int `json:"score"`
}

// XEntry is a scored X post.
type XEntry struct {
	domain.XItem
	Score int `json:"score"`
}

// Models names the models a run used; empty means the provider did not run.
type Models struct {
	OpenAI string
	XAI    string
}

// Report is the final output of a research run.
type Report struct {
	Topic           string        `json:"topic"`
	RangeFrom       string        `json:"range_from"`
	RangeTo         string        `json:"range_to"`
	GeneratedAt     string        `json:"generated_at"`
	Mode            string        `json:"mode"`
	OpenAIModelUsed string        `json:"openai_model_used,omitempty"`
	XAIModelUsed    string        `json:"xai_model_used,omitempty"`
	Reddit          []RedditEntry `json:"reddit"`
	X               []XEntry      `json:"x"`
	RedditError     string        `json:"reddit_error,omitempty"`
	XError          string        `json:"x_error,omitempty"`
	WebNeeded       bool          `json:"web_needed"`
}

// Builder assembles reports. Zero fields fall back to the defaults.
type Builder struct {
	Scorer Scorer
	Sorter Sorter
	Now    func() time.Time
}

// Build assembles a report with the default scorer and sorter.
func Build(topic, from, to, mode string, models Models, res domain.Result) Report {
	return Builder{}.Build(topic, from, to, mode, models, res)
}

// Build filters res to the [from, to] window, scores, sorts and dedupes it.
func (b Builder) Build(topic, from, to, mode string, models Models, res domain.Result) Report {
	scorer := b.Scorer
	if scorer == nil {
		scorer = NewScorer(to)
	}
	sorter := b.Sorter
	if sorter == nil {
		sorter = DateTieSorter{}
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}

	reddit := FilterReddit(res.RedditItems, from, to)
	if len(reddit) == 0 && len(res.RedditItems) > 0 {
		reddit = topByRelevance(res.RedditItems, minRedditResults)
	}
	x := FilterX(res.XItems, from, to)

	redditEntries := scorer.ScoreReddit(reddit)
	xEntries := scorer.ScoreX(x)
	sorter.SortReddit(redditEntries)
	sorter.SortX(xEntries)

	return Report{
		Topic:           topic,
		RangeFrom:       from,
		RangeTo:         to,
		GeneratedAt:     now().UTC().Format(time.RFC3339),
		Mode:            mode,
		OpenAIModelUsed: models.OpenAI,
		XAIModelUsed:    models.XAI,
		Reddit:          DedupeReddit(redditEntries),
		X:               DedupeX(xEntries),
		RedditError:     res.RedditError,
		XError:          res.XError,
		WebNeeded:       res.WebNeeded,
	}
}

// FilterReddit drops threads whose known date falls outside [from, to].
// Undated threads are kept.
func FilterReddit(items []domain.RedditItem, from, to string) []domain.RedditItem {
	out := make([]domain.RedditItem, 0, len(items))
	for _, it := range items {
		if it.Date == nil || domain.InRange(*it.Date, from, to) {
			out = append(out, it)
		}
	}
	return out
}

// FilterX drops posts whose known date falls outside [from, to].
func FilterX(items []domain.XItem, from, to string) []domain.XItem {
	out := make([]domain.XItem, 0, len(items))
	for _, it := range items {
		if it.Date == nil || domain.InRange(*it.Date, from, to) {
			out = append(out, it)
		}
	}
	return out
}

func topByRelevance(items []domain.RedditItem, n int) []domain.RedditItem {
	out := append([]domain.RedditItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Relevance > out[j].Relevance })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
