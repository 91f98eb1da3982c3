package report

import (
	"math"
	"sort"
	"time"

	"github.com/zkaiera/last30days-skill/internal/domain"
)

const (
	weightRelevance  = 0.45
	weightRecency    = 0.25
	weightEngagement = 0.30

	// unknownRecency is used for items without a date.
	unknownRecency = 0.5
	recencyWindow  = 30.0
)

// WeightedScorer blends model relevance, recency against the window end
// and log-scaled engagement normalized across the batch.
type WeightedScorer struct {
	to time.Time
}

// NewScorer creates a WeightedScorer measuring age against to (YYYY-MM-DD).
func NewScorer(to string) *WeightedScorer {
	t, err := time.Parse(domain.DateLayout, to)
	if err != nil {
		t = time.Now().UTC()
	}
	return &WeightedScorer{to: t}
}

func (s *WeightedScorer) recency(date *string) float64 {
	if date == nil {
		return unknownRecency
	}
	d, err := time.Parse(domain.DateLayout, *date)
	if err != nil {
		return unknownRecency
	}
	age := s.to.Sub(d).Hours() / 24
	if age < 0 {
		age = 0
	}
	return math.Max(0, 1-age/recencyWindow)
}

func (s *WeightedScorer) combine(relevance, recency, engagement float64) int {
	v := 100 * (weightRelevance*relevance + weightRecency*recency + weightEngagement*engagement)
	return int(math.Round(math.Min(100, math.Max(0, v))))
}

// ScoreReddit scores threads.
func (s *WeightedScorer) ScoreReddit(items []domain.RedditItem) []RedditEntry {
	raw := make([]float64, len(items))
	for i, it := range items {
		raw[i] = redditEngagement(it.Engagement)
	}
	eng := normalize(raw)

	out := make([]RedditEntry, len(items))
	for i, it := range items {
		out[i] = RedditEntry{RedditItem: it, Score: s.combine(it.Relevance, s.recency(it.Date), eng[i])}
	}
	return out
}

// ScoreX scores posts.
func (s *WeightedScorer) ScoreX(items []domain.XItem) []XEntry {
	raw := make([]float64, len(items))
	for i, it := range items {
		raw[i] = xEngagement(it.Engagement)
	}
	eng := normalize(raw)

	out := make([]XEntry, len(items))
	for i, it := range items {
		out[i] = XEntry{XItem: it, Score: s.combine(it.Relevance, s.recency(it.Date), eng[i])}
	}
	return out
}

func log1p(v *int) float64 {
	if v == nil || *v <= 0 {
		return 0
	}
	return math.Log1p(float64(*v))
}

func redditEngagement(e *domain.RedditEngagement) float64 {
	if e == nil {
		return 0
	}
	v := 0.55*log1p(e.Score) + 0.40*log1p(e.NumComments)
	if e.UpvoteRatio != nil {
		v += 0.05 * *e.UpvoteRatio * 10
	}
	return v
}

func xEngagement(e *domain.XEngagement) float64 {
	if e.Empty() {
		return 0
	}
	return 0.55*log1p(e.Likes) + 0.25*log1p(e.Reposts) + 0.15*log1p(e.Replies) + 0.05*log1p(e.Quotes)
}

// normalize scales values to [0, 1] by the batch maximum.
func normalize(values []float64) []float64 {
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	out := make([]float64, len(values))
	if peak == 0 {
		return out
	}
	for i, v := range values {
		out[i] = v / peak
	}
	return out
}

// DateTieSorter sorts by score descending, then by date descending.
// Undated items sort after dated ones on equal score.
type DateTieSorter struct{}

func newerFirst(a, b *string) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a > *b
	}
}

// SortReddit orders threads in place.
func (DateTieSorter) SortReddit(entries []RedditEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return newerFirst(entries[i].Date, entries[j].Date)
	})
}

// SortX orders posts in place.
func (DateTieSorter) SortX(entries []XEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return newerFirst(entries[i].Date, entries[j].Date)
	})
}
