package report

import "github.com/zkaiera/last30days-skill/internal/domain"

// Scorer assigns a 0-100 score to each item.
type Scorer interface {
	ScoreReddit(items []domain.RedditItem) []RedditEntry
	ScoreX(items []domain.XItem) []XEntry
}

// Sorter orders scored entries, best first.
type Sorter interface {
	SortReddit(entries []RedditEntry)
	SortX(entries []XEntry)
}
