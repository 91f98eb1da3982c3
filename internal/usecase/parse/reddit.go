package parse

import (
	"fmt"
	"strings"

	"github.com/zkaiera/last30days-skill/internal/domain"
)

const redditMarker = "reddit.com"

// RedditItems parses a Responses API payload into Reddit threads.
// Items without a reddit.com URL are dropped. Ids are R<position>.
func RedditItems(raw []byte) ([]domain.RedditItem, error) {
	entries, err := modelItems(raw)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RedditItem, 0, len(entries))
	for i, e := range entries {
		item, ok := e.(map[string]any)
		if !ok {
			continue
		}
		url, _ := item["url"].(string)
		if url == "" || !strings.Contains(url, redditMarker) {
			continue
		}
		out = append(out, domain.RedditItem{
			ID:          fmt.Sprintf("R%d", i+1),
			Title:       strings.TrimSpace(str(item["title"])),
			URL:         url,
			Subreddit:   NormalizeSubreddit(str(item["subreddit"])),
			Date:        date(item["date"]),
			WhyRelevant: strings.TrimSpace(str(item["why_relevant"])),
			Relevance:   relevanceOf(item),
		})
	}
	return out, nil
}

// NormalizeSubreddit trims whitespace and a leading "r/" or "/r/".
func NormalizeSubreddit(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "/")
	return strings.TrimPrefix(s, "r/")
}
