package parse

import (
	"fmt"
	"strings"

	"github.com/zkaiera/last30days-skill/internal/domain"
)

// maxPostText is the rune cap applied to post text.
const maxPostText = 500

// XItems parses an xAI Responses payload into X posts. Ids are X<position>.
func XItems(raw []byte) ([]domain.XItem, error) {
	entries, err := modelItems(raw)
	if err != nil {
		return nil, err
	}

	out := make([]domain.XItem, 0, len(entries))
	for i, e := range entries {
		item, ok := e.(map[string]any)
		if !ok {
			continue
		}
		url, _ := item["url"].(string)
		if url == "" {
			continue
		}

		var eng *domain.XEngagement
		if m, ok := item["engagement"].(map[string]any); ok {
			eng = &domain.XEngagement{
				Likes:   truthyInt(m["likes"]),
				Reposts: truthyInt(m["reposts"]),
				Replies: truthyInt(m["replies"]),
				Quotes:  truthyInt(m["quotes"]),
			}
		}

		out = append(out, domain.XItem{
			ID:           fmt.Sprintf("X%d", i+1),
			Text:         truncate(strings.TrimSpace(str(item["text"])), maxPostText),
			URL:          url,
			AuthorHandle: strings.TrimLeft(strings.TrimSpace(str(item["author_handle"])), "@"),
			Date:         date(item["date"]),
			Engagement:   eng,
			WhyRelevant:  strings.TrimSpace(str(item["why_relevant"])),
			Relevance:    relevanceOf(item),
		})
	}
	return out, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
