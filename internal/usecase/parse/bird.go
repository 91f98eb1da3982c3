package parse

import (
	"fmt"
	"strings"
	"time"

	"github.com/zkaiera/last30days-skill/internal/domain"
)

// birdRelevance is the neutral relevance given to CLI results; ranking is
// left to downstream scoring.
const birdRelevance = 0.7

const twitterTimeLayout = "Mon Jan 02 15:04:05 -0700 2006"

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02T15:04",
}

// BirdItems parses bird CLI JSON output: a bare list of tweets or a list
// under "items" or "tweets".
func BirdItems(raw []byte) ([]domain.XItem, error) {
	v, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}

	var tweets []any
	switch t := v.(type) {
	case []any:
		tweets = t
	case map[string]any:
		if e, ok := t["error"]; ok && truthy(e) {
			return nil, fmt.Errorf("%w: %s", ErrAPIResponse, str(e))
		}
		if items, ok := t["items"]; ok {
			tweets, _ = items.([]any)
		} else {
			tweets, _ = t["tweets"].([]any)
		}
	}

	out := make([]domain.XItem, 0, len(tweets))
	for i, e := range tweets {
		tweet, ok := e.(map[string]any)
		if !ok {
			continue
		}
		item, ok := birdItem(tweet)
		if !ok {
			continue
		}
		item.ID = fmt.Sprintf("X%d", i+1)
		out = append(out, item)
	}
	return out, nil
}

func birdItem(tweet map[string]any) (domain.XItem, bool) {
	author := authorOf(tweet)
	screenName := str(firstTruthy(author, "username", "screen_name"))

	url := str(firstTruthy(tweet, "permanent_url", "url"))
	if url == "" && truthy(tweet["id"]) && screenName != "" {
		url = fmt.Sprintf("https://x.com/%s/status/%s", screenName, str(tweet["id"]))
	}
	if url == "" {
		return domain.XItem{}, false
	}

	handle := screenName
	if handle == "" {
		handle = str(tweet["author_handle"])
	}

	text, ok := tweet["text"]
	if !ok {
		text = tweet["full_text"]
	}

	eng := &domain.XEngagement{
		Likes:   toIntOrNil(firstTruthy(tweet, "likeCount", "like_count", "favorite_count")),
		Reposts: toIntOrNil(firstTruthy(tweet, "retweetCount", "retweet_count")),
		Replies: toIntOrNil(firstTruthy(tweet, "replyCount", "reply_count")),
		Quotes:  toIntOrNil(firstTruthy(tweet, "quoteCount", "quote_count")),
	}
	if eng.Empty() {
		eng = nil
	}

	return domain.XItem{
		Text:         truncate(strings.TrimSpace(str(text)), maxPostText),
		URL:          url,
		AuthorHandle: strings.TrimLeft(handle, "@"),
		Date:         tweetDate(str(firstTruthy(tweet, "createdAt", "created_at"))),
		Engagement:   eng,
		Relevance:    birdRelevance,
	}, true
}

func authorOf(tweet map[string]any) map[string]any {
	if a, ok := tweet["author"].(map[string]any); ok && len(a) > 0 {
		return a
	}
	if u, ok := tweet["user"].(map[string]any); ok {
		return u
	}
	return map[string]any{}
}

func toIntOrNil(v any) *int {
	if v == nil {
		return nil
	}
	return toInt(v)
}

// tweetDate accepts ISO-8601 or the classic Twitter timestamp and returns
// the calendar date in the timestamp's own offset.
func tweetDate(s string) *string {
	if s == "" {
		return nil
	}
	var t time.Time
	var err error
	if strings.Contains(s, "T") {
		for _, layout := range isoLayouts {
			if t, err = time.Parse(layout, s); err == nil {
				break
			}
		}
	} else {
		t, err = time.Parse(twitterTimeLayout, s)
	}
	if err != nil {
		return nil
	}
	d := t.Format("2006-01-02")
	return &d
}
