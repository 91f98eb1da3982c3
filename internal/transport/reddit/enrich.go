package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/zkaiera/last30days-skill/internal/domain"
)

const (
	maxTopComments = 10
	maxExcerpt     = 300
)

var errNotThread = errors.New("not a reddit thread URL")

type comment struct {
	Author    string `json:"author"`
	Body      string `json:"body"`
	Score     int    `json:"score"`
	Permalink string `json:"permalink"`
}

// Enrich fetches the thread JSON behind item.URL and fills engagement and
// top comments.
func (c *Client) Enrich(ctx context.Context, item domain.RedditItem) (domain.RedditItem, error) {
	endpoint, err := c.threadJSONURL(item.URL)
	if err != nil {
		return item, err
	}
	body, err := c.get(ctx, endpoint, "application/json", enrichTimeout)
	if err != nil {
		return item, err
	}
	return EnrichFromThread(item, body)
}

// FixtureEnricher applies one recorded thread document to every item.
// Mock runs use it in place of Client.
type FixtureEnricher struct {
	Thread []byte
}

// Enrich applies the recorded thread to item.
func (f FixtureEnricher) Enrich(_ context.Context, item domain.RedditItem) (domain.RedditItem, error) {
	return EnrichFromThread(item, f.Thread)
}

// threadJSONURL rewrites a thread URL onto the configured host with a .json suffix.
func (c *Client) threadJSONURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || !strings.Contains(u.Path, "/comments/") {
		return "", fmt.Errorf("%w: %s", errNotThread, raw)
	}
	return c.baseURL + strings.TrimRight(u.Path, "/") + ".json?raw_json=1", nil
}

// EnrichFromThread applies a thread JSON document ([post listing, comment
// listing]) to item. The item is returned unchanged on error.
func EnrichFromThread(item domain.RedditItem, thread []byte) (domain.RedditItem, error) {
	var listings []listing
	if err := json.Unmarshal(thread, &listings); err != nil {
		return item, fmt.Errorf("decode thread: %w", err)
	}
	if len(listings) == 0 || len(listings[0].Data.Children) == 0 {
		return item, fmt.Errorf("decode thread: no post")
	}

	var p post
	if err := json.Unmarshal(listings[0].Data.Children[0].Data, &p); err != nil {
		return item, fmt.Errorf("decode post: %w", err)
	}

	out := item
	out.Engagement = &domain.RedditEngagement{
		Score:       p.Score,
		NumComments: p.NumComments,
		UpvoteRatio: p.UpvoteRatio,
	}
	if out.Date == nil && p.CreatedUTC > 0 {
		d := domain.DateFromTimestamp(p.CreatedUTC)
		out.Date = &d
	}
	if out.Title == "" {
		out.Title = strings.TrimSpace(p.Title)
	}
	if len(listings) > 1 {
		out.TopComments = topComments(listings[1])
	}
	return out, nil
}

func topComments(l listing) []domain.Comment {
	var comments []domain.Comment
	for _, child := range l.Data.Children {
		if child.Kind != "t1" {
			continue
		}
		var cm comment
		if err := json.Unmarshal(child.Data, &cm); err != nil {
			continue
		}
		body := strings.TrimSpace(cm.Body)
		if body == "" || body == "[deleted]" || body == "[removed]" {
			continue
		}
		c := domain.Comment{Author: cm.Author, Score: cm.Score, Excerpt: excerpt(body)}
		if cm.Permalink != "" {
			c.URL = DefaultBaseURL + cm.Permalink
		}
		comments = append(comments, c)
	}
	sort.SliceStable(comments, func(i, j int) bool { return comments[i].Score > comments[j].Score })
	if len(comments) > maxTopComments {
		comments = comments[:maxTopComments]
	}
	return comments
}

func excerpt(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= maxExcerpt {
		return s
	}
	return string(r[:maxExcerpt-3]) + "..."
}
