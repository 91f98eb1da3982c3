// Package reddit talks to Reddit's public, keyless endpoints: subreddit
// search (JSON with an RSS fallback) and thread JSON for enrichment.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/zkaiera/last30days-skill/internal/domain"
	"github.com/zkaiera/last30days-skill/internal/metrics"
	"github.com/zkaiera/last30days-skill/internal/version"
)

// DefaultBaseURL is the public Reddit web host.
const DefaultBaseURL = "https://www.reddit.com"

const (
	searchTimeout         = 15 * time.Second
	enrichTimeout         = 30 * time.Second
	supplementalRelevance = 0.65
	maxBodyBytes          = 8 << 20
)

// Config configures a Client.
type Config struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client calls Reddit's public endpoints.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	feeds     *gofeed.Parser
	logger    *zap.Logger
}

// New creates a Client.
func New(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "last30days/" + version.Version + " (research tool)"
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{baseURL: baseURL, userAgent: ua, http: hc, feeds: gofeed.NewParser(), logger: logger}
}

// SearchSubreddits searches each subreddit for query, newest first. Ids are
// RS<n> across all subreddits. A failing subreddit is logged and skipped.
func (c *Client) SearchSubreddits(ctx context.Context, subreddits []string, query string, limit int) []domain.RedditItem {
	var all []domain.RedditItem
	for _, sub := range subreddits {
		sub = strings.TrimPrefix(strings.TrimPrefix(sub, "/"), "r/")
		if sub == "" {
			continue
		}
		items, err := c.searchJSON(ctx, sub, query, limit)
		if err != nil {
			c.logger.Debug("Subreddit JSON search failed, trying RSS", zap.String("subreddit", sub), zap.Error(err))
			items, err = c.searchRSS(ctx, sub, query, limit)
		}
		if err != nil {
			c.logger.Info("Subreddit search failed", zap.String("subreddit", sub), zap.Error(err))
			continue
		}
		for _, it := range items {
			it.ID = fmt.Sprintf("RS%d", len(all)+1)
			all = append(all, it)
		}
	}
	return all
}

type listing struct {
	Data struct {
		Children []struct {
			Kind string          `json:"kind"`
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	Title       string   `json:"title"`
	Permalink   string   `json:"permalink"`
	Subreddit   string   `json:"subreddit"`
	CreatedUTC  float64  `json:"created_utc"`
	Score       *int     `json:"score"`
	NumComments *int     `json:"num_comments"`
	UpvoteRatio *float64 `json:"upvote_ratio"`
}

func searchParams(query string, limit int) url.Values {
	q := url.Values{}
	q.Set("q", query)
	q.Set("restrict_sr", "on")
	q.Set("sort", "new")
	q.Set("limit", fmt.Sprint(limit))
	return q
}

func (c *Client) searchJSON(ctx context.Context, sub, query string, limit int) ([]domain.RedditItem, error) {
	q := searchParams(query, limit)
	q.Set("raw_json", "1")
	endpoint := fmt.Sprintf("%s/r/%s/search/.json?%s", c.baseURL, url.PathEscape(sub), q.Encode())

	body, err := c.get(ctx, endpoint, "application/json", searchTimeout)
	if err != nil {
		return nil, err
	}

	var l listing
	if err := json.Unmarshal(body, &l); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	items := make([]domain.RedditItem, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		var p post
		if err := json.Unmarshal(child.Data, &p); err != nil || p.Permalink == "" {
			continue
		}
		subName := strings.TrimSpace(p.Subreddit)
		if subName == "" {
			subName = sub
		}
		item := supplementalItem(sub, strings.TrimSpace(p.Title), c.baseURL+p.Permalink, subName)
		if p.CreatedUTC > 0 {
			d := domain.DateFromTimestamp(p.CreatedUTC)
			item.Date = &d
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Client) searchRSS(ctx context.Context, sub, query string, limit int) ([]domain.RedditItem, error) {
	endpoint := fmt.Sprintf("%s/r/%s/search.rss?%s", c.baseURL, url.PathEscape(sub), searchParams(query, limit).Encode())

	body, err := c.get(ctx, endpoint, "application/atom+xml, application/rss+xml", searchTimeout)
	if err != nil {
		return nil, err
	}
	feed, err := c.feeds.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]domain.RedditItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		link := strings.TrimSpace(it.Link)
		if !strings.Contains(link, "/comments/") {
			continue
		}
		item := supplementalItem(sub, strings.TrimSpace(it.Title), link, sub)
		if t := it.PublishedParsed; t != nil {
			d := t.UTC().Format(domain.DateLayout)
			item.Date = &d
		} else if t := it.UpdatedParsed; t != nil {
			d := t.UTC().Format(domain.DateLayout)
			item.Date = &d
		}
		items = append(items, item)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func supplementalItem(searched, title, link, sub string) domain.RedditItem {
	return domain.RedditItem{
		Title:       title,
		URL:         link,
		Subreddit:   sub,
		WhyRelevant: fmt.Sprintf("Found in r/%s supplemental search", searched),
		Relevance:   supplementalRelevance,
	}
}

func (c *Client) get(ctx context.Context, endpoint, accept string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("reddit", "public", "error").Inc()
		return nil, fmt.Errorf("get %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("reddit", "public", "error").Inc()
		return nil, fmt.Errorf("read %s: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ProviderRequestsTotal.WithLabelValues("reddit", "public", "error").Inc()
		return nil, &domain.HTTPError{StatusCode: resp.StatusCode, Body: string(body), URL: endpoint}
	}
	metrics.ProviderRequestsTotal.WithLabelValues("reddit", "public", "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues("reddit", "public").Observe(time.Since(start).Seconds())
	return body, nil
}
