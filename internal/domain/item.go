package domain

import "encoding/json"

// RedditEngagement holds thread counters filled by enrichment.
type RedditEngagement struct {
	Score       *int     `json:"score"`
	NumComments *int     `json:"num_comments"`
	UpvoteRatio *float64 `json:"upvote_ratio"`
}

// Comment is a top-level thread comment captured by enrichment.
type Comment struct {
	Author  string `json:"author"`
	Score   int    `json:"score"`
	Excerpt string `json:"excerpt"`
	URL     string `json:"url,omitempty"`
}

// RedditItem is a Reddit thread candidate.
type RedditItem struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	URL         string            `json:"url"`
	Subreddit   string            `json:"subreddit"`
	Date        *string           `json:"date"`
	WhyRelevant string            `json:"why_relevant"`
	Relevance   float64           `json:"relevance"`
	Engagement  *RedditEngagement `json:"engagement,omitempty"`
	TopComments []Comment         `json:"top_comments,omitempty"`
}

// XEngagement holds post counters. A nil field means unknown, not zero.
type XEngagement struct {
	Likes   *int `json:"likes"`
	Reposts *int `json:"reposts"`
	Replies *int `json:"replies"`
	Quotes  *int `json:"quotes"`
}

// Empty reports whether no counter is known.
func (e *XEngagement) Empty() bool {
	return e == nil || (e.Likes == nil && e.Reposts == nil && e.Replies == nil && e.Quotes == nil)
}

// XItem is an X post candidate.
type XItem struct {
	ID           string       `json:"id"`
	Text         string       `json:"text"`
	URL          string       `json:"url"`
	AuthorHandle string       `json:"author_handle"`
	Date         *string      `json:"date"`
	Engagement   *XEngagement `json:"engagement"`
	WhyRelevant  string       `json:"why_relevant"`
	Relevance    float64      `json:"relevance"`
}

// SearchRequest is one provider search issued by the orchestrator.
type SearchRequest struct {
	Topic    string
	FromDate string
	ToDate   string
	Depth    Depth
	Provider Provider
	Backend  XBackend
}

// WithTopic returns a copy of r searching for topic.
func (r SearchRequest) WithTopic(topic string) SearchRequest {
	r.Topic = topic
	return r
}

// SearchOutcome is the result of one provider search.
// Items and Err are independent: a run may carry partial items and an error.
type SearchOutcome[T any] struct {
	Items []T
	Raw   json.RawMessage
	Err   error
}

// EntitySet holds handles and subreddits mined from phase-1 results.
type EntitySet struct {
	XHandles         []string `json:"x_handles"`
	RedditSubreddits []string `json:"reddit_subreddits"`
}

// Empty reports whether no entity was found.
func (e EntitySet) Empty() bool {
	return len(e.XHandles) == 0 && len(e.RedditSubreddits) == 0
}

// ModelSelection is a resolved model for one provider.
// CacheKey is empty for pinned selections, which are never cached.
type ModelSelection struct {
	Provider Provider `json:"provider"`
	ModelID  string   `json:"model_id"`
	CacheKey string   `json:"cache_key,omitempty"`
}

// Result is the output of a research run.
type Result struct {
	RedditItems []RedditItem
	XItems      []XItem
	WebNeeded   bool
	RawOpenAI   json.RawMessage
	RawXAI      json.RawMessage
	// RawRedditEnriched holds the Reddit items as they left enrichment.
	RawRedditEnriched []RedditItem
	RedditError       string
	XError            string
}
