package last30days

import (
	"github.com/zkaiera/last30days-skill/internal/domain"
	"github.com/zkaiera/last30days-skill/internal/usecase/pipeline"
	"github.com/zkaiera/last30days-skill/internal/usecase/report"
)

func fromOutcome(out pipeline.Outcome) Result {
	return Result{
		Report:      fromReport(out.Report),
		MissingKeys: out.Missing,
		Note:        out.Note,
		XBackend:    string(out.XBackend),
	}
}

func fromReport(r report.Report) Report {
	out := Report{
		Topic:       r.Topic,
		RangeFrom:   r.RangeFrom,
		RangeTo:     r.RangeTo,
		GeneratedAt: r.GeneratedAt,
		Mode:        r.Mode,
		OpenAIModel: r.OpenAIModelUsed,
		XAIModel:    r.XAIModelUsed,
		RedditError: r.RedditError,
		XError:      r.XError,
		WebNeeded:   r.WebNeeded,
		Reddit:      make([]Thread, 0, len(r.Reddit)),
		X:           make([]Post, 0, len(r.X)),
	}
	for _, e := range r.Reddit {
		out.Reddit = append(out.Reddit, fromRedditEntry(e))
	}
	for _, e := range r.X {
		out.X = append(out.X, fromXEntry(e))
	}
	return out
}

func fromRedditEntry(e report.RedditEntry) Thread {
	t := Thread{
		ID:          e.ID,
		Title:       e.Title,
		URL:         e.URL,
		Subreddit:   e.Subreddit,
		Date:        deref(e.Date),
		WhyRelevant: e.WhyRelevant,
		Relevance:   e.Relevance,
		Score:       e.Score,
	}
	if eng := e.Engagement; eng != nil {
		t.Upvotes = eng.Score
		t.Comments = eng.NumComments
		t.UpvoteRatio = eng.UpvoteRatio
	}
	for _, c := range e.TopComments {
		t.TopComments = append(t.TopComments, fromComment(c))
	}
	return t
}

func fromComment(c domain.Comment) Comment {
	return Comment{Author: c.Author, Score: c.Score, Excerpt: c.Excerpt, URL: c.URL}
}

func fromXEntry(e report.XEntry) Post {
	p := Post{
		ID:          e.ID,
		Text:        e.Text,
		URL:         e.URL,
		Author:      e.AuthorHandle,
		Date:        deref(e.Date),
		WhyRelevant: e.WhyRelevant,
		Relevance:   e.Relevance,
		Score:       e.Score,
	}
	if eng := e.Engagement; eng != nil {
		p.Likes = eng.Likes
		p.Reposts = eng.Reposts
		p.Replies = eng.Replies
		p.Quotes = eng.Quotes
	}
	return p
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
