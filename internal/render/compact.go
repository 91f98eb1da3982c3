package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/zkaiera/last30days-skill/internal/usecase/report"
)

// DefaultLimit caps the items shown per source.
const DefaultLimit = 15

const (
	sparseThreshold = 5
	xTextPreview    = 200
)

// Compact writes the markdown summary of rep. missingKeys is the label
// from sources.Missing: none, reddit, x or both.
func Compact(w io.Writer, rep report.Report, missingKeys string, st Styles) error {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("%s", st.Header.Render("## Research Results: "+rep.Topic))
	line("")

	if recent := recentCount(rep); recent < sparseThreshold {
		line("%s", st.Warning.Render("**LIMITED RECENT DATA** - Few discussions from the last 30 days."))
		line("Only %d item(s) confirmed from %s to %s.", recent, rep.RangeFrom, rep.RangeTo)
		line("Results below may include older/evergreen content. Be transparent with the user about this.")
		line("")
	}

	if rep.Mode == "web-only" {
		line("**WEB SEARCH MODE** - searching blogs, docs & news")
		line("")
		line("---")
		line("**Want better results?** Add API keys to unlock Reddit & X data:")
		line("- `OPENAI_API_KEY` -> Reddit threads with real upvotes & comments")
		line("- `XAI_API_KEY` -> X posts with real likes & reposts")
		line("---")
		line("")
	}

	line("**Date Range:** %s to %s", rep.RangeFrom, rep.RangeTo)
	line("**Mode:** %s", rep.Mode)
	if rep.OpenAIModelUsed != "" {
		line("**OpenAI Model:** %s", rep.OpenAIModelUsed)
	}
	if rep.XAIModelUsed != "" {
		line("**xAI Model:** %s", rep.XAIModelUsed)
	}
	line("")

	switch {
	case rep.Mode == "reddit-only" && missingKeys == "x":
		line("%s", st.Dim.Render("*Tip: Add XAI_API_KEY for X/Twitter data and better triangulation.*"))
		line("")
	case rep.Mode == "x-only" && missingKeys == "reddit":
		line("%s", st.Dim.Render("*Tip: Add OPENAI_API_KEY for Reddit data and better triangulation.*"))
		line("")
	}

	switch {
	case rep.RedditError != "":
		line("%s", st.Section.Render("### Reddit Threads"))
		line("")
		line("%s", st.Error.Render("**ERROR:** "+rep.RedditError))
		line("")
	case len(rep.Reddit) == 0 && (rep.Mode == "both" || rep.Mode == "reddit-only"):
		line("%s", st.Section.Render("### Reddit Threads"))
		line("")
		line("*No relevant Reddit threads found for this topic.*")
		line("")
	case len(rep.Reddit) > 0:
		line("%s", st.Section.Render("### Reddit Threads"))
		line("")
		for _, it := range head(rep.Reddit, DefaultLimit) {
			line("%s (score:%d) r/%s%s%s", st.ID.Render("**"+it.ID+"**"), it.Score, it.Subreddit, dateLabel(it.Date), redditEngagement(it))
			line("  %s", it.Title)
			line("  %s", it.URL)
			line("  *%s*", it.WhyRelevant)
			if len(it.TopComments) > 0 {
				line("  Top comments:")
				for _, c := range head(it.TopComments, 3) {
					line("    - u/%s (%d): %s", c.Author, c.Score, c.Excerpt)
				}
			}
			line("")
		}
	}

	switch {
	case rep.XError != "":
		line("%s", st.Section.Render("### X Posts"))
		line("")
		line("%s", st.Error.Render("**ERROR:** "+rep.XError))
		line("")
	case len(rep.X) == 0 && (rep.Mode == "both" || rep.Mode == "x-only" || rep.Mode == "all" || rep.Mode == "x-web"):
		line("%s", st.Section.Render("### X Posts"))
		line("")
		line("*No relevant X posts found for this topic.*")
		line("")
	case len(rep.X) > 0:
		line("%s", st.Section.Render("### X Posts"))
		line("")
		for _, it := range head(rep.X, DefaultLimit) {
			line("%s (score:%d) @%s%s%s", st.ID.Render("**"+it.ID+"**"), it.Score, it.AuthorHandle, dateLabel(it.Date), xEngagement(it))
			line("  %s...", preview(it.Text, xTextPreview))
			line("  %s", it.URL)
			line("  *%s*", it.WhyRelevant)
			line("")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func recentCount(rep report.Report) int {
	n := 0
	for _, it := range rep.Reddit {
		if it.Date != nil && *it.Date >= rep.RangeFrom {
			n++
		}
	}
	for _, it := range rep.X {
		if it.Date != nil && *it.Date >= rep.RangeFrom {
			n++
		}
	}
	return n
}

func dateLabel(date *string) string {
	if date == nil {
		return " (date unknown)"
	}
	return " (" + *date + ")"
}

func redditEngagement(it report.RedditEntry) string {
	e := it.Engagement
	if e == nil {
		return ""
	}
	var parts []string
	if e.Score != nil {
		parts = append(parts, fmt.Sprintf("%dpts", *e.Score))
	}
	if e.NumComments != nil {
		parts = append(parts, fmt.Sprintf("%dcmt", *e.NumComments))
	}
	return bracket(parts)
}

func xEngagement(it report.XEntry) string {
	e := it.Engagement
	if e.Empty() {
		return ""
	}
	var parts []string
	if e.Likes != nil {
		parts = append(parts, fmt.Sprintf("%dlikes", *e.Likes))
	}
	if e.Reposts != nil {
		parts = append(parts, fmt.Sprintf("%drt", *e.Reposts))
	}
	return bracket(parts)
}

func bracket(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
