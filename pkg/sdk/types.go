package last30days

// Depth controls how many items each provider is asked for.
type Depth string

// Depth constants.
const (
	DepthQuick   Depth = "quick"
	DepthDefault Depth = "default"
	DepthDeep    Depth = "deep"
)

// Sources selects which providers run.
type Sources string

// Sources constants. SourcesAuto uses whatever credentials are configured.
const (
	SourcesAuto   Sources = "auto"
	SourcesReddit Sources = "reddit"
	SourcesX      Sources = "x"
	SourcesBoth   Sources = "both"
	SourcesWeb    Sources = "web"
)

// Result is a finished research run.
type Result struct {
	Report Report
	// MissingKeys is none, reddit, x or both.
	MissingKeys string
	// Note explains a source fallback, if one happened.
	Note string
	// XBackend is bird, xai or empty when X did not run.
	XBackend string
}

// Report is the ranked, deduplicated output of a run.
type Report struct {
	Topic       string
	RangeFrom   string // YYYY-MM-DD
	RangeTo     string // YYYY-MM-DD
	GeneratedAt string // RFC 3339
	Mode        string
	OpenAIModel string
	XAIModel    string
	Reddit      []Thread
	X           []Post
	RedditError string
	XError      string
	// WebNeeded asks the caller to complement the report with a web search.
	WebNeeded bool
}

// Thread is a scored Reddit thread.
type Thread struct {
	ID          string
	Title       string
	URL         string
	Subreddit   string
	Date        string // empty when unknown
	WhyRelevant string
	Relevance   float64
	Score       int // 0-100
	Upvotes     *int
	Comments    *int
	UpvoteRatio *float64
	TopComments []Comment
}

// Comment is a top-level comment excerpt.
type Comment struct {
	Author  string
	Score   int
	Excerpt string
	URL     string
}

// Post is a scored X post.
type Post struct {
	ID          string
	Text        string
	URL         string
	Author      string
	Date        string // empty when unknown
	WhyRelevant string
	Relevance   float64
	Score       int // 0-100
	Likes       *int
	Reposts     *int
	Replies     *int
	Quotes      *int
}

// ResearchOption tunes one Research call.
type ResearchOption func(*researchConfig)

type researchConfig struct {
	depth      Depth
	sources    Sources
	days       int
	includeWeb bool
}

// Quick asks for fewer items per provider.
func Quick() ResearchOption {
	return func(c *researchConfig) { c.depth = DepthQuick }
}

// Deep asks for more items per provider.
func Deep() ResearchOption {
	return func(c *researchConfig) { c.depth = DepthDeep }
}

// WithSources restricts the providers. Default: SourcesAuto.
func WithSources(s Sources) ResearchOption {
	return func(c *researchConfig) { c.sources = s }
}

// Days sets the lookback window (1-30). Default: 30.
func Days(n int) ResearchOption {
	return func(c *researchConfig) { c.days = n }
}

// IncludeWeb marks the run as needing a complementary web search.
func IncludeWeb() ResearchOption {
	return func(c *researchConfig) { c.includeWeb = true }
}
