package reddit

import (
	"fmt"
	"strings"

	"github.com/zkaiera/last30days-skill/internal/domain"
)

const searchPrompt = `Find Reddit discussion threads about: %[1]s

STEP 1: EXTRACT THE CORE SUBJECT
Get the MAIN NOUN/PRODUCT/TOPIC:
- "best nano banana prompting practices" → "nano banana"
- "killer features of clawdbot" → "clawdbot"
- "top Claude Code skills" → "Claude Code"
DO NOT include "best", "top", "tips", "practices", "features" in your search.

STEP 2: SEARCH BROADLY
Search for the core subject:
1. "[core subject] site:reddit.com"
2. "reddit [core subject]"
3. "[core subject] reddit"

Return as many relevant threads as you find. We filter by date server-side.

STEP 3: INCLUDE ALL MATCHES
- Include ALL threads about the core subject
- Set date to "YYYY-MM-DD" if you can determine it, otherwise null
- We verify dates and filter old content server-side
- DO NOT pre-filter aggressively - include anything relevant

REQUIRED: URLs must contain "/r/" AND "/comments/"
REJECT: developers.reddit.com, business.reddit.com

Find %[2]d-%[3]d threads. Return MORE rather than fewer.

Return JSON:
{
  "items": [
    {
      "title": "Thread title",
      "url": "https://www.reddit.com/r/sub/comments/xyz/title/",
      "subreddit": "subreddit_name",
      "date": "YYYY-MM-DD or null",
      "why_relevant": "Why relevant",
      "relevance": 0.85
    }
  ]
}`

func buildPrompt(topic string, minItems, maxItems int) string {
	return fmt.Sprintf(searchPrompt, topic, minItems, maxItems)
}

// SubredditQuery guesses a subreddit from the core subject:
// "best nano banana prompting practices" -> "r/nanobanana site:reddit.com".
func SubredditQuery(topic string) string {
	core := domain.CoreSubject(topic)
	name := strings.ToLower(strings.NewReplacer(".", "", " ", "").Replace(core))
	return "r/" + name + " site:reddit.com"
}
