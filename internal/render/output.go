package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/zkaiera/last30days-skill/internal/usecase/report"
)

// Emit formats accepted by the CLI.
const (
	EmitCompact = "compact"
	EmitJSON    = "json"
)

// JSON writes rep as indented JSON.
func JSON(w io.Writer, rep report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// WebSearchInstructions tells the calling agent to complement the run with
// its own web search.
func WebSearchInstructions(w io.Writer, topic, from, to string, days int) error {
	rule := strings.Repeat("=", 60)
	_, err := fmt.Fprintf(w, `
%[1]s
### WEBSEARCH REQUIRED ###
%[1]s
Topic: %[2]s
Date range: %[3]s to %[4]s

Use your WebSearch tool to find 8-15 relevant web pages.
EXCLUDE: reddit.com, x.com, twitter.com (already covered above)
INCLUDE: blogs, docs, news, tutorials from the last %[5]d days

After searching, synthesize WebSearch results WITH the Reddit/X
results above. WebSearch items should rank LOWER than comparable
Reddit/X items (they lack engagement metrics).
%[1]s
`, rule, topic, from, to, days)
	return err
}

// MissingKeysHint writes a note about the sources a missing key disables.
// It writes nothing when missingKeys is "none".
func MissingKeysHint(w io.Writer, missingKeys string, st Styles) error {
	var msg string
	switch missingKeys {
	case "both":
		msg = "No OPENAI_API_KEY or XAI_API_KEY set: Reddit and X are skipped, falling back to web search."
	case "reddit":
		msg = "No OPENAI_API_KEY set: Reddit threads are skipped."
	case "x":
		msg = "No XAI_API_KEY set and bird is not authenticated: X posts are skipped."
	default:
		return nil
	}
	_, err := fmt.Fprintln(w, st.Warning.Render(msg))
	return err
}
