package domain

import "strings"

// stopWords are stripped when reducing a topic to its core subject.
// Matching is per word, so phrases like "how to" only lose their stop words.
var stopWords = map[string]struct{}{
	"best": {}, "top": {}, "practices": {},
	"features": {}, "killer": {}, "guide": {}, "tutorial": {},
	"recommendations": {}, "advice": {}, "prompting": {}, "using": {},
	"for": {}, "with": {}, "the": {}, "of": {}, "in": {}, "on": {},
}

const maxCoreWords = 3

// CoreSubject lower-cases topic, drops stop words and keeps at most three
// words. A topic made only of stop words is returned unchanged.
func CoreSubject(topic string) string {
	var kept []string
	for _, w := range strings.Fields(strings.ToLower(topic)) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		kept = append(kept, w)
		if len(kept) == maxCoreWords {
			break
		}
	}
	if len(kept) == 0 {
		return topic
	}
	return strings.Join(kept, " ")
}
