package report

import (
	"strings"
	"unicode"
)

// normalizeText lowercases s and collapses every non-alphanumeric run to one space.
func normalizeText(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space && b.Len() > 0 {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

type seenSet struct {
	urls  map[string]struct{}
	texts map[string]struct{}
}

func newSeenSet() *seenSet {
	return &seenSet{urls: map[string]struct{}{}, texts: map[string]struct{}{}}
}

// add reports whether the entry is new, recording its URL and text.
func (s *seenSet) add(url, text string) bool {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	norm := normalizeText(text)
	if _, ok := s.urls[url]; ok && url != "" {
		return false
	}
	if _, ok := s.texts[norm]; ok && norm != "" {
		return false
	}
	if url != "" {
		s.urls[url] = struct{}{}
	}
	if norm != "" {
		s.texts[norm] = struct{}{}
	}
	return true
}

// DedupeReddit keeps the first thread per URL and per normalized title.
func DedupeReddit(entries []RedditEntry) []RedditEntry {
	seen := newSeenSet()
	out := make([]RedditEntry, 0, len(entries))
	for _, e := range entries {
		if seen.add(e.URL, e.Title) {
			out = append(out, e)
		}
	}
	return out
}

// DedupeX keeps the first post per URL and per normalized text.
func DedupeX(entries []XEntry) []XEntry {
	seen := newSeenSet()
	out := make([]XEntry, 0, len(entries))
	for _, e := range entries {
		if seen.add(e.URL, e.Text) {
			out = append(out, e)
		}
	}
	return out
}
