// Package entity mines X handles and subreddits from phase-1 results.
package entity

import (
	"regexp"
	"sort"
	"strings"

	"github.com/zkaiera/last30days-skill/internal/domain"
)

var (
	mentionRe   = regexp.MustCompile(`(?:^|[^\w@/])@(\w{1,15})\b`)
	subredditRe = regexp.MustCompile(`(?:^|[^\w/])/?r/(\w{2,21})\b`)
)

// ignoredHandles are accounts that show up everywhere and say nothing about a topic.
var ignoredHandles = map[string]struct{}{
	"x": {}, "twitter": {}, "grok": {}, "elonmusk": {}, "youtube": {}, "threads": {},
}

// ignoredSubreddits are catch-all communities that would flood a targeted search.
var ignoredSubreddits = map[string]struct{}{
	"all": {}, "popular": {}, "askreddit": {}, "pics": {}, "funny": {}, "videos": {},
}

// counter ranks names by frequency, breaking ties by first appearance.
type counter struct {
	counts map[string]int
	first  map[string]int
	names  map[string]string
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}, first: map[string]int{}, names: map[string]string{}}
}

func (c *counter) add(name string, weight int) {
	key := strings.ToLower(name)
	if _, ok := c.counts[key]; !ok {
		c.first[key] = len(c.first)
		c.names[key] = name
	}
	c.counts[key] += weight
}

func (c *counter) top(n int) []string {
	keys := make([]string, 0, len(c.counts))
	for k := range c.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if c.counts[keys[i]] != c.counts[keys[j]] {
			return c.counts[keys[i]] > c.counts[keys[j]]
		}
		return c.first[keys[i]] < c.first[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = c.names[k]
	}
	return out
}

// Extract returns up to maxHandles handles and maxSubreddits subreddits,
// most frequent first. Authors weigh more than mentions.
func Extract(reddit []domain.RedditItem, x []domain.XItem, maxHandles, maxSubreddits int) domain.EntitySet {
	handles := newCounter()
	for _, it := range x {
		if h := strings.TrimLeft(strings.TrimSpace(it.AuthorHandle), "@"); h != "" && !ignored(ignoredHandles, h) {
			handles.add(h, 2)
		}
		for _, m := range mentionRe.FindAllStringSubmatch(it.Text, -1) {
			if !ignored(ignoredHandles, m[1]) {
				handles.add(m[1], 1)
			}
		}
	}

	subs := newCounter()
	for _, it := range reddit {
		if s := strings.TrimSpace(it.Subreddit); s != "" && !ignored(ignoredSubreddits, s) {
			subs.add(s, 2)
		}
		texts := []string{it.Title}
		for _, c := range it.TopComments {
			texts = append(texts, c.Excerpt)
		}
		for _, text := range texts {
			for _, m := range subredditRe.FindAllStringSubmatch(text, -1) {
				if !ignored(ignoredSubreddits, m[1]) {
					subs.add(m[1], 1)
				}
			}
		}
	}

	return domain.EntitySet{
		XHandles:         handles.top(maxHandles),
		RedditSubreddits: subs.top(maxSubreddits),
	}
}

func ignored(set map[string]struct{}, name string) bool {
	_, ok := set[strings.ToLower(name)]
	return ok
}
