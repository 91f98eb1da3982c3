package domain

import "fmt"

// Sources is the source-selection mode of a research run.
type Sources string

const (
	SourcesAuto      Sources = "auto"
	SourcesWeb       Sources = "web"
	SourcesReddit    Sources = "reddit"
	SourcesX         Sources = "x"
	SourcesBoth      Sources = "both"
	SourcesAll       Sources = "all"
	SourcesRedditWeb Sources = "reddit-web"
	SourcesXWeb      Sources = "x-web"
)

// ParseSources validates s as a sources mode.
func ParseSources(s string) (Sources, error) {
	switch v := Sources(s); v {
	case SourcesAuto, SourcesWeb, SourcesReddit, SourcesX, SourcesBoth,
		SourcesAll, SourcesRedditWeb, SourcesXWeb:
		return v, nil
	case "":
		return SourcesAuto, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidSources, s)
	}
}

// RunReddit reports whether the Reddit provider runs in this mode.
func (s Sources) RunReddit() bool {
	return s == SourcesReddit || s == SourcesBoth || s == SourcesAll || s == SourcesRedditWeb
}

// RunX reports whether the X provider runs in this mode.
func (s Sources) RunX() bool {
	return s == SourcesX || s == SourcesBoth || s == SourcesAll || s == SourcesXWeb
}

// WebNeeded reports whether an external web search must complement the run.
func (s Sources) WebNeeded() bool {
	return s == SourcesWeb || s == SourcesAll || s == SourcesRedditWeb || s == SourcesXWeb
}

// ReportMode is the label shown in reports for this mode.
func (s Sources) ReportMode() string {
	switch s {
	case SourcesReddit:
		return "reddit-only"
	case SourcesX:
		return "x-only"
	case SourcesWeb:
		return "web-only"
	default:
		return string(s)
	}
}
