// Package sources decides which providers a run can use.
package sources

import (
	"fmt"

	"github.com/zkaiera/last30days-skill/internal/domain"
)

// Missing-key labels used by the setup hint.
const (
	MissingNone   = "none"
	MissingReddit = "reddit"
	MissingX      = "x"
	MissingBoth   = "both"
)

// Available returns what the configured credentials allow.
// hasX is true with an xAI key or an authenticated bird CLI.
func Available(hasOpenAI, hasX bool) domain.Sources {
	switch {
	case hasOpenAI && hasX:
		return domain.SourcesBoth
	case hasOpenAI:
		return domain.SourcesReddit
	case hasX:
		return domain.SourcesX
	default:
		return domain.SourcesWeb
	}
}

// Missing reports which provider lacks a credential.
func Missing(hasOpenAI, hasX bool) string {
	switch {
	case hasOpenAI && hasX:
		return MissingNone
	case hasOpenAI:
		return MissingX
	case hasX:
		return MissingReddit
	default:
		return MissingBoth
	}
}

// XBackend picks the X backend: bird is free and preferred over the xAI API.
func XBackend(birdAuthenticated, hasXAIKey bool) (domain.XBackend, bool) {
	switch {
	case birdAuthenticated:
		return domain.XBackendBird, true
	case hasXAIKey:
		return domain.XBackendXAI, true
	default:
		return "", false
	}
}

// Validate resolves the requested mode against what is available.
// A non-empty note is informational; the run continues with the returned mode.
// An error means the request cannot be satisfied.
func Validate(requested, available domain.Sources, includeWeb bool) (domain.Sources, string, error) {
	if available == domain.SourcesWeb {
		if requested == domain.SourcesAuto || requested == domain.SourcesWeb {
			return domain.SourcesWeb, "", nil
		}
		return domain.SourcesWeb, "No API keys configured. Using WebSearch fallback. Configure keys for Reddit/X.", nil
	}

	switch requested {
	case domain.SourcesAuto:
		if includeWeb {
			switch available {
			case domain.SourcesBoth:
				return domain.SourcesAll, "", nil
			case domain.SourcesReddit:
				return domain.SourcesRedditWeb, "", nil
			case domain.SourcesX:
				return domain.SourcesXWeb, "", nil
			}
		}
		return available, "", nil

	case domain.SourcesWeb:
		return domain.SourcesWeb, "", nil

	case domain.SourcesBoth:
		if available != domain.SourcesBoth {
			missing := "OpenAI"
			if available == domain.SourcesReddit {
				missing = "xAI"
			}
			return "", "", fmt.Errorf("%w: requested both sources but %s key is missing, use --sources=auto to use available keys",
				domain.ErrInvalidSources, missing)
		}
		if includeWeb {
			return domain.SourcesAll, "", nil
		}
		return domain.SourcesBoth, "", nil

	case domain.SourcesReddit:
		if available == domain.SourcesX {
			return "", "", fmt.Errorf("%w: requested Reddit but only xAI key is available", domain.ErrInvalidSources)
		}
		if includeWeb {
			return domain.SourcesRedditWeb, "", nil
		}
		return domain.SourcesReddit, "", nil

	case domain.SourcesX:
		if available == domain.SourcesReddit {
			return "", "", fmt.Errorf("%w: requested X but only OpenAI key is available", domain.ErrInvalidSources)
		}
		if includeWeb {
			return domain.SourcesXWeb, "", nil
		}
		return domain.SourcesX, "", nil
	}

	return requested, "", nil
}
