package domain

import (
	"strings"
	"time"
)

// Provider identifies an upstream LLM API.
type Provider string

const (
	// ProviderOpenAI serves the Reddit search through the Responses API web_search tool.
	ProviderOpenAI Provider = "openai"
	// ProviderXAI serves the X search through the Agent Tools x_search tool.
	ProviderXAI Provider = "xai"
)

// XBackend selects how X is searched.
type XBackend string

const (
	// XBackendBird shells out to the local bird CLI.
	XBackendBird XBackend = "bird"
	// XBackendXAI calls the xAI Responses API.
	XBackendXAI XBackend = "xai"
)

// Depth is the requested research thoroughness.
type Depth string

const (
	DepthQuick   Depth = "quick"
	DepthDefault Depth = "default"
	DepthDeep    Depth = "deep"
)

// ParseDepth returns the depth for s; unknown values map to DepthDefault.
func ParseDepth(s string) Depth {
	switch Depth(s) {
	case DepthQuick, DepthDeep:
		return Depth(s)
	default:
		return DepthDefault
	}
}

// ItemRange is an inclusive (min, max) item target sent to a model.
type ItemRange struct {
	Min int
	Max int
}

// RedditTarget returns how many threads to ask the model for.
// More than needed is requested because many are dropped by the date filter.
func (d Depth) RedditTarget() ItemRange {
	switch d {
	case DepthQuick:
		return ItemRange{Min: 15, Max: 25}
	case DepthDeep:
		return ItemRange{Min: 70, Max: 100}
	default:
		return ItemRange{Min: 30, Max: 50}
	}
}

// XTarget returns how many posts to ask the xAI model for.
func (d Depth) XTarget() ItemRange {
	switch d {
	case DepthQuick:
		return ItemRange{Min: 8, Max: 12}
	case DepthDeep:
		return ItemRange{Min: 40, Max: 60}
	default:
		return ItemRange{Min: 20, Max: 30}
	}
}

// LLMTimeout bounds a single web-search model call.
func (d Depth) LLMTimeout() time.Duration {
	switch d {
	case DepthQuick:
		return 90 * time.Second
	case DepthDeep:
		return 180 * time.Second
	default:
		return 120 * time.Second
	}
}

// BirdCount is the number of posts requested from the bird CLI.
func (d Depth) BirdCount() int {
	switch d {
	case DepthQuick:
		return 12
	case DepthDeep:
		return 60
	default:
		return 30
	}
}

// BirdTimeout bounds a single bird search invocation.
func (d Depth) BirdTimeout() time.Duration {
	switch d {
	case DepthQuick:
		return 30 * time.Second
	case DepthDeep:
		return 60 * time.Second
	default:
		return 45 * time.Second
	}
}

// SupplementalLimits returns the phase-2 entity cap and per-target count.
func (d Depth) SupplementalLimits() (maxEntities, countPer int) {
	if d == DepthDeep {
		return 5, 5
	}
	return 3, 3
}

// IsOpenRouter reports whether baseURL points at the OpenRouter gateway,
// which rejects some native tool options.
func IsOpenRouter(baseURL string) bool {
	return strings.Contains(strings.ToLower(baseURL), "openrouter.ai")
}
