package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoModels signals that no model could be tried for a provider.
	ErrNoModels = errors.New("no models available")
	// ErrProviderUnavailable signals a missing credential or backend for a provider.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrInvalidSources signals a source selection that cannot be satisfied.
	ErrInvalidSources = errors.New("invalid sources")
	// ErrEmptyTopic signals a research run without a topic.
	ErrEmptyTopic = errors.New("topic is required")
	// ErrInvalidDays signals a lookback window outside 1-30 days.
	ErrInvalidDays = errors.New("days must be between 1 and 30")
	// ErrConflictingDepth signals that both quick and deep were requested.
	ErrConflictingDepth = errors.New("cannot use both --quick and --deep")
	// ErrMockUnavailable signals a mock run on a process wired for live providers.
	ErrMockUnavailable = errors.New("mock mode is not enabled")
)

// HTTPError is a non-2xx response from an upstream API.
type HTTPError struct {
	StatusCode int
	Body       string
	URL        string
}

// maxErrorBody bounds the response body quoted in HTTPError messages, in runes.
const maxErrorBody = 300

func (e *HTTPError) Error() string {
	body := e.Body
	if r := []rune(body); len(r) > maxErrorBody {
		body = string(r[:maxErrorBody]) + "..."
	}
	if body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, body)
}

// AsHTTPError unwraps err into an *HTTPError.
func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}
