package openai

import (
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/zkaiera/last30days-skill/internal/domain"
)

// parseAPIError converts go-openai errors into *domain.HTTPError so that
// catalog and responses failures classify the same way.
func parseAPIError(err error, url string) error {
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return &domain.HTTPError{StatusCode: reqErr.HTTPStatusCode, Body: string(reqErr.Body), URL: url}
	}

	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return &domain.HTTPError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message, URL: url}
	}

	return fmt.Errorf("request %s: %w", url, err)
}
