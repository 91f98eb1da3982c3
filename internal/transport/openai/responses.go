package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zkaiera/last30days-skill/internal/domain"
	"github.com/zkaiera/last30days-skill/internal/metrics"
)

// maxResponseBytes caps a single Responses API body.
const maxResponseBytes = 16 << 20

// ResponsesClient posts to the /responses endpoint of an OpenAI-compatible API.
// go-openai has no Responses API, so this is a thin net/http client.
type ResponsesClient struct {
	apiKey   string
	baseURL  string
	provider string
	http     *http.Client
	logger   *zap.Logger
}

// ResponsesConfig holds the Responses endpoint settings.
type ResponsesConfig struct {
	APIKey   string
	BaseURL  string
	Provider string
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewResponsesClient creates a Responses API client.
func NewResponsesClient(cfg *ResponsesConfig) *ResponsesClient {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResponsesClient{
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		provider: cfg.Provider,
		http:     hc,
		logger:   logger,
	}
}

// BaseURL returns the API root this client posts to.
func (c *ResponsesClient) BaseURL() string {
	return c.baseURL
}

// Post sends payload and returns the raw JSON body.
// Non-2xx responses return *domain.HTTPError.
func (c *ResponsesClient) Post(ctx context.Context, payload map[string]any, timeout time.Duration) ([]byte, error) {
	url := c.baseURL + "/responses"
	model, _ := payload["model"].(string)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(c.provider, model, "error").Inc()
		return nil, fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(c.provider, model, "error").Inc()
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ProviderRequestsTotal.WithLabelValues(c.provider, model, "error").Inc()
		c.logger.Debug("Responses API error",
			zap.String("provider", c.provider),
			zap.String("model", model),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &domain.HTTPError{StatusCode: resp.StatusCode, Body: string(data), URL: url}
	}

	metrics.ProviderRequestsTotal.WithLabelValues(c.provider, model, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(c.provider, model).Observe(time.Since(start).Seconds())
	return data, nil
}
