package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/zkaiera/last30days-skill/internal/domain/model"
)

// Default API roots.
const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultXAIBaseURL    = "https://api.x.ai/v1"
)

// catalogTimeout bounds the /models call during model resolution.
const catalogTimeout = 30 * time.Second

// Catalog lists models from an OpenAI-compatible /models endpoint.
type Catalog struct {
	client  *goopenai.Client
	baseURL string
	logger  *zap.Logger
}

// CatalogConfig holds the catalog endpoint settings.
type CatalogConfig struct {
	APIKey  string
	BaseURL string
	Logger  *zap.Logger
}

// NewCatalog creates a model catalog client.
func NewCatalog(cfg *CatalogConfig) *Catalog {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = baseURL

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Catalog{
		client:  goopenai.NewClientWithConfig(clientCfg),
		baseURL: baseURL,
		logger:  logger,
	}
}

// BaseURL returns the normalized API root.
func (c *Catalog) BaseURL() string {
	return c.baseURL
}

// ListModels returns every model the endpoint advertises.
func (c *Catalog) ListModels(ctx context.Context) ([]model.CatalogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, catalogTimeout)
	defer cancel()

	list, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, parseAPIError(err, c.baseURL+"/models")
	}

	out := make([]model.CatalogEntry, 0, len(list.Models))
	for _, m := range list.Models {
		out = append(out, model.CatalogEntry{ID: m.ID, Created: m.CreatedAt})
	}
	c.logger.Debug("Listed models", zap.String("base_url", c.baseURL), zap.Int("count", len(out)))
	return out, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Catalog) HealthCheck(ctx context.Context) error {
	if _, err := c.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
