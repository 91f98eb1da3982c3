package last30days

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/zkaiera/last30days-skill/internal/app"
	"github.com/zkaiera/last30days-skill/internal/config"
	"github.com/zkaiera/last30days-skill/internal/domain"
	"github.com/zkaiera/last30days-skill/internal/usecase/pipeline"
)

// researchUseCase is the internal interface for research runs.
type researchUseCase interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Outcome, error)
}

// Client is the last30days SDK entry point.
type Client struct {
	runner    researchUseCase
	healthSvc healthUseCase
	closeFn   func()
	mock      bool
	obs       *observer
}

// New creates a Client. The provided context is used for the cache
// readiness check and the bird probe.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if !cfg.mock && cfg.openai.apiKey == "" && cfg.xai.apiKey == "" && !cfg.birdEnabled {
		return nil, errors.New("last30days: no provider configured (use WithOpenAI, WithXAI, WithBird or WithMock)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	svcCfg := toConfig(cfg)
	if err := svcCfg.Validate(); err != nil {
		return nil, fmt.Errorf("last30days: %w", err)
	}

	a, err := app.New(ctx, svcCfg, newZapLogger(cfg.logger), app.Options{
		Mock:        cfg.mock,
		ProbeBird:   cfg.birdEnabled,
		SkipMetrics: true,
	})
	if err != nil {
		return nil, fmt.Errorf("last30days: %w", err)
	}

	return &Client{
		runner:    a.Runner,
		healthSvc: a.Health,
		closeFn:   a.Close,
		mock:      cfg.mock,
		obs:       obs,
	}, nil
}

// toConfig maps SDK options onto the service configuration.
func toConfig(c *clientConfig) config.Config {
	cfg := config.Config{
		OpenAI: config.ProviderConfig{
			APIKey:         c.openai.apiKey,
			BaseURL:        c.openai.baseURL,
			ModelPolicy:    c.openai.policy,
			ModelPin:       c.openai.pin,
			ModelMap:       c.openai.modelMap,
			FallbackModels: strings.Join(c.openai.fallbacks, ","),
		},
		XAI: config.ProviderConfig{
			APIKey:      c.xai.apiKey,
			BaseURL:     c.xai.baseURL,
			ModelPolicy: c.xai.policy,
			ModelPin:    c.xai.pin,
			ModelMap:    c.xai.modelMap,
		},
		Bird: config.BirdConfig{
			Binary:   c.birdBinary,
			Disabled: !c.birdEnabled,
		},
		Cache: config.CacheConfig{
			Driver:   c.cacheDriver,
			Path:     c.cachePath,
			Addrs:    c.addrs,
			Password: c.password,
		},
	}
	if cfg.Cache.Driver == "" {
		cfg.Cache.Driver = config.CacheMemory
	}
	cfg.ApplyDefaults()
	return cfg
}

// Close releases all resources.
func (c *Client) Close() {
	if c.closeFn != nil {
		c.closeFn()
	}
}

// Research searches the configured providers for topic and returns the
// ranked report. Provider failures are reported in Report.RedditError and
// Report.XError; an error is returned only for invalid input.
func (c *Client) Research(ctx context.Context, topic string, opts ...ResearchOption) (res Result, err error) {
	start := time.Now()
	rc := researchConfig{sources: SourcesAuto, depth: DepthDefault}
	for _, o := range opts {
		o(&rc)
	}
	defer func() {
		c.obs.observe("research", start, err,
			slog.String("topic", topic),
			slog.Int("reddit", len(res.Report.Reddit)),
			slog.Int("x", len(res.Report.X)),
		)
	}()

	out, err := c.runner.Run(ctx, pipeline.Request{
		Topic:      topic,
		Sources:    string(rc.sources),
		Days:       rc.days,
		Depth:      domain.ParseDepth(string(rc.depth)),
		IncludeWeb: rc.includeWeb,
		Mock:       c.mock,
	})
	if err != nil {
		return Result{}, fmt.Errorf("research: %w", err)
	}

	res = fromOutcome(out)
	c.obs.countItems(len(res.Report.Reddit), len(res.Report.X))
	return res, nil
}
