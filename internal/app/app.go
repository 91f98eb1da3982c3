// Package app is the composition root shared by the CLI, the HTTP server
// and the embeddable client.
package app

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zkaiera/last30days-skill/internal/config"
	dbRedis "github.com/zkaiera/last30days-skill/internal/db/redis"
	"github.com/zkaiera/last30days-skill/internal/domain/model"
	"github.com/zkaiera/last30days-skill/internal/metrics"
	"github.com/zkaiera/last30days-skill/internal/repository/modelcache"
	"github.com/zkaiera/last30days-skill/internal/transport/bird"
	"github.com/zkaiera/last30days-skill/internal/transport/openai"
	transportReddit "github.com/zkaiera/last30days-skill/internal/transport/reddit"
	healthuc "github.com/zkaiera/last30days-skill/internal/usecase/health"
	"github.com/zkaiera/last30days-skill/internal/usecase/models"
	"github.com/zkaiera/last30days-skill/internal/usecase/pipeline"
	redditSearch "github.com/zkaiera/last30days-skill/internal/usecase/reddit"
	"github.com/zkaiera/last30days-skill/internal/usecase/research"
	"github.com/zkaiera/last30days-skill/internal/usecase/xsearch"
)

//go:embed fixtures/*.json
var fixtures embed.FS

// App is the wired object graph.
type App struct {
	Runner *pipeline.Runner
	Health *healthuc.Service
	close  func()
}

// Options tune the composition for one entry point.
type Options struct {
	// Mock swaps every network collaborator for the embedded fixtures.
	Mock bool
	// ProbeBird runs `bird whoami` to decide the X backend.
	ProbeBird bool
	// SkipMetrics leaves the default Prometheus registry untouched.
	SkipMetrics bool
}

// New builds the cache, provider clients and use cases for cfg.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !opts.SkipMetrics {
		metrics.RegisterSearchMetrics()
	}

	cache, pinger, closeCache, err := buildCache(ctx, cfg, logger, opts.Mock)
	if err != nil {
		return nil, err
	}

	openaiMapping := model.ParseMapping(cfg.OpenAI.ModelMap)
	xaiMapping := model.ParseMapping(cfg.XAI.ModelMap)

	catalog := openai.NewCatalog(&openai.CatalogConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Logger:  logger,
	})
	openaiClient := openai.NewResponsesClient(&openai.ResponsesConfig{
		APIKey:   cfg.OpenAI.APIKey,
		BaseURL:  orDefault(cfg.OpenAI.BaseURL, openai.DefaultOpenAIBaseURL),
		Provider: "openai",
		Logger:   logger,
	})
	xaiClient := openai.NewResponsesClient(&openai.ResponsesConfig{
		APIKey:   cfg.XAI.APIKey,
		BaseURL:  orDefault(cfg.XAI.BaseURL, openai.DefaultXAIBaseURL),
		Provider: "xai",
		Logger:   logger,
	})

	redditSearcher := redditSearch.NewSearcher(openaiClient, redditSearch.SearcherConfig{
		BaseURL:        openaiClient.BaseURL(),
		FallbackModels: model.ParseFallbackChain(cfg.OpenAI.FallbackModels, redditSearch.DefaultFallbackModels, openaiMapping),
		Logger:         logger,
	})
	birdClient := bird.New(cfg.Bird.Binary, logger)
	redditClient := transportReddit.New(transportReddit.Config{
		BaseURL:   cfg.Reddit.BaseURL,
		UserAgent: cfg.Reddit.UserAgent,
		Logger:    logger,
	})

	deps := research.Deps{
		Reddit:     redditSearcher,
		Ladder:     redditSearch.NewLadder(redditSearcher, logger),
		XAI:        xsearch.NewSearcher(xaiClient, xaiClient.BaseURL()),
		Subreddits: redditClient,
		Enricher:   redditClient,
	}
	if !cfg.Bird.Disabled {
		deps.Bird = xsearch.NewBirdSearcher(birdClient, logger)
	}

	creds := pipeline.Credentials{
		HasOpenAIKey: cfg.OpenAI.APIKey != "",
		HasXAIKey:    cfg.XAI.APIKey != "",
	}
	if opts.ProbeBird && !cfg.Bird.Disabled && !opts.Mock {
		st := birdClient.Status(ctx)
		creds.BirdAuthenticated = st.Authenticated
		logger.Debug("Bird status",
			zap.Bool("installed", st.Installed),
			zap.Bool("authenticated", st.Authenticated),
			zap.String("username", st.Username),
		)
	}

	var mockModels []model.CatalogEntry
	if opts.Mock {
		fx, err := loadFixtures()
		if err != nil {
			closeCache()
			return nil, err
		}
		deps.Fixtures = research.Fixtures{OpenAI: fx.openai, XAI: fx.xai}
		deps.Enricher = transportReddit.FixtureEnricher{Thread: fx.thread}
		mockModels = fx.models
	}

	runner := pipeline.NewRunner(pipeline.Config{
		Resolver:    models.NewResolver(cache, catalog, logger),
		Research:    research.New(deps, logger),
		Credentials: creds,
		Models: models.Options{
			OpenAI: models.OpenAIOptions{
				Policy:  cfg.OpenAI.ModelPolicy,
				Pin:     cfg.OpenAI.ModelPin,
				BaseURL: catalog.BaseURL(),
				Mapping: openaiMapping,
			},
			XAI: models.XAIOptions{
				Policy:  cfg.XAI.ModelPolicy,
				Pin:     cfg.XAI.ModelPin,
				BaseURL: xaiClient.BaseURL(),
				Mapping: xaiMapping,
			},
		},
		Mock:             opts.Mock,
		MockOpenAIModels: mockModels,
		Logger:           logger,
	})

	checks := map[string]healthuc.Checker{}
	if creds.HasOpenAIKey {
		checks["openai"] = catalog
	}
	if creds.HasXAIKey {
		checks["xai"] = openai.NewCatalog(&openai.CatalogConfig{
			APIKey:  cfg.XAI.APIKey,
			BaseURL: xaiClient.BaseURL(),
			Logger:  logger,
		})
	}
	if !cfg.Bird.Disabled {
		checks["bird"] = birdClient
	}

	return &App{
		Runner: runner,
		Health: healthuc.New(pinger, checks),
		close:  closeCache,
	}, nil
}

// Close releases the cache connection, if any.
func (a *App) Close() {
	if a.close != nil {
		a.close()
	}
}

// buildCache selects the model resolution cache for cfg.Cache.Driver.
// Mock runs always use a private in-memory cache.
func buildCache(
	ctx context.Context, cfg config.Config, logger *zap.Logger, mock bool,
) (models.Cache, healthuc.CachePinger, func(), error) {
	ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
	noop := func() {}

	driver := cfg.Cache.Driver
	if mock {
		driver = config.CacheMemory
	}

	switch driver {
	case config.CacheMemory:
		return modelcache.NewMemory(cfg.Cache.Size, ttl), nil, noop, nil
	case config.CacheFile:
		return modelcache.NewFile(cfg.Cache.Path, ttl), nil, noop, nil
	case config.CacheRedis, config.CacheValkey:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create %s cache: %w", driver, err)
		}
		timeout := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return nil, nil, nil, fmt.Errorf("%s cache not ready: %w", driver, err)
		}
		logger.Info("Connected to cache", zap.String("driver", driver), zap.Strings("addrs", cfg.Cache.Addrs))
		return modelcache.NewKV(store, ttl), store, store.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown cache driver %q", driver)
	}
}

type mockFixtures struct {
	openai []byte
	xai    []byte
	thread []byte
	models []model.CatalogEntry
}

func loadFixtures() (mockFixtures, error) {
	var fx mockFixtures
	var err error
	if fx.openai, err = fixtures.ReadFile("fixtures/openai_sample.json"); err != nil {
		return fx, fmt.Errorf("read openai fixture: %w", err)
	}
	if fx.xai, err = fixtures.ReadFile("fixtures/xai_sample.json"); err != nil {
		return fx, fmt.Errorf("read xai fixture: %w", err)
	}
	if fx.thread, err = fixtures.ReadFile("fixtures/reddit_thread_sample.json"); err != nil {
		return fx, fmt.Errorf("read reddit thread fixture: %w", err)
	}
	raw, err := fixtures.ReadFile("fixtures/models_openai_sample.json")
	if err != nil {
		return fx, fmt.Errorf("read models fixture: %w", err)
	}
	var list struct {
		Data []struct {
			ID      string `json:"id"`
			Created int64  `json:"created"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		return fx, fmt.Errorf("parse models fixture: %w", err)
	}
	for _, m := range list.Data {
		fx.models = append(fx.models, model.CatalogEntry{ID: m.ID, Created: m.Created})
	}
	return fx, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
