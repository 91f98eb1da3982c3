package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/zkaiera/last30days-skill/internal/config"
	"github.com/zkaiera/last30days-skill/internal/domain"
	"github.com/zkaiera/last30days-skill/internal/repository/modelcache"
	"github.com/zkaiera/last30days-skill/internal/usecase/pipeline"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Config{
		Cache: config.CacheConfig{Driver: config.CacheMemory},
		Bird:  config.BirdConfig{Disabled: true},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestLoadFixtures(t *testing.T) {
	fx, err := loadFixtures()
	if err != nil {
		t.Fatalf("loadFixtures: %v", err)
	}
	if len(fx.openai) == 0 || len(fx.xai) == 0 || len(fx.thread) == 0 {
		t.Fatal("expected every fixture to be non-empty")
	}
	if len(fx.models) != 5 {
		t.Fatalf("models = %d, want 5", len(fx.models))
	}
	if fx.models[0].ID != "gpt-5.2" || fx.models[0].Created == 0 {
		t.Errorf("first model = %+v", fx.models[0])
	}
}

func TestNew_MockRun(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), zap.NewNop(), Options{Mock: true, SkipMetrics: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	out, err := a.Runner.Run(context.Background(), pipeline.Request{Topic: "nano banana", Mock: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Report.Mode != "both" {
		t.Errorf("mode = %q, want both", out.Report.Mode)
	}
	if out.Report.OpenAIModelUsed != "gpt-5.2" {
		t.Errorf("openai model = %q", out.Report.OpenAIModelUsed)
	}
	if len(out.Report.Reddit) == 0 {
		t.Error("expected reddit threads from the fixture")
	}
	if out.Report.RedditError != "" || out.Report.XError != "" {
		t.Errorf("unexpected errors: %q / %q", out.Report.RedditError, out.Report.XError)
	}
}

func TestNew_LiveAppRejectsMockRequest(t *testing.T) {
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	cfg := testConfig(t)
	cfg.OpenAI.APIKey = "sk-test"
	cfg.OpenAI.BaseURL = upstream.URL
	cfg.XAI.APIKey = "xai-test"
	cfg.XAI.BaseURL = upstream.URL

	a, err := New(context.Background(), cfg, zap.NewNop(), Options{SkipMetrics: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	_, err = a.Runner.Run(context.Background(), pipeline.Request{Topic: "nano banana", Mock: true})
	if !errors.Is(err, domain.ErrMockUnavailable) {
		t.Fatalf("err = %v, want ErrMockUnavailable", err)
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("upstream hits = %d, want 0", n)
	}
}

func TestNew_NoKeysFallsBackToWeb(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), nil, Options{SkipMetrics: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	out, err := a.Runner.Run(context.Background(), pipeline.Request{Topic: "nano banana"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Report.Mode != "web-only" || !out.Report.WebNeeded {
		t.Errorf("mode = %q web_needed = %v, want web-only fallback", out.Report.Mode, out.Report.WebNeeded)
	}
	if out.Missing != "both" {
		t.Errorf("missing = %q, want both", out.Missing)
	}
	if out.XBackend != "" {
		t.Errorf("x backend = %q, want none", out.XBackend)
	}
}

func TestNew_HealthChecksFollowKeys(t *testing.T) {
	cfg := testConfig(t)
	cfg.OpenAI.APIKey = "sk-test"

	a, err := New(context.Background(), cfg, nil, Options{SkipMetrics: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	names := a.Health.Names()
	if len(names) != 1 || names[0] != "openai" {
		t.Errorf("checks = %v, want [openai]", names)
	}
}

func TestBuildCache(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("memory", func(t *testing.T) {
		cfg := testConfig(t)
		cache, pinger, closeFn, err := buildCache(ctx, cfg, logger, false)
		if err != nil {
			t.Fatalf("buildCache: %v", err)
		}
		defer closeFn()
		if _, ok := cache.(*modelcache.Memory); !ok {
			t.Errorf("cache = %T, want *modelcache.Memory", cache)
		}
		if pinger != nil {
			t.Error("in-process caches have no pinger")
		}
	})

	t.Run("file", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Cache.Driver = config.CacheFile
		cfg.Cache.Path = filepath.Join(t.TempDir(), "models.json")
		cache, _, closeFn, err := buildCache(ctx, cfg, logger, false)
		if err != nil {
			t.Fatalf("buildCache: %v", err)
		}
		defer closeFn()
		if _, ok := cache.(*modelcache.File); !ok {
			t.Errorf("cache = %T, want *modelcache.File", cache)
		}
	})

	t.Run("mock forces memory", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Cache.Driver = config.CacheRedis
		cache, _, closeFn, err := buildCache(ctx, cfg, logger, true)
		if err != nil {
			t.Fatalf("buildCache: %v", err)
		}
		defer closeFn()
		if _, ok := cache.(*modelcache.Memory); !ok {
			t.Errorf("cache = %T, want *modelcache.Memory", cache)
		}
	})

	t.Run("redis without addrs", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Cache.Driver = config.CacheRedis
		if _, _, _, err := buildCache(ctx, cfg, logger, false); err == nil {
			t.Fatal("expected error without addrs")
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Cache.Driver = "etcd"
		if _, _, _, err := buildCache(ctx, cfg, logger, false); err == nil {
			t.Fatal("expected error for unknown driver")
		}
	})
}

func TestOrDefault(t *testing.T) {
	if got := orDefault("", "b"); got != "b" {
		t.Errorf("orDefault empty = %q", got)
	}
	if got := orDefault("a", "b"); got != "a" {
		t.Errorf("orDefault set = %q", got)
	}
}
