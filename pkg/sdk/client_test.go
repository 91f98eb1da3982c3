package last30days

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zkaiera/last30days-skill/internal/domain"
	healthuc "github.com/zkaiera/last30days-skill/internal/usecase/health"
	"github.com/zkaiera/last30days-skill/internal/usecase/pipeline"
	"github.com/zkaiera/last30days-skill/internal/usecase/report"
)

type mockRunner struct {
	fn  func(ctx context.Context, req pipeline.Request) (pipeline.Outcome, error)
	got pipeline.Request
}

func (m *mockRunner) Run(ctx context.Context, req pipeline.Request) (pipeline.Outcome, error) {
	m.got = req
	return m.fn(ctx, req)
}

type mockHealth struct {
	report healthuc.Report
}

func (m mockHealth) Check(context.Context) healthuc.Report { return m.report }

func TestNew_NoProvider(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error when no provider is configured")
	}
}

func TestNew_InvalidModelPolicy(t *testing.T) {
	_, err := New(context.Background(), WithOpenAI("sk-test"), WithOpenAIModel("newest", ""))
	if err == nil {
		t.Fatal("expected error for unknown model policy")
	}
}

func TestToConfig_Defaults(t *testing.T) {
	cfg := toConfig(&clientConfig{})
	if cfg.Cache.Driver != "memory" {
		t.Errorf("cache driver = %q, want memory", cfg.Cache.Driver)
	}
	if !cfg.Bird.Disabled {
		t.Error("bird should be disabled unless WithBird is given")
	}
	if cfg.OpenAI.ModelPolicy != "auto" || cfg.XAI.ModelPolicy != "latest" {
		t.Errorf("policies = %q/%q, want auto/latest", cfg.OpenAI.ModelPolicy, cfg.XAI.ModelPolicy)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestToConfig_FileCacheDefaultPath(t *testing.T) {
	c := &clientConfig{}
	WithFileCache("").apply(c)
	cfg := toConfig(c)
	if cfg.Cache.Driver != "file" || cfg.Cache.Path == "" {
		t.Errorf("cache = %+v, want file driver with default path", cfg.Cache)
	}
}

func TestToConfig_ModelMapAndFallbacks(t *testing.T) {
	c := &clientConfig{}
	WithOpenAI("sk-1").apply(c)
	WithOpenAIModelMap("gpt-5.2=corp-gpt").apply(c)
	WithOpenAIFallbackModels("gpt-4.1", "gpt-4o").apply(c)
	WithXAIModelMap(`{"grok-4-1-fast":"grok-corp"}`).apply(c)

	cfg := toConfig(c)
	if cfg.OpenAI.ModelMap != "gpt-5.2=corp-gpt" {
		t.Errorf("openai map = %q", cfg.OpenAI.ModelMap)
	}
	if cfg.OpenAI.FallbackModels != "gpt-4.1,gpt-4o" {
		t.Errorf("fallbacks = %q", cfg.OpenAI.FallbackModels)
	}
	if cfg.XAI.ModelMap != `{"grok-4-1-fast":"grok-corp"}` {
		t.Errorf("xai map = %q", cfg.XAI.ModelMap)
	}
}

func TestResearch_MockAppliesModelMap(t *testing.T) {
	client, err := New(context.Background(), WithMock(), WithOpenAIModelMap("gpt-5.2=corp-gpt"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	res, err := client.Research(context.Background(), "nano banana")
	if err != nil {
		t.Fatalf("Research: %v", err)
	}
	if res.Report.OpenAIModel != "corp-gpt" {
		t.Errorf("openai model = %q, want corp-gpt", res.Report.OpenAIModel)
	}
}

func TestResearch_Mock(t *testing.T) {
	client, err := New(context.Background(), WithMock())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	res, err := client.Research(context.Background(), "claude code skills")
	if err != nil {
		t.Fatalf("Research: %v", err)
	}
	if res.Report.Mode != "both" {
		t.Errorf("mode = %q, want both", res.Report.Mode)
	}
	if len(res.Report.Reddit) == 0 {
		t.Fatal("expected threads from the fixtures")
	}
	if res.Report.Reddit[0].Upvotes == nil {
		t.Error("expected enriched upvotes on the first thread")
	}
	if res.Report.OpenAIModel != "gpt-5.2" {
		t.Errorf("openai model = %q, want gpt-5.2", res.Report.OpenAIModel)
	}
}

func TestResearch_EmptyTopic(t *testing.T) {
	client, err := New(context.Background(), WithMock())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	_, err = client.Research(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyTopic) {
		t.Fatalf("err = %v, want ErrEmptyTopic", err)
	}
}

func TestResearch_PassesOptions(t *testing.T) {
	runner := &mockRunner{fn: func(context.Context, pipeline.Request) (pipeline.Outcome, error) {
		return pipeline.Outcome{
			Report:   report.Report{Topic: "go 1.26", Mode: "reddit-only"},
			Missing:  "x",
			XBackend: domain.XBackendBird,
		}, nil
	}}
	client := &Client{runner: runner}

	res, err := client.Research(context.Background(), "go 1.26",
		Deep(), Days(14), WithSources(SourcesReddit), IncludeWeb())
	if err != nil {
		t.Fatalf("Research: %v", err)
	}

	got := runner.got
	if got.Depth != domain.DepthDeep || got.Days != 14 || got.Sources != "reddit" || !got.IncludeWeb {
		t.Errorf("request = %+v", got)
	}
	if res.MissingKeys != "x" || res.XBackend != "bird" || res.Report.Mode != "reddit-only" {
		t.Errorf("result = %+v", res)
	}
}

func TestResearch_DefaultOptions(t *testing.T) {
	runner := &mockRunner{fn: func(context.Context, pipeline.Request) (pipeline.Outcome, error) {
		return pipeline.Outcome{}, nil
	}}
	client := &Client{runner: runner, mock: true}

	if _, err := client.Research(context.Background(), "topic", Quick()); err != nil {
		t.Fatalf("Research: %v", err)
	}
	if runner.got.Sources != "auto" || runner.got.Depth != domain.DepthQuick || !runner.got.Mock {
		t.Errorf("request = %+v", runner.got)
	}
}

func TestResearch_WrapsRunnerError(t *testing.T) {
	runner := &mockRunner{fn: func(context.Context, pipeline.Request) (pipeline.Outcome, error) {
		return pipeline.Outcome{}, domain.ErrInvalidSources
	}}
	client := &Client{runner: runner}

	_, err := client.Research(context.Background(), "topic", WithSources("tiktok"))
	if !errors.Is(err, ErrInvalidSources) {
		t.Fatalf("err = %v, want ErrInvalidSources", err)
	}
}

func TestHealth(t *testing.T) {
	client := &Client{healthSvc: mockHealth{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"openai": healthuc.CheckOK, "xai": healthuc.CheckError},
	}}}

	h := client.Health(context.Background())
	if h.Status != "degraded" {
		t.Errorf("status = %q, want degraded", h.Status)
	}
	if h.Checks["openai"] != "ok" || h.Checks["xai"] != "error" {
		t.Errorf("checks = %v", h.Checks)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithValkey("localhost:6379", "secret").apply(cfg)
	if cfg.cacheDriver != "valkey" {
		t.Errorf("driver = %q, want valkey", cfg.cacheDriver)
	}
	if cfg.addrs[0] != "localhost:6379" {
		t.Errorf("addr = %q, want localhost:6379", cfg.addrs[0])
	}
	if cfg.password != "secret" {
		t.Errorf("password = %q, want secret", cfg.password)
	}

	cfg2 := &clientConfig{}
	WithRedis("localhost:6380", "pass").apply(cfg2)
	if cfg2.cacheDriver != "redis" {
		t.Errorf("driver = %q, want redis", cfg2.cacheDriver)
	}

	cfg3 := &clientConfig{}
	WithOpenAI("sk-1").apply(cfg3)
	WithOpenAIBaseURL("https://openrouter.ai/api/v1").apply(cfg3)
	WithXAI("xai-1").apply(cfg3)
	WithXAIModel("pinned", "grok-4").apply(cfg3)
	WithBird("/usr/local/bin/bird").apply(cfg3)
	if cfg3.openai.apiKey != "sk-1" || cfg3.openai.baseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("openai = %+v", cfg3.openai)
	}
	if cfg3.xai.apiKey != "xai-1" || cfg3.xai.policy != "pinned" || cfg3.xai.pin != "grok-4" {
		t.Errorf("xai = %+v", cfg3.xai)
	}
	if !cfg3.birdEnabled || cfg3.birdBinary != "/usr/local/bin/bird" {
		t.Errorf("bird = %v %q", cfg3.birdEnabled, cfg3.birdBinary)
	}

	cfg4 := &clientConfig{}
	logger := slog.Default()
	WithLogger(logger).apply(cfg4)
	if cfg4.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg4)
	if cfg4.metricsReg != reg {
		t.Error("expected registerer to be set")
	}
}

func TestObserver_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("first observer: %v", err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second observer: %v", err)
	}
	if first.metrics.operations != second.metrics.operations {
		t.Error("expected the second observer to reuse registered collectors")
	}

	first.observe("research", time.Now(), nil)
	second.observe("research", time.Now(), errors.New("boom"))
	first.countItems(3, 2)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"last30days_sdk_operations_total",
		"last30days_sdk_operation_duration_seconds",
		"last30days_sdk_report_items_total",
	} {
		if !names[want] {
			t.Errorf("metric %s not gathered", want)
		}
	}
}

func TestObserver_NilIsNoop(t *testing.T) {
	var o *observer
	o.observe("research", time.Now(), nil)
	o.countItems(1, 1)

	quiet, err := newObserver(nil, nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	quiet.observe("health", time.Now(), errors.New("boom"))
	quiet.countItems(1, 1)
}
