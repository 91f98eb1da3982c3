package last30days

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type providerConfig struct {
	apiKey    string
	baseURL   string
	policy    string
	pin       string
	modelMap  string
	fallbacks []string
}

type clientConfig struct {
	openai providerConfig
	xai    providerConfig

	cacheDriver string // memory (default), file, redis, valkey
	cachePath   string
	addrs       []string
	password    string

	birdBinary  string
	birdEnabled bool

	mock bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithOpenAI enables Reddit research through the OpenAI Responses API.
func WithOpenAI(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openai.apiKey = apiKey
	})
}

// WithOpenAIBaseURL points the OpenAI client at a compatible gateway.
func WithOpenAIBaseURL(baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openai.baseURL = baseURL
	})
}

// WithOpenAIModel sets the model policy (auto, pinned) and the pinned model.
func WithOpenAIModel(policy, pin string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openai.policy = policy
		c.openai.pin = pin
	})
}

// WithOpenAIModelMap rewrites resolved model ids, e.g. "gpt-5.2=my-deployment".
// Accepts a JSON object or comma-separated key=value pairs.
func WithOpenAIModelMap(mapping string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openai.modelMap = mapping
	})
}

// WithOpenAIFallbackModels sets the models tried, in order, when the resolved
// model is not accessible to the account. Default: gpt-4.1, gpt-4o, gpt-4o-mini.
func WithOpenAIFallbackModels(models ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openai.fallbacks = models
	})
}

// WithXAI enables X research through the xAI Responses API.
func WithXAI(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.xai.apiKey = apiKey
	})
}

// WithXAIBaseURL points the xAI client at a compatible gateway.
func WithXAIBaseURL(baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.xai.baseURL = baseURL
	})
}

// WithXAIModel sets the model policy (latest, stable, pinned) and the pinned model.
func WithXAIModel(policy, pin string) Option {
	return optionFunc(func(c *clientConfig) {
		c.xai.policy = policy
		c.xai.pin = pin
	})
}

// WithXAIModelMap rewrites resolved xAI model ids.
// Accepts a JSON object or comma-separated key=value pairs.
func WithXAIModelMap(mapping string) Option {
	return optionFunc(func(c *clientConfig) {
		c.xai.modelMap = mapping
	})
}

// WithBird enables the local bird CLI as the preferred X backend.
// An empty binary uses "bird" from PATH.
func WithBird(binary string) Option {
	return optionFunc(func(c *clientConfig) {
		c.birdEnabled = true
		c.birdBinary = binary
	})
}

// WithFileCache persists model selections to a JSON file shared across processes.
func WithFileCache(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "file"
		c.cachePath = path
	})
}

// WithValkey stores model selections in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis stores model selections in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithMock serves every provider call from bundled fixtures. No key is needed.
func WithMock() Option {
	return optionFunc(func(c *clientConfig) {
		c.mock = true
	})
}

// WithLogger enables structured logging for SDK operations and for the
// provider searches underneath them. Pass nil to disable (default).
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
