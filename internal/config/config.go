package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Cache drivers.
const (
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
	CacheValkey = "valkey"
)

// Config holds the last30days configuration.
type Config struct {
	OpenAI  ProviderConfig `yaml:"openai"`
	XAI     ProviderConfig `yaml:"xai"`
	Bird    BirdConfig     `yaml:"bird"`
	Reddit  RedditConfig   `yaml:"reddit"`
	Cache   CacheConfig    `yaml:"cache"`
	HTTP    HTTPConfig     `yaml:"http"`
	Auth    AuthConfig     `yaml:"auth"`
	Logging LoggingConfig  `yaml:"logging"`
	Search  SearchConfig   `yaml:"search"`
}

// ProviderConfig holds one LLM provider's credentials and model selection.
type ProviderConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	ModelPolicy    string `yaml:"model_policy"` // auto, pinned, latest, stable
	ModelPin       string `yaml:"model_pin"`
	ModelMap       string `yaml:"model_map"`       // "alias=target,other=target2"
	FallbackModels string `yaml:"fallback_models"` // comma-separated, OpenAI only
}

// BirdConfig holds local X CLI settings.
type BirdConfig struct {
	Binary   string `yaml:"binary"`
	Disabled bool   `yaml:"disabled"`
}

// RedditConfig holds public Reddit endpoint settings.
type RedditConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
}

// CacheConfig holds model resolution cache settings.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // memory, file, redis, valkey (default: file)
	Path             string   `yaml:"path"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLHours         int      `yaml:"ttl_hours"`
	Size             int      `yaml:"size"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings for serve mode.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SearchConfig holds research defaults.
type SearchConfig struct {
	Days int `yaml:"days"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadOrEnv loads config/<env>.yaml when it exists and falls back to
// FromEnv otherwise.
func LoadOrEnv(env string) (Config, error) {
	if fileExists(findConfigPath(env)) {
		return Load(env)
	}
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.OpenAI.ModelPolicy == "" {
		c.OpenAI.ModelPolicy = "auto"
	}
	if c.XAI.ModelPolicy == "" {
		c.XAI.ModelPolicy = "latest"
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheFile
	}
	if c.Cache.Path == "" && c.Cache.Driver == CacheFile {
		c.Cache.Path = defaultCachePath()
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 7 * 24
	}
	if c.Cache.Size <= 0 {
		c.Cache.Size = 64
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	// a deep run may take several minutes
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 600
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Search.Days <= 0 {
		c.Search.Days = 30
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	for name, p := range map[string]ProviderConfig{"openai": c.OpenAI, "xai": c.XAI} {
		switch p.ModelPolicy {
		case "auto", "pinned", "latest", "stable":
		default:
			return fmt.Errorf("%s.model_policy must be one of auto, pinned, latest, stable, got %q", name, p.ModelPolicy)
		}
	}
	switch c.Cache.Driver {
	case CacheMemory, CacheFile:
	case CacheRedis, CacheValkey:
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver must be one of memory, file, redis, valkey, got %q", c.Cache.Driver)
	}
	if c.Search.Days < 1 || c.Search.Days > 30 {
		return fmt.Errorf("search.days must be between 1 and 30, got %d", c.Search.Days)
	}
	return nil
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "last30days", "model_selection.json")
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
