package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ConfigDirEnv overrides where the .env file is read from. An empty value
// disables file config; a path ending in .env names the file itself.
const ConfigDirEnv = "LAST30DAYS_CONFIG_DIR"

// FromEnv builds a Config from process environment variables, falling back
// to the .env file, using the variable names of the standalone script.
func FromEnv() Config {
	file := readDotEnv(DotEnvPath())
	pick := func(keys ...string) string {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				return v
			}
		}
		for _, k := range keys {
			if v := file[k]; v != "" {
				return v
			}
		}
		return ""
	}

	cfg := Config{
		OpenAI: ProviderConfig{
			APIKey:         pick("OPENAI_API_KEY"),
			BaseURL:        pick("OPENAI_BASE_URL", "OPENAI_API_BASE"),
			ModelPolicy:    pick("OPENAI_MODEL_POLICY"),
			ModelPin:       pick("OPENAI_MODEL_PIN"),
			ModelMap:       pick("OPENAI_MODEL_MAP"),
			FallbackModels: pick("OPENAI_FALLBACK_MODELS"),
		},
		XAI: ProviderConfig{
			APIKey:      pick("XAI_API_KEY"),
			BaseURL:     pick("XAI_BASE_URL", "XAI_API_BASE"),
			ModelPolicy: pick("XAI_MODEL_POLICY"),
			ModelPin:    pick("XAI_MODEL_PIN"),
			ModelMap:    pick("XAI_MODEL_MAP"),
		},
		Bird:    BirdConfig{Binary: pick("LAST30DAYS_BIRD_BIN")},
		Cache:   CacheConfig{Driver: pick("LAST30DAYS_CACHE_DRIVER"), Path: pick("LAST30DAYS_CACHE_PATH")},
		Logging: LoggingConfig{Level: pick("LOG_LEVEL")},
	}
	cfg.ApplyDefaults()
	return cfg
}

// DotEnvPath returns the .env file to read, or "" when file config is disabled.
func DotEnvPath() string {
	override, set := os.LookupEnv(ConfigDirEnv)
	switch {
	case set && override == "":
		return ""
	case set:
		if filepath.Base(override) == ".env" {
			return override
		}
		return filepath.Join(override, ".env")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "last30days", ".env")
}

// readDotEnv parses KEY=VALUE lines; blank lines and # comments are skipped
// and matching surrounding quotes are stripped.
func readDotEnv(path string) map[string]string {
	env := map[string]string{}
	if path == "" {
		return env
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return env
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		if key != "" && value != "" {
			env[key] = value
		}
	}
	return env
}
