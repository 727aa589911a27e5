// Package config loads application configuration from an optional YAML
// file with BLOGSMITH_* environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Provider names accepted in Config.Provider.
const (
	ProviderGoogle    = "google"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// State store backends accepted in Config.StateStore.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config is the full application configuration.
type Config struct {
	Provider string `yaml:"provider"`

	GoogleAPIKey    string `yaml:"google_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`

	ChatModel  string `yaml:"chat_model"`
	EmbedModel string `yaml:"embed_model"`

	RedisURL string `yaml:"redis_url"`

	DBDriver string `yaml:"db_driver"`
	DBDSN    string `yaml:"db_dsn"`

	ChromaURL        string `yaml:"chroma_url"`
	ChromaCollection string `yaml:"chroma_collection"`

	StateStore string `yaml:"state_store"`
	StatePath  string `yaml:"state_path"`

	QualityThreshold float64 `yaml:"quality_threshold"`
	MaxRevisions     int     `yaml:"max_revisions"`
	MaxSteps         int     `yaml:"max_steps"`

	LogLevel string `yaml:"log_level"`
}

// Default returns a config with working defaults for local development.
func Default() Config {
	return Config{
		Provider:         ProviderGoogle,
		DBDriver:         "sqlite",
		DBDSN:            "blogsmith.db",
		ChromaCollection: "blog_knowledge",
		StateStore:       StoreMemory,
		StatePath:        "workflow_state.db",
		QualityThreshold: 7,
		MaxRevisions:     1,
		MaxSteps:         25,
		LogLevel:         "info",
	}
}

// Load reads path (if non-empty) over the defaults, then applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setStr := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setStr(&c.Provider, "BLOGSMITH_PROVIDER")
	setStr(&c.GoogleAPIKey, "BLOGSMITH_GOOGLE_API_KEY")
	setStr(&c.OpenAIAPIKey, "BLOGSMITH_OPENAI_API_KEY")
	setStr(&c.AnthropicAPIKey, "BLOGSMITH_ANTHROPIC_API_KEY")
	setStr(&c.ChatModel, "BLOGSMITH_CHAT_MODEL")
	setStr(&c.EmbedModel, "BLOGSMITH_EMBED_MODEL")
	setStr(&c.RedisURL, "BLOGSMITH_REDIS_URL")
	setStr(&c.DBDriver, "BLOGSMITH_DB_DRIVER")
	setStr(&c.DBDSN, "BLOGSMITH_DB_DSN")
	setStr(&c.ChromaURL, "BLOGSMITH_CHROMA_URL")
	setStr(&c.ChromaCollection, "BLOGSMITH_CHROMA_COLLECTION")
	setStr(&c.StateStore, "BLOGSMITH_STATE_STORE")
	setStr(&c.StatePath, "BLOGSMITH_STATE_PATH")
	setStr(&c.LogLevel, "BLOGSMITH_LOG_LEVEL")

	if v := os.Getenv("BLOGSMITH_QUALITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.QualityThreshold = f
		}
	}
	if v := os.Getenv("BLOGSMITH_MAX_REVISIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRevisions = n
		}
	}
	if v := os.Getenv("BLOGSMITH_MAX_STEPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxSteps = n
		}
	}
}

// Validate checks enum fields and numeric bounds.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGoogle, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("config: unknown provider %q", c.Provider)
	}
	switch c.StateStore {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("config: unknown state_store %q", c.StateStore)
	}
	switch c.DBDriver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("config: unknown db_driver %q", c.DBDriver)
	}
	if c.MaxRevisions < 0 {
		return fmt.Errorf("config: max_revisions must be >= 0, got %d", c.MaxRevisions)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("config: max_steps must be >= 1, got %d", c.MaxSteps)
	}
	return nil
}

// APIKey returns the key for the configured provider.
func (c Config) APIKey() string {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	default:
		return c.GoogleAPIKey
	}
}
