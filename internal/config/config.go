package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type StorageBackend string

const (
	StoragePostgres StorageBackend = "postgres"
	StorageMemory   StorageBackend = "memory"
)

type Config struct {
	Port string `env:"PORT" envDefault:"5000"`

	// Storage
	StorageBackend StorageBackend `env:"STORAGE_BACKEND" envDefault:"postgres"`
	DatabaseURL    string         `env:"DATABASE_URL"`

	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"openai/gpt-oss-120b"`
	Temperature      float32     `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	MaxTokens        int         `env:"LLM_MAX_TOKENS" envDefault:"500"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// Content
	FAQFilePath string `env:"FAQ_FILE_PATH" envDefault:"faqs.json"`
	StaticDir   string `env:"STATIC_DIR" envDefault:"static"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	// Interaction log and daily report; an empty path disables both
	LogFilePath string `env:"LOG_FILE_PATH" envDefault:"logs/log.jsonl"`
	ReportCron  string `env:"REPORT_CRON" envDefault:"0 21 * * *"`
}

// New parses the environment and validates the result.
func New() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load parses the environment without validating. NEON_KEY is accepted
// when DATABASE_URL is unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("NEON_KEY")
	}
	return cfg, nil
}

// Validate checks provider and storage settings, including that the
// database URL parses.
func (c *Config) Validate() error {
	errs := []error{c.ValidateStorage()}

	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
	case ProviderYandex:
		if c.YandexOAuthToken == "" || c.YandexFolderID == "" {
			errs = append(errs, errors.New("YANDEX_OAUTH_TOKEN and YANDEX_FOLDER_ID are required for the yandex provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider))
	}

	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", c.MaxTokens))
	}

	return errors.Join(errs...)
}

// ValidateStorage checks only the storage settings, for commands that
// never talk to a model.
func (c *Config) ValidateStorage() error {
	switch c.StorageBackend {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL (or NEON_KEY) is required for postgres storage")
		}
		if _, err := pgxpool.ParseConfig(c.DatabaseURL); err != nil {
			return fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	return nil
}
