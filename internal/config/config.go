package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8000"`

	// LLM settings
	LLMProvider      string `env:"LLM_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	GeminiModel      string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	GeminiBaseURL    string `env:"GEMINI_BASE_URL"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL"`
	OpenAIModel      string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string `env:"YANDEX_FOLDER_ID"`

	// Domains
	DefaultDomain   string `env:"DEFAULT_DOMAIN" envDefault:"html_css_js"`
	DomainsFilePath string `env:"DOMAINS_FILE_PATH"`

	// Storage
	StoragePath string `env:"STORAGE_PATH" envDefault:"conversations"`

	// Cleanup
	CleanupMaxAgeDays int    `env:"CLEANUP_MAX_AGE_DAYS" envDefault:"30"`
	CleanupSchedule   string `env:"CLEANUP_SCHEDULE" envDefault:"0 3 * * *"`

	// Generation
	GenTimeoutSeconds int `env:"GEN_TIMEOUT_SECONDS" envDefault:"60"`

	// Static assets
	StaticDir   string `env:"STATIC_DIR" envDefault:"static"`
	FrontendDir string `env:"FRONTEND_DIR" envDefault:"frontend"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

func (c *Config) CleanupMaxAge() time.Duration {
	return time.Duration(c.CleanupMaxAgeDays) * 24 * time.Hour
}

func (c *Config) GenTimeout() time.Duration {
	return time.Duration(c.GenTimeoutSeconds) * time.Second
}
