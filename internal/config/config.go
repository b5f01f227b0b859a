package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Global singleton for call sites that cannot take injected config.
var globalConfig *Config

// Config holds all environment backed configuration for meetscribe-server.
type Config struct {
	// HTTP Server
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`
	PprofPort   int    `env:"PPROF_PORT" envDefault:"6060"`
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`

	// Session auth. Sessions are JWTs issued by the identity provider and
	// validated against its JWKS endpoint.
	JWKSURL             string        `env:"JWKS_URL,notEmpty"`
	Issuer              string        `env:"ISSUER,notEmpty"`
	Audience            string        `env:"AUDIENCE" envDefault:"authenticated"`
	RefreshJWKSInterval time.Duration `env:"JWKS_REFRESH_INTERVAL" envDefault:"5m"`
	ClockSkew           time.Duration `env:"AUTH_CLOCK_SKEW" envDefault:"30s"`

	// Cron entry points share one bearer secret.
	CronSecret string `env:"CRON_SECRET,notEmpty"`

	// Recall bot provider
	RecallAPIKey  string        `env:"RECALL_API_KEY,notEmpty"`
	RecallBaseURL string        `env:"RECALL_BASE_URL" envDefault:"https://api.recall.ai"`
	RecallTimeout time.Duration `env:"RECALL_TIMEOUT" envDefault:"30s"`

	// Google OAuth / Calendar
	GoogleClientID     string        `env:"GOOGLE_CLIENT_ID,notEmpty"`
	GoogleClientSecret string        `env:"GOOGLE_CLIENT_SECRET,notEmpty"`
	GoogleRedirectURL  string        `env:"GOOGLE_REDIRECT_URL,notEmpty"`
	CalendarPageSize   int           `env:"CALENDAR_PAGE_SIZE" envDefault:"500"`
	CalendarTimeout    time.Duration `env:"CALENDAR_TIMEOUT" envDefault:"30s"`

	// LinkedIn OAuth / publishing
	LinkedInClientID     string `env:"LINKEDIN_CLIENT_ID,notEmpty"`
	LinkedInClientSecret string `env:"LINKEDIN_CLIENT_SECRET,notEmpty"`
	LinkedInRedirectURL  string `env:"LINKEDIN_REDIRECT_URL,notEmpty"`

	// OpenAI content generation
	OpenAIAPIKey  string        `env:"OPENAI_API_KEY,notEmpty"`
	OpenAIModel   string        `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	OpenAITimeout time.Duration `env:"OPENAI_TIMEOUT" envDefault:"60s"`

	// Job scheduling
	BotDispatchIntervalMinutes int           `env:"BOT_DISPATCH_INTERVAL_MINUTES" envDefault:"5"`
	BotDispatchWindow          time.Duration `env:"BOT_DISPATCH_WINDOW" envDefault:"15m"`
	PollIntervalMinutes        int           `env:"POLL_INTERVAL_MINUTES" envDefault:"5"`
	PollMaxAttempts            int           `env:"POLL_MAX_ATTEMPTS" envDefault:"4"`
	PollBackoffBase            time.Duration `env:"POLL_BACKOFF_BASE" envDefault:"2s"`

	// Observability / Logging
	OTLPEndpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPHeaders      string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	ServiceName      string `env:"SERVICE_NAME" envDefault:"meetscribe-api"`
	ServiceNamespace string `env:"SERVICE_NAMESPACE" envDefault:"meetscribe"`
	Environment      string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"console"`

	// Features
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`

	// Internal
	EnvReloadedAt time.Time
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if _, err := url.ParseRequestURI(cfg.JWKSURL); err != nil {
		return nil, fmt.Errorf("invalid JWKS_URL: %w", err)
	}
	if _, err := url.ParseRequestURI(cfg.RecallBaseURL); err != nil {
		return nil, fmt.Errorf("invalid RECALL_BASE_URL: %w", err)
	}

	if cfg.PollMaxAttempts < 1 {
		return nil, errors.New("POLL_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.BotDispatchWindow <= 0 {
		return nil, errors.New("BOT_DISPATCH_WINDOW must be positive")
	}
	if cfg.CalendarPageSize <= 0 || cfg.CalendarPageSize > 2500 {
		return nil, errors.New("CALENDAR_PAGE_SIZE must be between 1 and 2500")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.EnvReloadedAt = time.Now()

	globalConfig = cfg

	return cfg, nil
}

// GetGlobal returns the global config instance.
// Deprecated: Use dependency injection with Load() instead.
func GetGlobal() *Config {
	return globalConfig
}

// GetEnvReloadedAt reports when the environment was last parsed.
func GetEnvReloadedAt() time.Time {
	if globalConfig == nil {
		return time.Time{}
	}
	return globalConfig.EnvReloadedAt
}

var Version = "dev"

func IsDev() bool {
	return strings.HasPrefix(Version, "dev")
}
