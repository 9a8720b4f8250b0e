package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration. Components receive it (or the
// relevant slice of it) explicitly at construction; nothing reads the
// environment after startup.
type Config struct {
	// HTTP server
	Port                string        `env:"PORT"                  envDefault:"8210"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Document store
	GoogleCloudProject string `env:"GOOGLE_CLOUD_PROJECT" envDefault:""`
	UseMemoryStore     bool   `env:"USE_MEMORY_STORE"     envDefault:"false"`

	// Auth
	SkipAuth bool `env:"SKIP_AUTH" envDefault:"false"`

	// Engine. All occurrence-due date math runs in this one canonical
	// timezone regardless of where a request or trigger originates.
	Timezone string `env:"TIMEZONE" envDefault:"Asia/Seoul"`

	// Scheduler
	SchedulerEnabled  bool          `env:"SCHEDULER_ENABLED"  envDefault:"true"`
	SchedulerInterval time.Duration `env:"SCHEDULER_INTERVAL" envDefault:"1h"`
	SettlementDay     int           `env:"SETTLEMENT_DAY"     envDefault:"1"`

	// AI chat
	GeminiAPIKey string        `env:"GEMINI_API_KEY" envDefault:""`
	GeminiModel  string        `env:"GEMINI_MODEL"   envDefault:"gemini-2.0-flash"`
	ChatTimeout  time.Duration `env:"CHAT_TIMEOUT"   envDefault:"30s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Location resolves the canonical timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}
