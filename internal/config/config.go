// Package config loads the API server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env             string        `env:"APP_ENV" envDefault:"development" validate:"oneof=development staging production test"`
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080" validate:"required"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s" validate:"gt=0"`

	Telemetry Telemetry
	Session   Session
	Scheme    Scheme
	Assistant Assistant
}

type Telemetry struct {
	Enabled     bool `env:"OTEL_ENABLED" envDefault:"true"`
	LogsEnabled bool `env:"OTEL_LOGS_ENABLED" envDefault:"false"`
}

type Session struct {
	Backend       string        `env:"SESSION_BACKEND" envDefault:"memory" validate:"oneof=memory redis"`
	TTL           time.Duration `env:"SESSION_TTL" envDefault:"24h" validate:"gt=0"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379" validate:"required_if=Backend redis"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`
}

type Scheme struct {
	Name  string `env:"GRADE_SCHEME" envDefault:"standard" validate:"required"`
	File  string `env:"GRADE_SCHEME_FILE"`
	Watch bool   `env:"GRADE_SCHEME_WATCH" envDefault:"false"`
}

type Assistant struct {
	Provider      string        `env:"ASSISTANT_PROVIDER" envDefault:"offline" validate:"oneof=offline openai gemini"`
	Model         string        `env:"ASSISTANT_MODEL"`
	APIKey        string        `env:"ASSISTANT_API_KEY" validate:"required_unless=Provider offline"`
	BaseURL       string        `env:"ASSISTANT_BASE_URL" validate:"omitempty,url"`
	Timeout       time.Duration `env:"ASSISTANT_TIMEOUT" envDefault:"60s" validate:"gt=0"`
	HistoryTokens int           `env:"ASSISTANT_HISTORY_TOKENS" envDefault:"2000" validate:"gt=0"`
	RatePerSecond float64       `env:"ASSISTANT_RATE" envDefault:"1" validate:"gt=0"`
	Burst         int           `env:"ASSISTANT_BURST" envDefault:"5" validate:"gt=0"`
	Greeting      string        `env:"ASSISTANT_GREETING" envDefault:"Hi! Ask me anything about your grades."`
}

// Load reads .env files when present, without overriding variables already in
// the process environment, then parses and validates the configuration.
func Load(files ...string) (*Config, error) {
	if err := loadDotEnv(files...); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadDotEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load .env: %w", err)
}
