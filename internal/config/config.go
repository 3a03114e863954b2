package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	GeminiAPIKey      string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel       string        `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash-latest"`
	GenerationTimeout time.Duration `envconfig:"GENERATION_TIMEOUT" default:"60s"`

	DatabaseURL    string `envconfig:"DATABASE_URL" default:"contentops.db"`
	PersistBackend string `envconfig:"PERSIST_BACKEND" default:"sqlite"` // "sqlite" or "redis"
	RedisURL       string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`

	HTTPPort  string        `envconfig:"HTTP_PORT" default:"8080"`
	LogLevel  string        `envconfig:"LOG_LEVEL" default:"info"`
	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
}

var AppConfig Config

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, relying on environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("failed to process environment: %w", err)
	}
	AppConfig = cfg
	return nil
}

// Validate checks the settings the API server cannot run without.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	switch c.PersistBackend {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("unknown PERSIST_BACKEND %q", c.PersistBackend)
	}
	if c.GenerationTimeout <= 0 {
		return errors.New("GENERATION_TIMEOUT must be positive")
	}
	return nil
}

// GenerationEnabled reports whether a remote model is configured. Without one
// every generation request fails fast and the stores use their local fallbacks.
func (c Config) GenerationEnabled() bool {
	return c.GeminiAPIKey != ""
}
