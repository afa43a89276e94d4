// Package config loads ambient configuration from the environment.
//
// Only collaborator settings live here: the embedding provider credentials
// and model parameters, plus the application environment. The merge
// thresholds and file paths are CLI flags, not environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the ambient application configuration.
type Config struct {
	AppEnv              string `env:"APP_ENV" envDefault:"local"`
	EmbeddingAPIKey     string `env:"EMBEDDING_API_KEY"`
	EmbeddingModel      string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbeddingDimensions int    `env:"EMBEDDING_DIMENSIONS" envDefault:"768"`
	EmbeddingRateLimit  int    `env:"EMBEDDING_RATE_LIMIT" envDefault:"1"`
}

// Load reads configuration from the environment, honoring a .env file when
// present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	return cfg, nil
}
