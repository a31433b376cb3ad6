package config

import (
	"github.com/caarlos0/env/v11"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/config/configs"
)

// Config aggregates all configuration sections for the service. Fields
// are populated from environment variables using the caarlos0/env
// library; nested structs are tagged with envPrefix so their fields are
// parsed with the given prefix. Loaded once at startup by Load and
// treated as immutable thereafter.
type Config struct {
	// Env names the deployment environment (e.g. prod, dev).
	Env string `env:"ENV" envDefault:"prod"`

	// Storage selects the session store backend: "postgres" or "memory".
	Storage string `env:"STORAGE" envDefault:"postgres"`

	// HistoryLimit bounds the chat turns kept per session.
	HistoryLimit int `env:"HISTORY_LIMIT" envDefault:"20"`

	// HTTP holds configuration for the HTTP server (HTTP_ prefix).
	HTTP configs.HTTP `envPrefix:"HTTP_"`

	// Log configures the structured logger (LOG_ prefix).
	Log configs.Logger `envPrefix:"LOG_"`

	// Psql configures the PostgreSQL connection (PSQL_ prefix).
	Psql configs.Postgres `envPrefix:"PSQL_"`

	// LLM configures completion backends and routing (LLM_ prefix).
	LLM configs.LLM `envPrefix:"LLM_"`

	// Forecast holds the delivery estimator coefficients (FORECAST_ prefix).
	Forecast configs.Forecast `envPrefix:"FORECAST_"`
}

// Load reads configuration from environment variables into a Config.
// All fields fall back to their declared defaults when no environment
// variable is provided.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
