package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures process-level configuration so main stays lean.
type Server struct {
	// Addr is the listen address for the HTTP server.
	Addr string `env:"PERMITDESK_ADDR" envDefault:":8080"`

	// DBPath is the SQLite file backing the draft store. An empty value
	// selects the in-memory store (drafts do not survive a restart).
	DBPath string `env:"PERMITDESK_DB_PATH" envDefault:"permitdesk.db"`

	// AutosaveInterval is how often the autosave worker persists a draft.
	AutosaveInterval time.Duration `env:"PERMITDESK_AUTOSAVE_INTERVAL" envDefault:"30s"`

	// Environment labels health/status responses (dev, staging, prod).
	Environment string `env:"PERMITDESK_ENV" envDefault:"dev"`
}

// FromEnv builds a Server config from environment variables.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, err
	}
	if cfg.AutosaveInterval <= 0 {
		cfg.AutosaveInterval = 30 * time.Second
	}
	return cfg, nil
}
