// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config is the process configuration. A .env file, if present, is loaded
// into the environment before Load runs (see main).
type Config struct {
	Port              string        `env:"PORT" envDefault:"5175"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	Store             string        `env:"STORE" envDefault:"memory"`
	DBPath            string        `env:"DB_PATH" envDefault:"./data/hangman.db"`
	ClientOrigin      string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	DefaultGuessLimit int           `env:"DEFAULT_GUESS_LIMIT" envDefault:"6"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	if cfg.Store != StoreMemory && cfg.Store != StoreSQLite {
		return Config{}, fmt.Errorf("STORE must be %q or %q, got %q", StoreMemory, StoreSQLite, cfg.Store)
	}
	if cfg.DefaultGuessLimit < 1 {
		return Config{}, fmt.Errorf("DEFAULT_GUESS_LIMIT must be >= 1, got %d", cfg.DefaultGuessLimit)
	}
	if cfg.RequestTimeout <= 0 {
		return Config{}, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", cfg.RequestTimeout)
	}
	return cfg, nil
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
