package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures everything the server needs at startup. All values come
// from the environment so main stays lean and nothing is hard-coded.
type Config struct {
	Addr string `env:"ACCOUNT_GATEWAY_ADDR" envDefault:":8080"`

	// HashSecret keys the email pseudonymizer. Required: losing or rotating
	// it orphans every existing hash record.
	HashSecret string `env:"HASH_SECRET"`

	// JWTSigningKey verifies identity tokens issued for mobile clients.
	JWTSigningKey string `env:"JWT_SIGNING_KEY"`

	// StoreBackend selects the document store: memory, redis, or postgres.
	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory"`

	RedisURL    string `env:"REDIS_URL"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// FromEnv parses and validates the configuration.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the invariants FromEnv relies on. Split out so tests can
// exercise it without touching the process environment.
func (c Config) Validate() error {
	if c.HashSecret == "" {
		return fmt.Errorf("HASH_SECRET is required")
	}
	if c.JWTSigningKey == "" {
		return fmt.Errorf("JWT_SIGNING_KEY is required")
	}
	switch c.StoreBackend {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis backend")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	return nil
}
