package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Addr:          ":8080",
		HashSecret:    "secret",
		JWTSigningKey: "signing-key",
		StoreBackend:  "memory",
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid memory config passes", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	t.Run("missing hash secret fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.HashSecret = ""
		assert.ErrorContains(t, cfg.Validate(), "HASH_SECRET")
	})

	t.Run("missing signing key fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWTSigningKey = ""
		assert.ErrorContains(t, cfg.Validate(), "JWT_SIGNING_KEY")
	})

	t.Run("redis backend requires a URL", func(t *testing.T) {
		cfg := validConfig()
		cfg.StoreBackend = "redis"
		assert.ErrorContains(t, cfg.Validate(), "REDIS_URL")

		cfg.RedisURL = "redis://localhost:6379"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("postgres backend requires a DSN", func(t *testing.T) {
		cfg := validConfig()
		cfg.StoreBackend = "postgres"
		assert.ErrorContains(t, cfg.Validate(), "POSTGRES_DSN")

		cfg.PostgresDSN = "postgres://localhost/accounts"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown backend fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.StoreBackend = "cassandra"
		assert.ErrorContains(t, cfg.Validate(), "unknown store backend")
	})
}

func TestFromEnv(t *testing.T) {
	t.Setenv("HASH_SECRET", "secret")
	t.Setenv("JWT_SIGNING_KEY", "signing-key")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "memory", cfg.StoreBackend)
}
