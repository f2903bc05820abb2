package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_MODE", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, AuthModeDev, cfg.Auth.Mode)
	assert.Equal(t, 15*time.Minute, cfg.Storage.PresignTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("MUTATIONS_PER_SECOND", "2.5")
	t.Setenv("DB_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.Limits.CacheTTL)
	assert.Equal(t, 2.5, cfg.Limits.MutationsPerSecond)
	assert.Equal(t, 5432, cfg.Database.Port, "invalid integers fall back to the default")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080"},
			Database: DatabaseConfig{Host: "localhost"},
			Auth:     AuthConfig{Mode: AuthModeDev},
			Limits:   LimitsConfig{MutationsPerSecond: 1, MutationBurst: 1},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("firebase mode needs credentials", func(t *testing.T) {
		cfg := base()
		cfg.Auth.Mode = AuthModeFirebase
		assert.Error(t, cfg.Validate())

		cfg.Auth.FirebaseCredentialsPath = "/secrets/sa.json"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown auth mode", func(t *testing.T) {
		cfg := base()
		cfg.Auth.Mode = "magic"
		assert.Error(t, cfg.Validate())
	})

	t.Run("dsn replaces host", func(t *testing.T) {
		cfg := base()
		cfg.Database.Host = ""
		assert.Error(t, cfg.Validate())

		cfg.Database.DSN = "postgres://localhost/db"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("memory backend needs no database", func(t *testing.T) {
		cfg := base()
		cfg.Database.Host = ""
		cfg.Database.Backend = StoreBackendMemory
		assert.NoError(t, cfg.Validate())

		cfg.Database.Backend = "sqlite"
		assert.Error(t, cfg.Validate())
	})
}
