package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-hr/funnel/pkg/logx"
	"github.com/meridian-hr/funnel/recruitment/application"
)

// clearConfigEnv blanks every variable LoadConfig reads so a test starts
// from the documented defaults regardless of the host environment.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENVIRONMENT", "PORT", "LOG_LEVEL",
		"DATABASE_URL", "REDIS_ADDR",
		"TOKEN_SECRET", "ACCESS_TOKEN_TTL_MINUTES", "REFRESH_TOKEN_TTL_DAYS",
		"ALLOWED_ORIGINS",
		"OBJECT_STORE_CONNECTION", "OBJECT_STORE_CONTAINER",
		"WEBHOOK_SECRET", "API_BASE_URL",
		"DOCUMENT_SIZE_CAP_BYTES", "IDEMPOTENCY_WINDOW_MINUTES", "LAKE_WRITE_ATTEMPTS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("an empty environment falls back to development defaults", func(t *testing.T) {
		clearConfigEnv(t)

		cfg := LoadConfig()

		assert.Equal(t, EnvDevelopment, cfg.Environment)
		assert.False(t, cfg.IsProduction())
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, logx.LevelInfo, cfg.LogLevel)
		assert.Equal(t, "postgres://localhost:5432/funnel?sslmode=disable", cfg.DatabaseURL)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
		assert.Empty(t, cfg.TokenSecret)
		assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
		assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
		assert.Equal(t, "*", cfg.AllowedOrigins)
		assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
		assert.Equal(t, int64(application.DefaultDocumentSizeCap), cfg.DocumentSizeCapBytes)
		assert.Equal(t, 15*time.Minute, cfg.IdempotencyWindow)
		assert.Equal(t, 3, cfg.LakeWriteAttempts)
	})

	t.Run("environment variables override the defaults", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("ENVIRONMENT", EnvProduction)
		t.Setenv("PORT", "9090")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "5")
		t.Setenv("REFRESH_TOKEN_TTL_DAYS", "1")
		t.Setenv("DOCUMENT_SIZE_CAP_BYTES", "1048576")
		t.Setenv("LAKE_WRITE_ATTEMPTS", "5")

		cfg := LoadConfig()

		assert.True(t, cfg.IsProduction())
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, logx.LevelDebug, cfg.LogLevel)
		assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
		assert.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
		assert.Equal(t, int64(1048576), cfg.DocumentSizeCapBytes)
		assert.Equal(t, 5, cfg.LakeWriteAttempts)
	})

	t.Run("a garbled integer keeps the default", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("LAKE_WRITE_ATTEMPTS", "many")

		cfg := LoadConfig()

		assert.Equal(t, 3, cfg.LakeWriteAttempts)
	})

	t.Run("an unknown log level reads as info", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("LOG_LEVEL", "chatty")

		assert.Equal(t, logx.LevelInfo, LoadConfig().LogLevel)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("a hardened production config passes", func(t *testing.T) {
		assert.NoError(t, productionConfig().Validate())
	})

	t.Run("production refuses to start on unsafe settings", func(t *testing.T) {
		tests := []struct {
			name    string
			mutate  func(*Config)
			problem string
		}{
			{
				"short token secret",
				func(c *Config) { c.TokenSecret = strings.Repeat("x", minTokenSecretBytes-1) },
				"TOKEN_SECRET",
			},
			{
				"missing webhook secret",
				func(c *Config) { c.WebhookSecret = "" },
				"WEBHOOK_SECRET",
			},
			{
				"missing object store container",
				func(c *Config) { c.ObjectStoreContainer = "" },
				"OBJECT_STORE_CONTAINER",
			},
			{
				"wildcard origin",
				func(c *Config) { c.AllowedOrigins = "*" },
				"ALLOWED_ORIGINS",
			},
			{
				"wildcard hidden in an origin list",
				func(c *Config) { c.AllowedOrigins = "https://funnel.example.com, *" },
				"ALLOWED_ORIGINS",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				cfg := productionConfig()
				tt.mutate(cfg)

				err := cfg.Validate()
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.problem)
			})
		}
	})

	t.Run("every finding lands in one error", func(t *testing.T) {
		cfg := productionConfig()
		cfg.TokenSecret = "short"
		cfg.WebhookSecret = ""

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TOKEN_SECRET")
		assert.Contains(t, err.Error(), "WEBHOOK_SECRET")
	})

	t.Run("a token secret at the minimum length is accepted", func(t *testing.T) {
		cfg := productionConfig()
		cfg.TokenSecret = strings.Repeat("x", minTokenSecretBytes)

		assert.NoError(t, cfg.Validate())
	})

	t.Run("development tolerates the same findings", func(t *testing.T) {
		cfg := productionConfig()
		cfg.Environment = EnvDevelopment
		cfg.TokenSecret = ""
		cfg.WebhookSecret = ""
		cfg.AllowedOrigins = "*"

		assert.NoError(t, cfg.Validate())
	})
}

// ============================================================================
// Helper Functions
// ============================================================================

func productionConfig() *Config {
	return &Config{
		Environment:          EnvProduction,
		TokenSecret:          strings.Repeat("s", minTokenSecretBytes),
		WebhookSecret:        "hook-secret",
		ObjectStoreContainer: "funnel-lake",
		AllowedOrigins:       "https://funnel.example.com",
	}
}
