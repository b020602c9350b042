package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/meridian-hr/funnel/pkg/logx"
	"github.com/meridian-hr/funnel/recruitment/application"
)

const (
	// EnvDevelopment relaxes Validate to warnings; EnvProduction refuses to
	// start on unsafe settings.
	EnvDevelopment = "development"
	EnvProduction  = "production"

	minTokenSecretBytes = 48

	tokenIssuer   = "funnel"
	tokenAudience = "funnel-web"
)

// Config is the process configuration, read once from the environment at
// startup and never mutated.
type Config struct {
	Environment string
	Port        string
	LogLevel    logx.Level

	DatabaseURL string
	RedisAddr   string

	TokenSecret     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	AllowedOrigins string

	// ObjectStoreConnection is an S3-compatible endpoint URL; empty means
	// the default AWS resolution chain.
	ObjectStoreConnection string
	ObjectStoreContainer  string

	WebhookSecret string
	APIBaseURL    string

	DocumentSizeCapBytes int64
	IdempotencyWindow    time.Duration
	LakeWriteAttempts    int
}

// LoadConfig assembles the configuration from environment variables,
// applying defaults for everything optional.
func LoadConfig() *Config {
	return &Config{
		Environment: getEnv("ENVIRONMENT", EnvDevelopment),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    logx.ParseLevel(getEnv("LOG_LEVEL", "info")),

		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/funnel?sslmode=disable"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),

		TokenSecret:     os.Getenv("TOKEN_SECRET"),
		AccessTokenTTL:  time.Duration(getEnvInt("ACCESS_TOKEN_TTL_MINUTES", 30)) * time.Minute,
		RefreshTokenTTL: time.Duration(getEnvInt("REFRESH_TOKEN_TTL_DAYS", 7)) * 24 * time.Hour,

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),

		ObjectStoreConnection: os.Getenv("OBJECT_STORE_CONNECTION"),
		ObjectStoreContainer:  os.Getenv("OBJECT_STORE_CONTAINER"),

		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
		APIBaseURL:    getEnv("API_BASE_URL", "http://localhost:8080"),

		DocumentSizeCapBytes: int64(getEnvInt("DOCUMENT_SIZE_CAP_BYTES", application.DefaultDocumentSizeCap)),
		IdempotencyWindow:    time.Duration(getEnvInt("IDEMPOTENCY_WINDOW_MINUTES", 15)) * time.Minute,
		LakeWriteAttempts:    getEnvInt("LAKE_WRITE_ATTEMPTS", 3),
	}
}

// IsProduction reports whether the process runs with production hardening.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Validate checks the settings that must not be wrong in production. In
// development the same findings are logged as warnings and the process
// continues.
func (c *Config) Validate() error {
	var problems []string

	if len(c.TokenSecret) < minTokenSecretBytes {
		problems = append(problems, fmt.Sprintf("TOKEN_SECRET must be at least %d bytes", minTokenSecretBytes))
	}
	if c.WebhookSecret == "" {
		problems = append(problems, "WEBHOOK_SECRET is required")
	}
	if c.ObjectStoreContainer == "" {
		problems = append(problems, "OBJECT_STORE_CONTAINER is required")
	}
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if strings.TrimSpace(origin) == "*" {
			problems = append(problems, "ALLOWED_ORIGINS must not contain a wildcard")
			break
		}
	}

	if len(problems) == 0 {
		return nil
	}

	if c.IsProduction() {
		return fmt.Errorf("unsafe production configuration: %s", strings.Join(problems, "; "))
	}

	for _, p := range problems {
		logx.Warnf("Config: %s (tolerated outside production)", p)
	}
	return nil
}

// ============================================================================
// Helper Functions
// ============================================================================

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		logx.Warnf("Config: %s=%q is not an integer, using default %d", key, raw, fallback)
		return fallback
	}
	return value
}
