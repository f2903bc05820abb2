package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Limits   LimitsConfig
	Tracing  TracingConfig
	App      AppConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

// DatabaseConfig holds both the discrete connection parts used by the
// record store (lib/pq) and the pgx DSN used by the users repo and health
// checks. DSN wins when set.
type DatabaseConfig struct {
	// Backend is "postgres" or "memory". The memory backend keeps rows in
	// process and is meant for demos and local frontend work.
	Backend  string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	DSN      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	// Mode is "dev" (X-User-Id header, demo-user fallback) or "firebase".
	Mode string
	// FirebaseCredentialsPath is only read in firebase mode.
	FirebaseCredentialsPath string
}

// FirebaseConfig is the subset of AuthConfig needed to initialise the SDK.
type FirebaseConfig struct {
	CredentialsPath string
}

// StorageConfig points at the S3 bucket holding file objects. Empty
// credentials fall back to the default AWS chain; Endpoint targets
// S3-compatible stores such as MinIO.
type StorageConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PresignTTL      time.Duration
}

type LimitsConfig struct {
	MutationsPerSecond float64
	MutationBurst      int
	CacheTTL           time.Duration
}

// TracingConfig enables OTLP/HTTP trace export. OTLPURL is the full traces
// URL, e.g. http://collector:4318/v1/traces; empty disables tracing.
type TracingConfig struct {
	OTLPURL string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

const (
	AuthModeDev      = "dev"
	AuthModeFirebase = "firebase"

	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"
)

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Backend:  getEnv("STORE_BACKEND", StoreBackendPostgres),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "freelancehub"),
			DSN:      getEnv("DB_DSN", ""),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			Mode:                    getEnv("AUTH_MODE", AuthModeDev),
			FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		Storage: StorageConfig{
			Bucket:          getEnv("STORAGE_BUCKET", ""),
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
			Endpoint:        getEnv("STORAGE_ENDPOINT", ""),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("STORAGE_SECRET_ACCESS_KEY", ""),
			PresignTTL:      getEnvAsDuration("STORAGE_PRESIGN_TTL", 15*time.Minute),
		},
		Limits: LimitsConfig{
			MutationsPerSecond: getEnvAsFloat("MUTATIONS_PER_SECOND", 5),
			MutationBurst:      getEnvAsInt("MUTATION_BURST", 10),
			CacheTTL:           getEnvAsDuration("CACHE_TTL", 10*time.Minute),
		},
		Tracing: TracingConfig{
			OTLPURL: getEnv("TRACING_OTLP_URL", ""),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Database.Backend {
	case StoreBackendMemory:
	case StoreBackendPostgres, "":
		if c.Database.Host == "" && c.Database.DSN == "" {
			return fmt.Errorf("DB_HOST or DB_DSN is required")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreBackendPostgres, StoreBackendMemory, c.Database.Backend)
	}

	switch c.Auth.Mode {
	case AuthModeDev:
	case AuthModeFirebase:
		if c.Auth.FirebaseCredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required when AUTH_MODE=firebase")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthModeDev, AuthModeFirebase, c.Auth.Mode)
	}

	if c.Limits.MutationsPerSecond <= 0 || c.Limits.MutationBurst <= 0 {
		return fmt.Errorf("MUTATIONS_PER_SECOND and MUTATION_BURST must be positive")
	}

	return nil
}

// Firebase returns the SDK settings derived from the auth section.
func (c *Config) Firebase() *FirebaseConfig {
	return &FirebaseConfig{CredentialsPath: c.Auth.FirebaseCredentialsPath}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
