package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Firestore     FirestoreConfig
	Import        ImportConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	BaseURL            string
	RateLimitPerSecond int
	RateLimitBurst     int
}

type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
}

type ImportConfig struct {
	// MaxUploadBytes bounds a single statement upload.
	MaxUploadBytes int64
	// ParseWorkers is the row normalization fan-out.
	ParseWorkers int
	// CommitWorkers is the store write fan-out.
	CommitWorkers int
	// CommitRatePerSecond throttles store writes; zero disables throttling.
	CommitRatePerSecond int
	// PreviewTTL is how long an uncommitted preview survives.
	PreviewTTL time.Duration
	// CurrencyCode drives preview amount display.
	CurrencyCode string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

// Load reads configuration from environment variables. A .env file in the
// working directory is merged in first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 100),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 200),
		},
		Firestore: FirestoreConfig{
			ProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		Import: ImportConfig{
			MaxUploadBytes:      int64(getEnvAsInt("IMPORT_MAX_UPLOAD_BYTES", 10<<20)),
			ParseWorkers:        getEnvAsInt("IMPORT_PARSE_WORKERS", 4),
			CommitWorkers:       getEnvAsInt("IMPORT_COMMIT_WORKERS", 8),
			CommitRatePerSecond: getEnvAsInt("IMPORT_COMMIT_RATE_PER_SECOND", 0),
			PreviewTTL:          getEnvAsDuration("IMPORT_PREVIEW_TTL", time.Hour),
			CurrencyCode:        getEnv("IMPORT_CURRENCY_CODE", "USD"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
	}

	if cfg.Firestore.ProjectID == "" {
		return nil, errors.New("FIRESTORE_PROJECT_ID is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
