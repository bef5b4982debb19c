package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Market data provider
	Provider ProviderConfig

	// Batch jobs
	Jobs JobsConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ProviderConfig holds market-data provider (Yahoo Finance) configuration
type ProviderConfig struct {
	QuoteBaseURL   string
	ChartBaseURL   string
	SummaryBaseURL string
	ProfileBaseURL string // public profile page, scrape fallback
	RequestsPerSec float64 // token bucket refill rate
	Burst          int
}

// JobsConfig holds tuning knobs for the batch importers and engines
type JobsConfig struct {
	QuoteBatchSize   int           // symbols per bulk quote request
	InsertBatchSize  int           // event rows per INSERT sub-batch
	RequestDelay     time.Duration // pause between per-symbol fetches
	HistoryFreshness time.Duration // skip history import when latest bar is younger
	MinDollarVolume  float64       // viability floor: price * volume
	MinMarketCap     int64         // universe floor for new symbols
	RecessionPage    int           // page size for the recession backfill loop
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "divradar"),
			User:            getEnv("DB_USER", "divradar"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// Market data provider
		Provider: ProviderConfig{
			QuoteBaseURL:   getEnv("PROVIDER_QUOTE_URL", "https://query1.finance.yahoo.com/v7/finance/quote"),
			ChartBaseURL:   getEnv("PROVIDER_CHART_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),
			SummaryBaseURL: getEnv("PROVIDER_SUMMARY_URL", "https://query1.finance.yahoo.com/v10/finance/quoteSummary"),
			ProfileBaseURL: getEnv("PROVIDER_PROFILE_URL", "https://finance.yahoo.com/quote"),
			RequestsPerSec: getEnvAsFloat("PROVIDER_REQUESTS_PER_SEC", 2.0),
			Burst:          getEnvAsInt("PROVIDER_BURST", 1),
		},

		// Batch jobs
		Jobs: JobsConfig{
			QuoteBatchSize:   getEnvAsInt("JOB_QUOTE_BATCH_SIZE", 200),
			InsertBatchSize:  getEnvAsInt("JOB_INSERT_BATCH_SIZE", 500),
			RequestDelay:     getEnvAsDuration("JOB_REQUEST_DELAY", "2s"),
			HistoryFreshness: getEnvAsDuration("JOB_HISTORY_FRESHNESS", "168h"), // 1 week
			MinDollarVolume:  getEnvAsFloat("JOB_MIN_DOLLAR_VOLUME", 1_000_000),
			MinMarketCap:     getEnvAsInt64("JOB_MIN_MARKET_CAP", 300_000_000),
			RecessionPage:    getEnvAsInt("JOB_RECESSION_PAGE", 50),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Jobs.QuoteBatchSize <= 0 {
		return fmt.Errorf("JOB_QUOTE_BATCH_SIZE must be positive")
	}

	if c.Jobs.RecessionPage <= 0 {
		return fmt.Errorf("JOB_RECESSION_PAGE must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
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
		return defaultValue
	}

	return value
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
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
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
