// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/frontier/internal/database"
	"github.com/aristath/frontier/internal/domain"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Price providers
const (
	ProviderYahoo = "yahoo"
	ProviderS3    = "s3"
)

// Config holds application configuration
type Config struct {
	DataDir            string // Base directory for the cache database, always absolute
	LogLevel           string
	LogPretty          bool
	Port               int
	DevMode            bool
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	Prices             PriceConfig
	Optimizer          OptimizerConfig
	Cache              CacheConfig
	S3                 S3Config
}

// PriceConfig selects the price provider and the market data window
type PriceConfig struct {
	Provider         string
	Period           string
	Interval         string
	PeriodsPerYear   int
	FetchConcurrency int
}

// OptimizerConfig bounds the Monte Carlo run
type OptimizerConfig struct {
	SamplerWorkers int // 0 means one per CPU
	MaxSimulations int
}

// CacheConfig controls the price series cache
type CacheConfig struct {
	Enabled         bool
	Driver          string
	TTL             time.Duration
	StaleRetention  time.Duration // how long expired entries remain as fallback
	CleanupSchedule string        // cron expression with seconds
}

// S3Config locates the CSV price archive
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, err := filepath.Abs(getEnv("DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	cfg := &Config{
		DataDir:            dataDir,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogPretty:          getEnvAsBool("LOG_PRETTY", false),
		Port:               getEnvAsInt("GO_PORT", 8001),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RequestTimeout:     getEnvAsDuration("REQUEST_TIMEOUT", 120*time.Second),
		Prices: PriceConfig{
			Provider:         strings.ToLower(getEnv("PRICE_PROVIDER", ProviderYahoo)),
			Period:           getEnv("PRICE_PERIOD", domain.DefaultPeriod),
			Interval:         getEnv("PRICE_INTERVAL", domain.DefaultInterval),
			PeriodsPerYear:   getEnvAsInt("PERIODS_PER_YEAR", domain.DefaultPeriodsPerYear),
			FetchConcurrency: getEnvAsInt("FETCH_CONCURRENCY", 4),
		},
		Optimizer: OptimizerConfig{
			SamplerWorkers: getEnvAsInt("SAMPLER_WORKERS", 0),
			MaxSimulations: getEnvAsInt("MAX_SIMULATIONS", 200000),
		},
		Cache: CacheConfig{
			Enabled:         getEnvAsBool("CACHE_ENABLED", true),
			Driver:          getEnv("CACHE_DRIVER", database.DriverModernc),
			TTL:             getEnvAsDuration("CACHE_TTL", 12*time.Hour),
			StaleRetention:  getEnvAsDuration("CACHE_STALE_RETENTION", 7*24*time.Hour),
			CleanupSchedule: getEnv("CACHE_CLEANUP_SCHEDULE", "0 0 * * * *"),
		},
		S3: S3Config{
			Bucket:          getEnv("S3_BUCKET", ""),
			Prefix:          getEnv("S3_PREFIX", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Cache.Enabled {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// CachePath is the cache database file inside DataDir
func (c *Config) CachePath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("GO_PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout))
	}

	switch c.Prices.Provider {
	case ProviderYahoo:
	case ProviderS3:
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when PRICE_PROVIDER=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("PRICE_PROVIDER must be %q or %q, got %q", ProviderYahoo, ProviderS3, c.Prices.Provider))
	}
	if c.Prices.Period == "" || c.Prices.Interval == "" {
		errs = append(errs, errors.New("PRICE_PERIOD and PRICE_INTERVAL must not be empty"))
	}
	if c.Prices.PeriodsPerYear <= 0 {
		errs = append(errs, fmt.Errorf("PERIODS_PER_YEAR must be positive, got %d", c.Prices.PeriodsPerYear))
	}
	if c.Prices.FetchConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("FETCH_CONCURRENCY must be positive, got %d", c.Prices.FetchConcurrency))
	}

	if c.Optimizer.SamplerWorkers < 0 {
		errs = append(errs, fmt.Errorf("SAMPLER_WORKERS must not be negative, got %d", c.Optimizer.SamplerWorkers))
	}
	if c.Optimizer.MaxSimulations <= 0 {
		errs = append(errs, fmt.Errorf("MAX_SIMULATIONS must be positive, got %d", c.Optimizer.MaxSimulations))
	}

	if c.Cache.Enabled {
		if c.Cache.Driver != database.DriverModernc && c.Cache.Driver != database.DriverCGO {
			errs = append(errs, fmt.Errorf("CACHE_DRIVER must be %q or %q, got %q", database.DriverModernc, database.DriverCGO, c.Cache.Driver))
		}
		if c.Cache.TTL <= 0 {
			errs = append(errs, fmt.Errorf("CACHE_TTL must be positive, got %s", c.Cache.TTL))
		}
		if c.Cache.StaleRetention < 0 {
			errs = append(errs, fmt.Errorf("CACHE_STALE_RETENTION must not be negative, got %s", c.Cache.StaleRetention))
		}
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.Cache.CleanupSchedule); err != nil {
			errs = append(errs, fmt.Errorf("CACHE_CLEANUP_SCHEDULE is invalid: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("30m") or plain seconds ("1800")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	var result []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
