package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Pricing PricingConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StorageConfig holds the durable medium location.
type StorageConfig struct {
	DBPath string
}

// PricingConfig holds price feed and cache options. An empty FeedURL selects
// the local simulator; an empty RefreshCron disables background refresh.
type PricingConfig struct {
	FeedURL       string
	FeedTimeout   time.Duration
	CacheDuration time.Duration
	RefreshCron   string
}

// LoggingConfig holds logger options.
type LoggingConfig struct {
	Level string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from
		// the environment directly.
		_ = godotenv.Load()
	}

	cacheMinutes, err := getenvInt("PRICE_CACHE_MINUTES", 5)
	if err != nil {
		return nil, err
	}
	feedTimeoutSeconds, err := getenvInt("PRICE_FEED_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Storage: StorageConfig{
			DBPath: getenvWithDefault("DB_PATH", "./agriprofit.db"),
		},
		Pricing: PricingConfig{
			FeedURL:       os.Getenv("PRICE_FEED_URL"),
			FeedTimeout:   time.Duration(feedTimeoutSeconds) * time.Second,
			CacheDuration: time.Duration(cacheMinutes) * time.Minute,
			RefreshCron:   getenvWithDefault("PRICE_REFRESH_CRON", "*/5 * * * *"),
		},
		Logging: LoggingConfig{
			Level: os.Getenv("LOG_LEVEL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}
	if c.Storage.DBPath == "" {
		return errors.New("DB_PATH must be provided")
	}
	if c.Pricing.CacheDuration <= 0 {
		return errors.New("PRICE_CACHE_MINUTES must be greater than zero")
	}
	if c.Pricing.FeedTimeout <= 0 {
		return errors.New("PRICE_FEED_TIMEOUT_SECONDS must be greater than zero")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}
