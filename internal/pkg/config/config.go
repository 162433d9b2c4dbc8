package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	PostgresURL string `env:"POSTGRES_URL,required"`
	RedisAddr   string `env:"REDIS_ADDR"` // optional; empty disables the sync lease

	APIServerAddr   string        `env:"API_SERVER_ADDR" envDefault:":8080"`
	AdminServerAddr string        `env:"ADMIN_SERVER_ADDR" envDefault:":9091"`
	APIKeyCacheTTL  time.Duration `env:"API_KEY_CACHE_TTL" envDefault:"5m"`

	ShopifyAPIVersion   string        `env:"SHOPIFY_API_VERSION" envDefault:"2025-07"`
	ShopifyRequestRate  float64       `env:"SHOPIFY_REQUEST_RATE" envDefault:"2"` // requests per second
	ShopifyHTTPTimeout  time.Duration `env:"SHOPIFY_HTTP_TIMEOUT" envDefault:"30s"`
	SyncLeaseTTL        time.Duration `env:"SYNC_LEASE_TTL" envDefault:"30m"`
	FullSyncInterval    time.Duration `env:"FULL_SYNC_INTERVAL" envDefault:"6h"`
	OrderSyncInterval   time.Duration `env:"ORDER_SYNC_INTERVAL" envDefault:"1h"`
	CatalogSyncInterval time.Duration `env:"CATALOG_SYNC_INTERVAL" envDefault:"12h"` // customers + products
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
