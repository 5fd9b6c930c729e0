// Package config loads metawrite configuration from file and environment
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the metawrite configuration
type Config struct {
	Shop    ShopConfig    `mapstructure:"shop"`
	Rate    RateConfig    `mapstructure:"rate"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ShopConfig identifies the shop and API version to write against
type ShopConfig struct {
	Domain      string `mapstructure:"domain"`
	AccessToken string `mapstructure:"access_token"`
	APIVersion  string `mapstructure:"api_version"`
}

// RateConfig controls request pacing
type RateConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LoggingConfig controls structured logging output
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads metawrite.yml/.yaml plus the environment. A .env file in the
// working directory is honored when present. Environment variables
// SHOPIFY_SHOP_DOMAIN, SHOPIFY_ACCESS_TOKEN and SHOPIFY_API_VERSION match the
// conventional names and win over file values.
func Load() (*Config, error) {
	// Best effort: a missing .env is not an error.
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("shop.api_version", "2024-10")
	v.SetDefault("rate.requests_per_second", 2.0)
	v.SetDefault("rate.burst", 40)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)

	v.SetConfigName("metawrite")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if domain := os.Getenv("SHOPIFY_SHOP_DOMAIN"); domain != "" {
		cfg.Shop.Domain = domain
	}
	if token := os.Getenv("SHOPIFY_ACCESS_TOKEN"); token != "" {
		cfg.Shop.AccessToken = token
	}
	if version := os.Getenv("SHOPIFY_API_VERSION"); version != "" {
		cfg.Shop.APIVersion = version
	}

	return &cfg, nil
}

// Validate checks that the configuration can reach a shop.
func (c *Config) Validate() error {
	if c.Shop.Domain == "" {
		return fmt.Errorf("shop domain is required (set SHOPIFY_SHOP_DOMAIN or shop.domain)")
	}
	if c.Shop.AccessToken == "" {
		return fmt.Errorf("access token is required (set SHOPIFY_ACCESS_TOKEN or shop.access_token)")
	}
	return nil
}
