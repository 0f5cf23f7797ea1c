// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"storefront/adapters/storage"
	"storefront/core/types"
	"storefront/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Storage selects where the cart and selection sets are persisted
	Storage storage.Config `json:"storage"`

	// Pricing contains cart pricing rules
	Pricing PricingConfig `json:"pricing"`

	// Builder contains PC builder settings
	Builder BuilderConfig `json:"builder"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// Currency is the display currency
	Currency types.Currency `json:"currency"`

	// ShippingFlat is charged once whenever the subtotal is positive
	ShippingFlat decimal.Decimal `json:"shipping_flat"`

	// TaxRate is applied to the subtotal
	TaxRate decimal.Decimal `json:"tax_rate"`
}

// BuilderConfig contains PC builder settings
type BuilderConfig struct {
	// PerformanceCeiling is the budget at which custom builds score 100%
	PerformanceCeiling decimal.Decimal `json:"performance_ceiling"`

	// Lookup picks components: "near-budget" or "inventory"
	Lookup string `json:"lookup"`

	// TemplatesFile overrides the built-in tier templates (HCL)
	TemplatesFile string `json:"templates_file,omitempty"`

	// CatalogFile overrides the built-in product catalog (HCL)
	CatalogFile string `json:"catalog_file,omitempty"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`

	// NoColor disables terminal colors
	NoColor bool `json:"no_color"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	statePath := filepath.Join(homeDir, ".storefront", "state.json")

	return &Config{
		Version: "1.0",
		Storage: storage.Config{
			Backend:   storage.BackendFile,
			Path:      statePath,
			RedisURL:  "redis://localhost:6379/0",
			Namespace: "storefront",
		},
		Pricing: PricingConfig{
			Currency:     types.CurrencyUSD,
			ShippingFlat: decimal.NewFromInt(10),
			TaxRate:      decimal.RequireFromString("0.10"),
		},
		Builder: BuilderConfig{
			PerformanceCeiling: decimal.NewFromInt(3000),
			Lookup:             "near-budget",
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			NoColor:       false,
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns the config file location used when --config is not given
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".storefront", "config.json")
}

// Load loads configuration from a file, then applies environment overrides
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, err
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	config.ApplyEnv()
	return config, nil
}

// ApplyEnv overrides settings from the environment. A .env file in the working directory is
// loaded first when present; variables already set in the environment take precedence.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v, ok := os.LookupEnv("STOREFRONT_STORAGE_BACKEND"); ok {
		c.Storage.Backend = storage.Backend(v)
	}
	if v, ok := os.LookupEnv("STOREFRONT_STORAGE_PATH"); ok {
		c.Storage.Path = v
	}
	if v, ok := os.LookupEnv("STOREFRONT_REDIS_URL"); ok {
		c.Storage.RedisURL = v
	}
	if v, ok := os.LookupEnv("STOREFRONT_POSTGRES_DSN"); ok {
		c.Storage.PostgresDSN = v
	}
	if v, ok := os.LookupEnv("STOREFRONT_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := os.LookupEnv("STOREFRONT_TEMPLATES"); ok {
		c.Builder.TemplatesFile = v
	}
	if v, ok := os.LookupEnv("STOREFRONT_CATALOG"); ok {
		c.Builder.CatalogFile = v
	}
	if v, ok := os.LookupEnv("STOREFRONT_TAX_RATE"); ok {
		if d, err := decimal.NewFromString(v); err == nil {
			c.Pricing.TaxRate = d
		}
	}
	if v, ok := os.LookupEnv("STOREFRONT_NO_COLOR"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Output.NoColor = b
		}
	}
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
