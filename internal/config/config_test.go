package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/adapters/storage"
)

func TestDefaultPricing(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Pricing.ShippingFlat.Equal(decimal.NewFromInt(10)))
	assert.True(t, cfg.Pricing.TaxRate.Equal(decimal.RequireFromString("0.1")))
	assert.True(t, cfg.Builder.PerformanceCeiling.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, storage.BackendFile, cfg.Storage.Backend)
}

// TestLoadMissingFileReturnsDefaults mirrors first-run behavior
func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, "near-budget", cfg.Builder.Lookup)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.json")

	cfg := Default()
	cfg.Pricing.TaxRate = decimal.RequireFromString("0.0825")
	cfg.Builder.Lookup = "inventory"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.Pricing.TaxRate.Equal(decimal.RequireFromString("0.0825")))
	assert.Equal(t, "inventory", loaded.Builder.Lookup)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_STORAGE_BACKEND", "memory")
	t.Setenv("STOREFRONT_TAX_RATE", "0.2")
	t.Setenv("STOREFRONT_NO_COLOR", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, storage.BackendMemory, cfg.Storage.Backend)
	assert.True(t, cfg.Pricing.TaxRate.Equal(decimal.RequireFromString("0.2")))
	assert.True(t, cfg.Output.NoColor)
}

func TestLoadRejectsBrokenJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
