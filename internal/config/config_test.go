package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"STORAGE_BACKEND", "CART_TAX_RATE", "CART_FREE_SHIPPING_THRESHOLD",
		"CART_FLAT_SHIPPING_FEE", "CART_MAX_QUANTITY", "ADMIN_USERNAME",
		"ADMIN_PASSWORD", "ADMIN_EMAIL", "SESSION_DURATION", "SESSION_IDLE_TIMEOUT",
		"SESSION_ACTIVITY_SIGNALS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	assert.True(t, cfg.Cart.TaxRate.Equal(decimal.RequireFromString("0.21")))
	assert.True(t, cfg.Cart.FreeShippingThreshold.Equal(decimal.NewFromInt(50)))
	assert.True(t, cfg.Cart.FlatShippingFee.Equal(decimal.RequireFromString("5.99")))
	assert.Equal(t, 99, cfg.Cart.MaxQuantity)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, "admin123", cfg.Admin.Password)
	assert.Equal(t, "admin@amazonscraper.com", cfg.Admin.Email)
	assert.Equal(t, 24*time.Hour, cfg.Session.Duration)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, []string{"pointerdown", "pointermove", "keypress", "scroll", "touchstart"}, cfg.Session.ActivitySignals)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("CART_TAX_RATE", "0.1")
	t.Setenv("CART_MAX_QUANTITY", "10")
	t.Setenv("ADMIN_USERNAME", "root")
	t.Setenv("SESSION_IDLE_TIMEOUT", "5m")
	t.Setenv("SESSION_ACTIVITY_SIGNALS", " keypress , scroll ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageRedis, cfg.Storage.Backend)
	assert.True(t, cfg.Cart.TaxRate.Equal(decimal.RequireFromString("0.1")))
	assert.Equal(t, 10, cfg.Cart.MaxQuantity)
	assert.Equal(t, "root", cfg.Admin.Username)
	assert.Equal(t, 5*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, []string{"keypress", "scroll"}, cfg.Session.ActivitySignals)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("CART_FLAT_SHIPPING_FEE", "not-a-number")
	t.Setenv("SESSION_DURATION", "forever")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Cart.FlatShippingFee.Equal(decimal.RequireFromString("5.99")))
	assert.Equal(t, 24*time.Hour, cfg.Session.Duration)
}

func TestValidateRejectsImpossibleValues(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("CART_TAX_RATE", "1.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage backend")
	assert.Contains(t, err.Error(), "tax rate")
}

func TestValidateLoginRateBurst(t *testing.T) {
	t.Setenv("LOGIN_RATE_PER_MINUTE", "10")
	t.Setenv("LOGIN_RATE_BURST", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login rate burst")

	t.Setenv("LOGIN_RATE_PER_MINUTE", "0")
	cfg, err := Load()
	require.NoError(t, err, "burst is unused when limiting is off")
	assert.Equal(t, 0, cfg.Session.LoginRatePerMin)
}
