package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	// No configs/ directory exists relative to the test; every value comes
	// from the defaults.
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, "shortener.db", cfg.Database.Name)
	assert.Equal(t, 6, cfg.Shortener.CodeLength)
	assert.Equal(t, 5, cfg.Shortener.MaxRetries)
	assert.Equal(t, 100, cfg.RateLimit.Points)
	assert.Equal(t, 900, cfg.RateLimit.WindowSeconds)
	assert.Equal(t, 1000, cfg.Analytics.BufferSize)
	assert.Equal(t, 5, cfg.Analytics.WorkerCount)
	assert.Equal(t, 5, cfg.Monitor.IntervalMinutes)
	assert.Equal(t, "", cfg.Redis.Addr)
	assert.Equal(t, 1440, cfg.Redis.CacheTTLMinutes)
}
