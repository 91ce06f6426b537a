package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.InDelta(t, 0.3, cfg.Engine.EscalationThreshold, 1e-9)
	assert.Equal(t, 300, cfg.Engine.RunTimeoutSecs)

	assert.Equal(t, 15, cfg.Acquire.TimeoutSecs)
	assert.Equal(t, 512, cfg.Acquire.MaxBodyKB)
	assert.Equal(t, 2, cfg.Acquire.MaxRetries)

	assert.Equal(t, 30, cfg.Stealth.RenderTimeoutSecs)
	assert.Equal(t, 3, cfg.Stealth.MaxContexts)
	assert.Contains(t, cfg.Stealth.HardDomains, "linkedin.com")

	assert.Equal(t, 10, cfg.Crawl.MaxPages)
	assert.Equal(t, 1, cfg.Crawl.MaxDepth)
	assert.Equal(t, 25, cfg.Crawl.EscalatedMaxPages)

	assert.Empty(t, cfg.Cache.Driver)
	assert.Equal(t, 24, cfg.Cache.TTLHours)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SCRAPE_ENGINE_WORKERS", "8")
	t.Setenv("SCRAPE_CRAWL_MAX_DEPTH", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Engine.Workers)
	assert.Equal(t, 2, cfg.Crawl.MaxDepth)
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope"}))
}
