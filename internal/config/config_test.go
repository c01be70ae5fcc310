package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("LOG_MAX_FILES", "")
	t.Setenv("DEBUG", "")

	cfg := Load()

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "dev_", cfg.TablePrefix)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10, cfg.LogMaxFiles)
	assert.True(t, cfg.Debug)
}

func TestLoad_Prod(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("DEBUG", "")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("LOG_MAX_FILES", "nope")

	cfg := Load()

	assert.Equal(t, "prod_", cfg.TablePrefix)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, 10, cfg.LogMaxFiles)
}

func TestLoad_TablePrefixOverride(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("TABLE_PREFIX", "ci_")

	assert.Equal(t, "ci_", Load().TablePrefix)
}
