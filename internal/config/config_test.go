package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOTSPOT_THRESHOLD", "")
	t.Setenv("CATALOG_CACHE_TTL", "")

	cfg := Load()
	assert.Equal(t, 0.5, cfg.HotspotThreshold)
	assert.Equal(t, 10*time.Minute, cfg.CatalogCacheTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HOTSPOT_THRESHOLD", "0.35")
	t.Setenv("CATALOG_CACHE_SIZE", "512")
	t.Setenv("PROJECT_CACHE_TTL", "90s")
	t.Setenv("REDIS_URI", "redis://cache:6379")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := Load()
	assert.Equal(t, 0.35, cfg.HotspotThreshold)
	assert.Equal(t, 512, cfg.CatalogCacheSize)
	assert.Equal(t, 90*time.Second, cfg.ProjectCacheTTL)
	assert.Equal(t, "cache:6379", cfg.RedisAddr())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("HOTSPOT_THRESHOLD", "half")
	t.Setenv("CATALOG_CACHE_TTL", "ten minutes")

	cfg := Load()
	assert.Equal(t, 0.5, cfg.HotspotThreshold)
	assert.Equal(t, 10*time.Minute, cfg.CatalogCacheTTL)
}

func TestLoadAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	doc := "aliases:\n  \"Corporate Responsibility\": accountability\n  Openness: transparency\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	aliases, err := LoadAliases(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Corporate Responsibility": "accountability",
		"Openness":                 "transparency",
	}, aliases)
}

func TestLoadAliases_EmptyPath(t *testing.T) {
	aliases, err := LoadAliases("")
	require.NoError(t, err)
	assert.Nil(t, aliases)
}

func TestParseAliases_Invalid(t *testing.T) {
	_, err := ParseAliases([]byte("aliases: [not, a, map]"))
	assert.Error(t, err)
}
