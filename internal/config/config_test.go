package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "9091", cfg.ServerPort)
	require.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	require.Equal(t, "arabica", cfg.MongoDatabase)
	require.Equal(t, 100, cfg.RateLimitCapacity)
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.ServerPort)
	require.Equal(t, 30*time.Second, cfg.RateLimitWindow)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "SERVER_PORT=7070\nMONGO_DATABASE=cafe\nRATE_LIMIT_CAPACITY=5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "7070", cfg.ServerPort)
	require.Equal(t, "cafe", cfg.MongoDatabase)
	require.Equal(t, 5, cfg.RateLimitCapacity)
}
