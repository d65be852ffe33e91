package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchtray/store"
)

func TestLoadSettings_Defaults(t *testing.T) {
	isolateStateDir(t)

	s, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, "./config/settings.json", s.ConfigRef)
	assert.Equal(t, store.KindJSON, s.Store)
	assert.Equal(t, "hotbar.json", filepath.Base(s.StorePath))
	assert.Equal(t, "launchtray.sock", filepath.Base(s.SocketPath))
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "text", s.LogFormat)
	assert.Zero(t, s.MaxDepth)
	assert.False(t, s.DedupeRefs)
	assert.Empty(t, s.SatelliteAddr)
	assert.Empty(t, s.OtelEndpoint)
}

func TestLoadSettings_FromEnv(t *testing.T) {
	isolateStateDir(t)
	t.Setenv("LAUNCHTRAY_CONFIG", "https://example.com/tray.json")
	t.Setenv("LAUNCHTRAY_STORE", "sqlite")
	t.Setenv("LAUNCHTRAY_MAX_DEPTH", "8")
	t.Setenv("LAUNCHTRAY_DEDUPE_REFS", "true")
	t.Setenv("LAUNCHTRAY_SATELLITE_ADDR", "127.0.0.1:7070")
	t.Setenv("LAUNCHTRAY_SOCKET", "/tmp/x.sock")

	s, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/tray.json", s.ConfigRef)
	assert.Equal(t, store.KindSQLite, s.Store)
	assert.Equal(t, "tray.db", filepath.Base(s.StorePath))
	assert.Equal(t, 8, s.MaxDepth)
	assert.True(t, s.DedupeRefs)
	assert.Equal(t, "127.0.0.1:7070", s.SatelliteAddr)
	assert.Equal(t, "/tmp/x.sock", s.SocketPath)
}

func TestLoadSettings_MemoryStoreHasNoPath(t *testing.T) {
	isolateStateDir(t)
	t.Setenv("LAUNCHTRAY_STORE", "memory")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Empty(t, s.StorePath)
}

func TestLoadSettings_Invalid(t *testing.T) {
	isolateStateDir(t)

	t.Setenv("LAUNCHTRAY_STORE", "redis")
	_, err := LoadSettings()
	assert.ErrorContains(t, err, `unknown store "redis"`)

	t.Setenv("LAUNCHTRAY_STORE", "json")
	t.Setenv("LAUNCHTRAY_MAX_DEPTH", "-1")
	_, err = LoadSettings()
	assert.ErrorContains(t, err, "LAUNCHTRAY_MAX_DEPTH")

	t.Setenv("LAUNCHTRAY_MAX_DEPTH", "deep")
	_, err = LoadSettings()
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	logger := newLogger("debug", "json", &buf)
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug))
	logger.Info("Tray ready", "entries", 3)
	assert.Contains(t, buf.String(), `"msg":"Tray ready"`)

	logger = newLogger("WARN", "text", &buf)
	assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.True(t, logger.Enabled(ctx, slog.LevelWarn))

	logger = newLogger("nonsense", "text", &buf)
	assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.False(t, logger.Enabled(ctx, slog.LevelDebug))
}
