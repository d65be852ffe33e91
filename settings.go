package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"

	"launchtray/bridge"
	"launchtray/store"
)

// Settings holds the host configuration, read from LAUNCHTRAY_* variables.
type Settings struct {
	ConfigRef     string     `env:"LAUNCHTRAY_CONFIG" envDefault:"./config/settings.json"`
	Store         store.Kind `env:"LAUNCHTRAY_STORE" envDefault:"json"`
	StorePath     string     `env:"LAUNCHTRAY_STORE_PATH"`
	SocketPath    string     `env:"LAUNCHTRAY_SOCKET"`
	LogLevel      string     `env:"LAUNCHTRAY_LOG_LEVEL" envDefault:"info"`
	LogFormat     string     `env:"LAUNCHTRAY_LOG_FORMAT" envDefault:"text"`
	MaxDepth      int        `env:"LAUNCHTRAY_MAX_DEPTH" envDefault:"0"`
	DedupeRefs    bool       `env:"LAUNCHTRAY_DEDUPE_REFS" envDefault:"false"`
	SatelliteAddr string     `env:"LAUNCHTRAY_SATELLITE_ADDR"`
	OtelEndpoint  string     `env:"LAUNCHTRAY_OTEL_ENDPOINT"`
	// HTMLPath receives the rendered tray page on headless hosts.
	HTMLPath string `env:"LAUNCHTRAY_HTML_PATH"`
}

// LoadSettings parses the environment and fills path defaults under the
// state directory.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	switch s.Store {
	case store.KindMemory, store.KindJSON, store.KindSQLite:
	default:
		return Settings{}, fmt.Errorf("parse settings: unknown store %q", s.Store)
	}
	if s.MaxDepth < 0 {
		return Settings{}, fmt.Errorf("parse settings: LAUNCHTRAY_MAX_DEPTH must be >= 0, got %d", s.MaxDepth)
	}
	if s.StorePath == "" && s.Store != store.KindMemory {
		s.StorePath = defaultStorePath(s.Store)
	}
	if s.SocketPath == "" {
		s.SocketPath = bridge.SocketPath()
	}
	return s, nil
}

func defaultStorePath(kind store.Kind) string {
	if kind == store.KindSQLite {
		return filepath.Join(bridge.StateDir(), "tray.db")
	}
	return filepath.Join(bridge.StateDir(), "hotbar.json")
}

func launchLogDir() string {
	dir := filepath.Join(bridge.StateDir(), "logs")
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

// newLogger builds the process logger. Unknown levels fall back to info.
func newLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
