//go:build !windows

package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchtray/config"
)

type urlRecorder struct {
	mu   sync.Mutex
	urls []string
}

func (r *urlRecorder) open(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
}

func (r *urlRecorder) opened() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

func newTestLauncher(t *testing.T) (*Launcher, *urlRecorder, string) {
	t.Helper()
	t.Setenv("SHELL", "/bin/sh")
	logDir := t.TempDir()
	urls := &urlRecorder{}
	l := NewLauncher(config.FileFetcher{}, urls.open, logDir, discardLogger())
	t.Cleanup(l.StopAll)
	return l, urls, logDir
}

func TestLauncher_RunsCommand(t *testing.T) {
	l, urls, logDir := newTestLauncher(t)
	manifest := filepath.Join(t.TempDir(), "echo.json")
	writeFile(t, manifest, `{"name":"Echo App","command":"echo","args":["hello from", "launchtray"]}`)

	require.NoError(t, l.RunFromManifest(context.Background(), manifest))

	logPath := filepath.Join(logDir, "echo-app.log")
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(logPath)
		return err == nil && strings.Contains(string(data), "hello from launchtray\n")
	}, 5*time.Second, 20*time.Millisecond)
	assert.Empty(t, urls.opened())
}

func TestLauncher_OpensURL(t *testing.T) {
	l, urls, _ := newTestLauncher(t)
	manifest := filepath.Join(t.TempDir(), "docs.yaml")
	writeFile(t, manifest, "name: Docs\nurl: https://example.com/docs\n")

	require.NoError(t, l.RunFromManifest(context.Background(), manifest))
	assert.Equal(t, []string{"https://example.com/docs"}, urls.opened())
}

func TestLauncher_Errors(t *testing.T) {
	l, _, _ := newTestLauncher(t)
	dir := t.TempDir()

	assert.Error(t, l.RunFromManifest(context.Background(), ""))
	assert.ErrorContains(t, l.RunFromManifest(context.Background(), filepath.Join(dir, "missing.json")), "fetch manifest")

	empty := filepath.Join(dir, "empty.json")
	writeFile(t, empty, `{"name":"Nothing"}`)
	err := l.RunFromManifest(context.Background(), empty)
	assert.ErrorIs(t, err, errEmptyManifest)

	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, `{"command":`)
	assert.ErrorContains(t, l.RunFromManifest(context.Background(), bad), "json")
}

func TestLauncher_SingleInstanceAndStop(t *testing.T) {
	l, _, _ := newTestLauncher(t)
	manifest := filepath.Join(t.TempDir(), "sleeper.json")
	writeFile(t, manifest, `{"name":"Sleeper","command":"sleep","args":["30"],"singleInstance":true}`)

	require.NoError(t, l.RunFromManifest(context.Background(), manifest))
	require.NoError(t, l.RunFromManifest(context.Background(), manifest))
	assert.Equal(t, 1, l.Running(manifest))

	l.Stop(manifest)
	assert.Equal(t, 0, l.Running(manifest))
}

func TestLauncher_MultipleInstances(t *testing.T) {
	l, _, _ := newTestLauncher(t)
	manifest := filepath.Join(t.TempDir(), "sleeper.json")
	writeFile(t, manifest, `{"command":"sleep","args":["30"]}`)

	require.NoError(t, l.RunFromManifest(context.Background(), manifest))
	require.NoError(t, l.RunFromManifest(context.Background(), manifest))
	assert.Equal(t, 2, l.Running(manifest))

	l.StopAll()
	assert.Equal(t, 0, l.Running(manifest))
}

func TestLogName(t *testing.T) {
	assert.Equal(t, "slack-desktop", logName(LaunchManifest{Name: "Slack  Desktop!"}, "x.json"))
	assert.Equal(t, "notes", logName(LaunchManifest{}, "/apps/notes.json"))
	assert.Equal(t, "launch", logName(LaunchManifest{}, "/apps/.json"))
}

func TestShellQuote(t *testing.T) {
	t.Setenv("SHELL", "/bin/sh")
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))
	cmd := buildCommand(LaunchManifest{Command: "echo", Args: []string{"a b"}, Env: map[string]string{"K": "v"}, WorkingDir: "/tmp"})
	assert.Equal(t, []string{"/bin/sh", "-l", "-c", `'echo' 'a b'`}, cmd.Args)
	assert.Equal(t, "/tmp", cmd.Dir)
	assert.Contains(t, cmd.Env, "K=v")
}
