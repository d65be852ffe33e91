package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchtray/bridge"
	"launchtray/model"
	"launchtray/store"
	"launchtray/tray"
)

func startTestApp(t *testing.T, satellite bool) (*App, *HeadlessPlatform) {
	t.Helper()
	isolateStateDir(t)
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "settings.json"), `{
		"style": {"windowTitle": "Test Tray", "systemTrayIcon": "tray.png", "listBackgroundColor": "#111111"},
		"entries": [
			{"name": "notes", "title": "Notes", "manifestRef": "notes.json"},
			{"name": "secret", "title": "Secret", "hidden": true}
		],
		"subManifestRefs": ["more.yaml"]
	}`)
	writeFile(t, filepath.Join(dir, "more.yaml"), "- name: slack\n  title: Slack\n- name: mail\n  title: Mail\n")

	settings := Settings{
		ConfigRef:  filepath.Join(dir, "settings.json"),
		Store:      store.KindMemory,
		SocketPath: shortSocketPath(t),
		HTMLPath:   filepath.Join(dir, "tray.html"),
	}
	if satellite {
		settings.SatelliteAddr = "127.0.0.1:0"
	}

	platform := NewPlatform(settings.HTMLPath, discardLogger())
	platform.open = func(string) error { return nil }
	go platform.Run()
	t.Cleanup(platform.Quit)

	ctx, cancel := context.WithCancel(context.Background())
	app, err := newApp(ctx, settings, platform, discardLogger())
	require.NoError(t, err)
	app.start(ctx)
	t.Cleanup(func() {
		cancel()
		<-app.loaded
		app.cleanup()
	})

	select {
	case <-app.loaded:
	case <-time.After(5 * time.Second):
		t.Fatal("configuration never finished loading")
	}
	return app, platform
}

func TestApp_LoadsConfigurationAndAppliesStyle(t *testing.T) {
	app, platform := startTestApp(t, false)

	snap := app.tray.Snapshot()
	assert.Equal(t, 3, snap.Total)
	assert.ElementsMatch(t, []string{"notes", "slack", "mail"}, ids(snap.List))

	require.Eventually(t, func() bool {
		return platform.Title() == "Test Tray" && platform.TrayIcon() == "tray.png"
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		html := platform.HTML()
		return strings.Contains(html, "Notes") && strings.Contains(html, "Slack") && strings.Contains(html, "Mail")
	}, 2*time.Second, 10*time.Millisecond)
	assert.NotContains(t, platform.HTML(), "Secret")
	assert.FileExists(t, app.settings.HTMLPath)
}

func TestApp_BridgeServesTray(t *testing.T) {
	app, _ := startTestApp(t, false)

	client := bridge.NewClient(app.settings.SocketPath)
	matches, err := client.Search("SLA")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "slack", matches[0].ID)

	snap, err := client.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "SLA", snap.Query)
	assert.Equal(t, []string{"slack"}, ids(snap.List))
}

func TestApp_SatelliteRoutes(t *testing.T) {
	app, _ := startTestApp(t, true)
	base := "http://" + app.satellite.Addr().String()

	resp, err := http.Get(base + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "<title>Test Tray</title>")
	assert.Contains(t, string(body), "new WebSocket")

	resp, err = http.Get(base + "/snapshot")
	require.NoError(t, err)
	var snap tray.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	resp.Body.Close()
	assert.Equal(t, 3, snap.Total)

	resp, err = http.Post(base+"/run?entry=missing", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// notes.json does not exist, so the launch itself fails.
	resp, err = http.Post(base+"/run?entry=notes", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func shownAt(platform *HeadlessPlatform) [2]int {
	platform.mu.Lock()
	defer platform.mu.Unlock()
	return platform.shown
}

func TestApp_TrayClickShowsWindow(t *testing.T) {
	_, platform := startTestApp(t, false)

	platform.Click(120, 40)
	require.Eventually(t, func() bool {
		return shownAt(platform) == [2]int{120, 40}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestApp_SatelliteTrayClick(t *testing.T) {
	app, platform := startTestApp(t, true)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+app.satellite.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(bridge.Message{
		Action: bridge.ActionPublish,
		Topic:  bridge.TopicTrayClick,
		Data:   json.RawMessage(`{"x": 300, "y": 12}`),
	}))
	require.Eventually(t, func() bool {
		return shownAt(platform) == [2]int{300, 12}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNewApp_BadStore(t *testing.T) {
	isolateStateDir(t)
	settings := Settings{Store: store.Kind("bogus"), SocketPath: shortSocketPath(t)}

	_, err := newApp(context.Background(), settings, NewPlatform("", discardLogger()), discardLogger())
	assert.ErrorContains(t, err, "open store")
}

func ids(entries []model.AppEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
