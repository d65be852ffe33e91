package bridge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchtray/model"
	"launchtray/tray"
)

type fakeRouter struct {
	mu      sync.Mutex
	queries []string
	runs    []string
	submits int
}

func (f *fakeRouter) Search(query string) []model.AppEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return []model.AppEntry{{ID: "slack", Title: "Slack"}}
}

func (f *fakeRouter) Submit(context.Context) (model.AppEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	return model.AppEntry{ID: "slack"}, nil
}

func (f *fakeRouter) Snapshot() tray.Snapshot {
	return tray.Snapshot{Total: 3, Hotbar: []model.AppEntry{{ID: "a"}}, Rows: 1, ListHeight: 106}
}

func (f *fakeRouter) Run(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, id)
	if id == "broken" {
		return errors.New("launch failed")
	}
	return nil
}

func (f *fakeRouter) Pin(context.Context, string) (tray.Outcome, error) {
	return tray.OutcomeRejected, nil
}

func (f *fakeRouter) Unpin(_ context.Context, id string) (tray.Outcome, error) {
	if id == "" {
		return "", tray.ErrUnknownEntry
	}
	return tray.OutcomeSpilled, nil
}

func (f *fakeRouter) searched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func startServer(t *testing.T, router Router) *Client {
	t.Helper()
	// Unix socket paths are length-limited; keep it short.
	dir, err := os.MkdirTemp("", "lt")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	srv, err := NewServer(filepath.Join(dir, "b.sock"), router, nil)
	require.NoError(t, err)
	go func() { _ = srv.Serve() }()
	t.Cleanup(srv.Close)
	return NewClient(srv.Addr())
}

func TestBridge_RoundTrip(t *testing.T) {
	router := &fakeRouter{}
	client := startServer(t, router)

	entries, err := client.Search("sla")
	require.NoError(t, err)
	assert.Equal(t, "Slack", entries[0].Title)
	assert.Equal(t, []string{"sla"}, router.searched())

	snap, err := client.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, 106, snap.ListHeight)

	require.NoError(t, client.Run("slack"))
	err = client.Run("broken")
	assert.ErrorContains(t, err, "launch failed")

	outcome, err := client.Pin("slack")
	require.NoError(t, err)
	assert.Equal(t, tray.OutcomeRejected, outcome)

	outcome, err = client.Unpin("a")
	require.NoError(t, err)
	assert.Equal(t, tray.OutcomeSpilled, outcome)

	_, err = client.Unpin("")
	assert.ErrorContains(t, err, "unknown entry")

	entry, err := client.Submit()
	require.NoError(t, err)
	assert.Equal(t, "slack", entry.ID)
}

func TestBridge_UnknownRequest(t *testing.T) {
	client := startServer(t, &fakeRouter{})

	resp, err := client.send(Request{Type: "Reload"})
	require.NoError(t, err)
	assert.Equal(t, "Error", resp.Type)
	assert.Equal(t, codeMethod, resp.Code)
}

func TestClient_NoServer(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	_, err := client.Snapshot()
	assert.ErrorContains(t, err, "is the tray running?")
}
