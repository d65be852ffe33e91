package tray

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"launchtray/config"
	"launchtray/model"
	"launchtray/store"
)

type recordingRunner struct {
	mu   sync.Mutex
	refs []string
	fail map[string]error
}

func (r *recordingRunner) RunFromManifest(_ context.Context, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refs = append(r.refs, ref)
	return r.fail[ref]
}

func (r *recordingRunner) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.refs...)
}

// failingStore rejects every write.
type failingStore struct {
	store.Memory
}

func (*failingStore) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func entry(id, title string) model.AppEntry {
	return model.AppEntry{ID: id, Title: title, ManifestRef: id + ".json"}
}

func entries(n int) []model.AppEntry {
	out := make([]model.AppEntry, n)
	for i := range out {
		out[i] = entry(fmt.Sprintf("app%d", i), fmt.Sprintf("App %d", i))
	}
	return out
}

func ids(es []model.AppEntry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

func titles(es []model.AppEntry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Title
	}
	return out
}

type fixture struct {
	tray   *Tray
	runner *recordingRunner
	store  store.Store
}

func newFixture(t *testing.T, st store.Store) *fixture {
	t.Helper()
	if st == nil {
		st = store.NewMemory()
	}
	runner := &recordingRunner{}
	tr, err := New(context.Background(), Deps{Runner: runner, Store: st, Logger: discardLogger()})
	require.NoError(t, err)
	return &fixture{tray: tr, runner: runner, store: st}
}

func (f *fixture) load(batches ...[]model.AppEntry) {
	for i, b := range batches {
		f.tray.Process(context.Background(), config.Batch{Ref: fmt.Sprintf("doc%d.json", i), Depth: min(i, 1), Entries: b})
	}
}

func remember(t *testing.T, st store.Store, blob string) {
	t.Helper()
	require.NoError(t, st.Set(context.Background(), HotbarKey, []byte(blob)))
}
