// Package tray holds the launcher tray: the entry collection, its list and
// hotbar projections, the drag coordinator and the search filter.
package tray

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"launchtray/config"
	"launchtray/model"
	"launchtray/store"
)

// ErrUnknownEntry is returned for ids that are not in the collection.
var ErrUnknownEntry = errors.New("unknown entry")

// ErrNoPointerDrag is returned by Pin and Unpin when the tray was built
// with a drag provider other than Drake.
var ErrNoPointerDrag = errors.New("drag provider does not support programmatic gestures")

// Runner launches an application from its manifest reference.
type Runner interface {
	RunFromManifest(ctx context.Context, manifestRef string) error
}

// RunError reports a failed launch. It never affects tray state.
type RunError struct {
	EntryID     string
	ManifestRef string
	Cause       error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %s (%s): %v", e.EntryID, e.ManifestRef, e.Cause)
}

func (e *RunError) Unwrap() error {
	return e.Cause
}

// Deps are the collaborators a Tray is built from.
type Deps struct {
	Runner Runner
	// Store persists the remembered hotbar. Defaults to an in-memory store.
	Store  store.Store
	Logger *slog.Logger
	// Drag drives gestures. Defaults to a Drake.
	Drag DragProvider
	// OnStyle receives the root document style, once.
	OnStyle func(model.StyleConfig)
	// OnChange fires after every change to what is rendered.
	OnChange func()
}

// Snapshot is a point-in-time copy of what the tray shows.
type Snapshot struct {
	Style       model.StyleConfig `json:"style"`
	Query       string            `json:"query"`
	List        []model.AppEntry  `json:"list"`
	Hotbar      []model.AppEntry  `json:"hotbar"`
	HotbarCount int               `json:"hotbarCount"`
	Total       int               `json:"total"`
	Rows        int               `json:"rows"`
	ListHeight  int               `json:"listHeight"`
}

// Tray is the launcher tray handle. Its methods are safe for concurrent use
// and serialize the way events do on a UI loop.
type Tray struct {
	runner   Runner
	logger   *slog.Logger
	onStyle  func(model.StyleConfig)
	onChange func()

	membership  *Membership
	renderer    *Renderer
	coordinator *Coordinator
	drake       *Drake

	// launches tracks startup launches still in flight.
	launches sync.WaitGroup

	mu       sync.Mutex
	state    *State
	style    *model.StyleConfig
	query    string
	rendered bool
	batches  int
}

// New builds a tray and reads the remembered hotbar membership.
func New(ctx context.Context, deps Deps) (*Tray, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	st := deps.Store
	if st == nil {
		st = store.NewMemory()
	}
	membership, err := LoadMembership(ctx, st)
	if err != nil {
		return nil, err
	}

	t := &Tray{
		runner:     deps.Runner,
		logger:     logger,
		onStyle:    deps.OnStyle,
		onChange:   deps.OnChange,
		membership: membership,
		state:      NewState(),
	}
	t.renderer = NewRenderer(t.run)
	t.coordinator = NewCoordinator(t.renderer.List(), t.renderer.Hotbar(), membership, logger)

	drag := deps.Drag
	if drag == nil {
		drag = NewDrake(logger)
	}
	drag.Register(t.renderer.List(), t.renderer.Hotbar(), t.coordinator, t.coordinator)
	t.drake, _ = drag.(*Drake)
	return t, nil
}

// List returns the list container.
func (t *Tray) List() *Container { return t.renderer.List() }

// Hotbar returns the hotbar container.
func (t *Tray) Hotbar() *Container { return t.renderer.Hotbar() }

// Coordinator returns the drag coordinator.
func (t *Tray) Coordinator() *Coordinator { return t.coordinator }

// Membership returns the remembered hotbar membership.
func (t *Tray) Membership() *Membership { return t.membership }

// Drake returns the pointer drag provider, or nil when another provider is
// in use.
func (t *Tray) Drake() *Drake { return t.drake }

// Consume processes batches until the channel closes or ctx is done.
func (t *Tray) Consume(ctx context.Context, batches <-chan config.Batch) {
	for {
		select {
		case b, ok := <-batches:
			if !ok {
				t.logger.Info("Configuration load finished", "batches", t.batchCount(), "entries", t.Len())
				return
			}
			t.Process(ctx, b)
		case <-ctx.Done():
			return
		}
	}
}

// Process applies one batch: startup launches, style, append, render and
// counter resync. Startup launches run in the background and never hold up
// the batch.
func (t *Tray) Process(ctx context.Context, b config.Batch) {
	for _, e := range b.Entries {
		if e.Startup {
			// Hidden entries still start.
			t.launches.Add(1)
			go func() {
				defer t.launches.Done()
				_ = t.run(ctx, e)
			}()
		}
	}

	t.mu.Lock()
	var style *model.StyleConfig
	if b.Style != nil && t.style == nil {
		s := *b.Style
		t.style = &s
		style = &s
	}

	visible := model.Visible(b.Entries)
	t.state.Append(visible)
	t.batches++

	if !t.rendered && len(visible) > 0 {
		t.renderer.RenderHotbar(HotbarSeed(visible, t.membership.IDs()), true)
		t.rendered = true
	}
	if t.state.Filtered() {
		view := Filter(t.state.Entries(), t.query)
		t.state.ReplaceFiltered(view)
		t.renderer.RenderList(view, true)
	} else {
		t.renderer.RenderList(visible, false)
	}
	t.coordinator.Resync()
	t.mu.Unlock()

	t.logger.Debug("Batch processed", "ref", b.Ref, "depth", b.Depth, "entries", len(b.Entries), "visible", len(visible))
	if style != nil && t.onStyle != nil {
		t.onStyle(*style)
	}
	t.changed()
}

// WaitLaunches blocks until every startup launch begun so far has returned.
func (t *Tray) WaitLaunches() {
	t.launches.Wait()
}

// Search redraws the list from the entries whose title matches query and
// returns them. An empty query restores the full list.
func (t *Tray) Search(query string) []model.AppEntry {
	t.mu.Lock()
	t.query = query
	view := Filter(t.state.Entries(), query)
	if query == "" {
		t.state.ClearFilter()
	} else {
		t.state.ReplaceFiltered(view)
	}
	t.renderer.RenderList(view, true)
	t.mu.Unlock()

	t.changed()
	return view
}

// Hide removes an entry from the collection and the list.
func (t *Tray) Hide(id string) bool {
	t.mu.Lock()
	removed := t.state.Hide(id)
	if removed {
		t.renderer.RenderList(t.state.View(), true)
	}
	t.mu.Unlock()

	if removed {
		t.changed()
	}
	return removed
}

// Run launches the entry with id.
func (t *Tray) Run(ctx context.Context, id string) error {
	t.mu.Lock()
	e, ok := t.state.Lookup(id)
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("run %s: %w", id, ErrUnknownEntry)
	}
	return t.run(ctx, e)
}

// Submit launches the first entry currently shown in the list, the way
// pressing enter in the search bar does.
func (t *Tray) Submit(ctx context.Context) (model.AppEntry, error) {
	t.mu.Lock()
	n, ok := t.List().At(0)
	t.mu.Unlock()
	if !ok {
		return model.AppEntry{}, fmt.Errorf("submit: %w", ErrUnknownEntry)
	}
	return n.Entry(), n.Activate(ctx)
}

// Pin drags the list node for id into the end of the hotbar. The node is
// resolved and dropped under the tray lock so a concurrent redraw cannot
// swap it out mid-gesture.
func (t *Tray) Pin(ctx context.Context, id string) (Outcome, error) {
	if t.drake == nil {
		return "", ErrNoPointerDrag
	}
	t.mu.Lock()
	outcome, err := t.gesture(t.List(), id, func() (Outcome, error) {
		return t.drake.Release(ctx, t.Hotbar(), t.Hotbar().Len())
	})
	t.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("pin %s: %w", id, err)
	}
	t.changed()
	return outcome, nil
}

// Unpin spills the hotbar node for id.
func (t *Tray) Unpin(ctx context.Context, id string) (Outcome, error) {
	if t.drake == nil {
		return "", ErrNoPointerDrag
	}
	t.mu.Lock()
	outcome, err := t.gesture(t.Hotbar(), id, func() (Outcome, error) {
		return t.drake.Spill(ctx)
	})
	t.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("unpin %s: %w", id, err)
	}
	t.changed()
	return outcome, nil
}

// gesture grabs the node for id in source and finishes it with end.
// Callers hold t.mu.
func (t *Tray) gesture(source *Container, id string, end func() (Outcome, error)) (Outcome, error) {
	i := source.IndexOf(id)
	if i < 0 {
		return "", ErrUnknownEntry
	}
	if _, err := t.drake.Grab(source, i); err != nil {
		return "", err
	}
	return end()
}

// Style returns the applied style, if any.
func (t *Tray) Style() (model.StyleConfig, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.style == nil {
		return model.StyleConfig{}, false
	}
	return *t.style, true
}

// Len returns the size of the visible collection.
func (t *Tray) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Len()
}

// Snapshot copies what the tray currently shows.
func (t *Tray) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := Snapshot{
		Query:       t.query,
		List:        t.List().Entries(),
		Hotbar:      t.Hotbar().Entries(),
		HotbarCount: t.coordinator.Count(),
		Total:       t.state.Len(),
		Rows:        t.state.Rows(),
		ListHeight:  t.state.ListHeight(),
	}
	if t.style != nil {
		snap.Style = *t.style
	}
	return snap
}

func (t *Tray) batchCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.batches
}

// run launches e and logs a RunError on failure.
func (t *Tray) run(ctx context.Context, e model.AppEntry) error {
	if t.runner == nil {
		err := &RunError{EntryID: e.ID, ManifestRef: e.ManifestRef, Cause: errors.New("no runner configured")}
		t.logger.Error("Launch failed", "entry", e.ID, "error", err)
		return err
	}
	if err := t.runner.RunFromManifest(ctx, e.ManifestRef); err != nil {
		runErr := &RunError{EntryID: e.ID, ManifestRef: e.ManifestRef, Cause: err}
		t.logger.Error("Launch failed", "entry", e.ID, "manifest", e.ManifestRef, "error", err)
		return runErr
	}
	t.logger.Info("Launched", "entry", e.ID, "manifest", e.ManifestRef)
	return nil
}

func (t *Tray) changed() {
	if t.onChange != nil {
		t.onChange()
	}
}
