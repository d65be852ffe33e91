package tray

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchtray/store"
)

func TestDrake_CounterStartsFullBeforeFirstRender(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, MaxHotbar, f.tray.Coordinator().Count())

	// Nothing is rendered yet, so nothing can be grabbed either.
	_, err := f.tray.Drake().Grab(f.tray.List(), 0)
	assert.Error(t, err)

	f.load(entries(2))
	assert.Equal(t, 2, f.tray.Coordinator().Count(), "resynced to actual hotbar size")
}

func TestDrake_ListToHotbarCopies(t *testing.T) {
	f := newFixture(t, nil)
	f.load(entries(3))
	_, err := f.tray.Unpin(context.Background(), "app2")
	require.NoError(t, err)
	require.Equal(t, 2, f.tray.Coordinator().Count())

	d := f.tray.Drake()
	g, err := d.Grab(f.tray.List(), 2)
	require.NoError(t, err)
	assert.True(t, g.Copy)
	assert.NotEqual(t, [16]byte{}, [16]byte(g.ID))

	outcome, err := d.Release(context.Background(), f.tray.Hotbar(), 0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDropped, outcome)

	assert.Equal(t, []string{"app2", "app0", "app1"}, f.tray.Hotbar().IDs())
	assert.Equal(t, []string{"app0", "app1", "app2"}, f.tray.List().IDs(), "source keeps its node")
	assert.Equal(t, 3, f.tray.Coordinator().Count())
	assert.True(t, f.tray.Membership().Contains("app2"))

	clone, _ := f.tray.Hotbar().At(0)
	require.NoError(t, clone.Activate(context.Background()), "clone keeps the run behaviour")
	assert.Equal(t, []string{"app2.json"}, f.runner.calls())
}

func TestDrake_DropOntoFullHotbarIsRejected(t *testing.T) {
	st := store.NewMemory()
	remember(t, st, `[{"name":"app1"},{"name":"app2"},{"name":"app3"},{"name":"app4"},{"name":"app5"}]`)
	f := newFixture(t, st)
	all := entries(6)
	all[0].Title = "Alpha"
	f.load(all)
	require.Equal(t, 5, f.tray.Hotbar().Len())
	before := f.tray.Membership().IDs()

	d := f.tray.Drake()
	_, err := d.Grab(f.tray.List(), f.tray.List().IndexOf("app0"))
	require.NoError(t, err)
	outcome, err := d.Release(context.Background(), f.tray.Hotbar(), 0)
	require.NoError(t, err)

	assert.Equal(t, OutcomeRejected, outcome)
	assert.Equal(t, []string{"app1", "app2", "app3", "app4", "app5"}, f.tray.Hotbar().IDs())
	assert.Equal(t, 5, f.tray.Coordinator().Count())
	assert.Equal(t, before, f.tray.Membership().IDs())
	assert.True(t, f.tray.List().Contains("app0"), "Alpha still in the list")
	blob, _, err := st.Get(context.Background(), HotbarKey)
	require.NoError(t, err)
	assert.NotContains(t, string(blob), `"app0"`)
}

func TestDrake_NothingDropsIntoList(t *testing.T) {
	f := newFixture(t, nil)
	f.load(entries(3))
	d := f.tray.Drake()

	_, err := d.Grab(f.tray.Hotbar(), 0)
	require.NoError(t, err)
	outcome, err := d.Release(context.Background(), f.tray.List(), 0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, outcome)

	_, err = d.Grab(f.tray.List(), 0)
	require.NoError(t, err)
	outcome, err = d.Release(context.Background(), f.tray.List(), 2)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, outcome)

	assert.Equal(t, []string{"app0", "app1", "app2"}, f.tray.List().IDs())
	assert.Equal(t, []string{"app0", "app1", "app2"}, f.tray.Hotbar().IDs())
}

func TestDrake_HotbarReorderIsAlwaysAccepted(t *testing.T) {
	f := newFixture(t, nil)
	f.load(entries(5))
	d := f.tray.Drake()

	_, err := d.Grab(f.tray.Hotbar(), 0)
	require.NoError(t, err)
	outcome, err := d.Release(context.Background(), f.tray.Hotbar(), 4)
	require.NoError(t, err)

	assert.Equal(t, OutcomeDropped, outcome)
	assert.Equal(t, []string{"app1", "app2", "app3", "app4", "app0"}, f.tray.Hotbar().IDs())
	assert.Equal(t, 5, f.tray.Coordinator().Count())
}

func TestDrake_SpillRemovesFromHotbar(t *testing.T) {
	f := newFixture(t, nil)
	f.load(entries(5))
	require.NoError(t, f.tray.Membership().Add(context.Background(), "app3"))
	d := f.tray.Drake()

	_, err := d.Grab(f.tray.Hotbar(), 3)
	require.NoError(t, err)
	outcome, err := d.Release(context.Background(), nil, 0)
	require.NoError(t, err)

	assert.Equal(t, OutcomeSpilled, outcome)
	assert.Equal(t, []string{"app0", "app1", "app2", "app4"}, f.tray.Hotbar().IDs())
	assert.Equal(t, 4, f.tray.Coordinator().Count())
	assert.False(t, f.tray.Membership().Contains("app3"))
}

func TestDrake_SpilledCopyIsCancelled(t *testing.T) {
	f := newFixture(t, nil)
	f.load(entries(2))
	d := f.tray.Drake()

	_, err := d.Grab(f.tray.List(), 1)
	require.NoError(t, err)
	outcome, err := d.Spill(context.Background())
	require.NoError(t, err)

	assert.Equal(t, OutcomeCancelled, outcome)
	assert.Equal(t, 2, f.tray.List().Len())
	assert.Equal(t, 2, f.tray.Coordinator().Count())
}

func TestDrake_OneGestureAtATime(t *testing.T) {
	f := newFixture(t, nil)
	f.load(entries(2))
	d := f.tray.Drake()

	_, err := d.Release(context.Background(), f.tray.Hotbar(), 0)
	assert.ErrorIs(t, err, ErrNoGesture)

	first, err := d.Grab(f.tray.List(), 0)
	require.NoError(t, err)
	_, err = d.Grab(f.tray.List(), 1)
	assert.ErrorIs(t, err, ErrGestureInProgress)

	current, ok := d.Dragging()
	require.True(t, ok)
	assert.Equal(t, first.ID, current.ID)

	d.Cancel()
	_, ok = d.Dragging()
	assert.False(t, ok)
	_, err = d.Spill(context.Background())
	assert.ErrorIs(t, err, ErrNoGesture)
}

func TestDrake_UnregisteredProvider(t *testing.T) {
	_, err := NewDrake(nil).Grab(newContainer(KindList), 0)
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestDrake_HotbarNeverExceedsCapacity(t *testing.T) {
	f := newFixture(t, nil)
	f.load(entries(3), entries(12)[3:])
	d := f.tray.Drake()
	rng := rand.New(rand.NewSource(7))
	ctx := context.Background()

	for i := 0; i < 500; i++ {
		list, hotbar := f.tray.List(), f.tray.Hotbar()
		switch rng.Intn(4) {
		case 0, 1:
			if _, err := d.Grab(list, rng.Intn(list.Len())); err == nil {
				_, err = d.Release(ctx, hotbar, rng.Intn(hotbar.Len()+1))
				require.NoError(t, err)
			}
		case 2:
			if hotbar.Len() > 0 {
				_, err := d.Grab(hotbar, rng.Intn(hotbar.Len()))
				require.NoError(t, err)
				_, err = d.Spill(ctx)
				require.NoError(t, err)
			}
		case 3:
			if hotbar.Len() > 0 {
				_, err := d.Grab(hotbar, rng.Intn(hotbar.Len()))
				require.NoError(t, err)
				_, err = d.Release(ctx, hotbar, rng.Intn(hotbar.Len()))
				require.NoError(t, err)
			}
		}
		require.LessOrEqual(t, hotbar.Len(), MaxHotbar, "step %d", i)
		require.Equal(t, hotbar.Len(), f.tray.Coordinator().Count(), "step %d", i)
	}
}

func TestCoordinator_DuplicateHotbarNodeKeepsMembership(t *testing.T) {
	f := newFixture(t, nil)
	f.load(entries(2))
	ctx := context.Background()
	d := f.tray.Drake()

	_, err := d.Grab(f.tray.List(), 0)
	require.NoError(t, err)
	_, err = d.Release(ctx, f.tray.Hotbar(), 2)
	require.NoError(t, err)
	require.Equal(t, []string{"app0", "app1", "app0"}, f.tray.Hotbar().IDs())

	_, err = d.Grab(f.tray.Hotbar(), 2)
	require.NoError(t, err)
	_, err = d.Spill(ctx)
	require.NoError(t, err)

	assert.True(t, f.tray.Membership().Contains("app0"))
	assert.Equal(t, 2, f.tray.Coordinator().Count())
}
