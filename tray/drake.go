package tray

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrGestureInProgress is returned by Grab while another gesture is
	// being dragged.
	ErrGestureInProgress = errors.New("a drag gesture is already in progress")
	// ErrNoGesture is returned when releasing with nothing grabbed.
	ErrNoGesture = errors.New("no drag gesture in progress")
	// ErrNotRegistered is returned before Register was called.
	ErrNotRegistered = errors.New("drake has no containers registered")
)

// Gesture is the in-flight state of one drag.
type Gesture struct {
	ID     uuid.UUID
	Node   *Node
	Source *Container
	// Copy is true when Node is a clone and the source keeps its original.
	Copy bool
}

// Drake is a pointer-event drag provider: Grab picks a node up, Release
// drops it into a container, Spill drops it outside any container. Only one
// gesture is dragging at a time.
type Drake struct {
	logger *slog.Logger

	mu       sync.Mutex
	list     *Container
	hotbar   *Container
	policy   DragPolicy
	listener DragListener
	gesture  *Gesture
}

// NewDrake returns an unregistered drake.
func NewDrake(logger *slog.Logger) *Drake {
	if logger == nil {
		logger = slog.Default()
	}
	return &Drake{logger: logger}
}

// Register implements DragProvider.
func (d *Drake) Register(list, hotbar *Container, policy DragPolicy, listener DragListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.list, d.hotbar = list, hotbar
	d.policy, d.listener = policy, listener
}

// Dragging returns the current gesture, if any.
func (d *Drake) Dragging() (Gesture, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gesture == nil {
		return Gesture{}, false
	}
	return *d.gesture, true
}

// Grab starts a gesture on the node at index in source.
func (d *Drake) Grab(source *Container, index int) (Gesture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.policy == nil {
		return Gesture{}, ErrNotRegistered
	}
	if d.gesture != nil {
		return Gesture{}, ErrGestureInProgress
	}
	if source != d.list && source != d.hotbar {
		return Gesture{}, fmt.Errorf("grab: container %q is not registered", source.Kind())
	}
	node, ok := source.At(index)
	if !ok {
		return Gesture{}, fmt.Errorf("grab: no node at %s[%d]", source.Kind(), index)
	}

	g := &Gesture{ID: uuid.New(), Node: node, Source: source}
	if d.policy.Copies(source) {
		clone := node.clone()
		d.listener.OnClone(clone, node, true)
		g.Node, g.Copy = clone, true
	}
	d.gesture = g
	d.logger.Debug("Drag started", "gesture", g.ID, "entry", node.ID(), "source", source.Kind(), "copy", g.Copy)
	return *g, nil
}

// Release drops the dragged node into target at index. A rejected drop
// snaps back and leaves both containers unchanged.
func (d *Drake) Release(ctx context.Context, target *Container, index int) (Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	g := d.gesture
	if g == nil {
		return "", ErrNoGesture
	}
	d.gesture = nil
	if target == nil {
		return d.spill(ctx, g), nil
	}

	logger := d.logger.With("gesture", g.ID, "entry", g.Node.ID(), "source", g.Source.Kind(), "target", target.Kind())
	if !d.policy.Accepts(g.Node, target, g.Source) {
		logger.Debug("Drop rejected")
		return OutcomeRejected, nil
	}
	if !g.Copy {
		g.Source.remove(g.Node)
	}
	target.insert(g.Node, index)
	d.listener.OnDrop(ctx, g.Node, target, g.Source)
	logger.Debug("Drop committed", "index", index)
	return OutcomeDropped, nil
}

// Spill drops the dragged node outside every container.
func (d *Drake) Spill(ctx context.Context) (Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	g := d.gesture
	if g == nil {
		return "", ErrNoGesture
	}
	d.gesture = nil
	return d.spill(ctx, g), nil
}

// Cancel abandons the gesture without any change.
func (d *Drake) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gesture != nil {
		d.logger.Debug("Drag cancelled", "gesture", d.gesture.ID)
		d.gesture = nil
	}
}

// spill removes a moved node from its source. A spilled copy simply
// disappears.
func (d *Drake) spill(ctx context.Context, g *Gesture) Outcome {
	logger := d.logger.With("gesture", g.ID, "entry", g.Node.ID(), "source", g.Source.Kind())
	if g.Copy {
		logger.Debug("Copy spilled")
		return OutcomeCancelled
	}
	if g.Source.remove(g.Node) < 0 {
		logger.Debug("Spilled node already gone")
		return OutcomeCancelled
	}
	d.listener.OnRemove(ctx, g.Node, g.Source)
	logger.Debug("Node removed")
	return OutcomeSpilled
}
