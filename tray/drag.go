package tray

import "context"

// DragPolicy answers the questions a drag provider asks while a gesture is
// in flight.
type DragPolicy interface {
	// Copies reports whether a drag starting in source duplicates the node
	// rather than moving it.
	Copies(source *Container) bool
	// Accepts reports whether node may be dropped into target.
	Accepts(node *Node, target, source *Container) bool
}

// DragListener is notified of committed drag outcomes.
type DragListener interface {
	// OnDrop fires after node was placed into target.
	OnDrop(ctx context.Context, node *Node, target, source *Container)
	// OnRemove fires after node was spilled out of source.
	OnRemove(ctx context.Context, node *Node, source *Container)
	// OnClone fires when the provider duplicates original for a copy drag.
	OnClone(clone, original *Node, copied bool)
}

// DragProvider drives gestures over the two tray containers.
type DragProvider interface {
	Register(list, hotbar *Container, policy DragPolicy, listener DragListener)
}

// Outcome is how a gesture ended.
type Outcome string

const (
	OutcomeDropped   Outcome = "dropped"
	OutcomeSpilled   Outcome = "spilled"
	OutcomeRejected  Outcome = "rejected"
	OutcomeCancelled Outcome = "cancelled"
)
