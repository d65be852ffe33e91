package tray

import (
	"context"
	"log/slog"
	"sync"
)

// Coordinator enforces the hotbar capacity and keeps the resident counter
// and the remembered membership in step with committed drags. It is both
// the DragPolicy and the DragListener handed to the provider.
type Coordinator struct {
	list       *Container
	hotbar     *Container
	membership *Membership
	logger     *slog.Logger
	max        int

	mu    sync.Mutex
	count int
}

// NewCoordinator returns a coordinator for the given containers. The counter
// starts at capacity so nothing can be dropped in before the first render
// resynchronizes it.
func NewCoordinator(list, hotbar *Container, membership *Membership, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		list:       list,
		hotbar:     hotbar,
		membership: membership,
		logger:     logger,
		max:        MaxHotbar,
		count:      MaxHotbar,
	}
}

// Count returns the resident counter.
func (c *Coordinator) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Resync sets the counter to the actual number of hotbar nodes, discarding
// whatever drift accumulated.
func (c *Coordinator) Resync() {
	n := c.hotbar.Len()
	c.mu.Lock()
	defer c.mu.Unlock()
	if n != c.count {
		c.logger.Debug("Hotbar counter resynchronized", "from", c.count, "to", n)
	}
	c.count = n
}

func (c *Coordinator) Copies(source *Container) bool {
	return source == c.list
}

func (c *Coordinator) Accepts(_ *Node, target, source *Container) bool {
	switch {
	case target == c.list:
		return false
	case target == c.hotbar && source == c.hotbar:
		return true
	case target == c.hotbar:
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.count < c.max
	}
	return false
}

func (c *Coordinator) OnDrop(ctx context.Context, node *Node, target, source *Container) {
	if target != c.hotbar || source != c.list {
		return
	}
	c.mu.Lock()
	c.count++
	count := c.count
	c.mu.Unlock()

	c.logger.Debug("Entry added to hotbar", "entry", node.ID(), "count", count)
	if err := c.membership.Add(ctx, node.ID()); err != nil {
		c.logger.Error("Failed to remember hotbar entry", "entry", node.ID(), "error", err)
	}
}

func (c *Coordinator) OnRemove(ctx context.Context, node *Node, source *Container) {
	if source != c.hotbar {
		return
	}
	c.mu.Lock()
	c.count--
	count := c.count
	c.mu.Unlock()

	c.logger.Debug("Entry removed from hotbar", "entry", node.ID(), "count", count)
	// Another copy of the same entry keeps it remembered.
	if c.hotbar.Contains(node.ID()) {
		return
	}
	if err := c.membership.Remove(ctx, node.ID()); err != nil {
		c.logger.Error("Failed to forget hotbar entry", "entry", node.ID(), "error", err)
	}
}

// OnClone gives a copied node the original's activation.
func (c *Coordinator) OnClone(clone, original *Node, copied bool) {
	if copied {
		clone.run = original.run
	}
}
