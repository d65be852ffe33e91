package tray

import (
	"context"
	"errors"
	"slices"
	"sync"

	"launchtray/model"
)

// ErrInertNode is returned when activating a node that carries no run
// behaviour.
var ErrInertNode = errors.New("node has no activation")

// RunFunc launches an entry.
type RunFunc func(ctx context.Context, entry model.AppEntry) error

// ContainerKind names one of the two tray containers.
type ContainerKind string

const (
	KindList   ContainerKind = "list"
	KindHotbar ContainerKind = "hotbar"
)

// Node is the rendered form of one entry.
type Node struct {
	entry model.AppEntry
	run   RunFunc
}

// Entry returns the entry the node was rendered from.
func (n *Node) Entry() model.AppEntry {
	return n.entry
}

// ID returns the entry id.
func (n *Node) ID() string {
	return n.entry.ID
}

// Activate launches the node's entry.
func (n *Node) Activate(ctx context.Context) error {
	if n.run == nil {
		return ErrInertNode
	}
	return n.run(ctx, n.entry)
}

// clone copies the node without its activation, the way a drag provider
// duplicates a visual element.
func (n *Node) clone() *Node {
	return &Node{entry: n.entry}
}

// Container is an ordered list of nodes.
type Container struct {
	kind ContainerKind

	mu    sync.RWMutex
	nodes []*Node
}

func newContainer(kind ContainerKind) *Container {
	return &Container{kind: kind}
}

// Kind returns which container this is.
func (c *Container) Kind() ContainerKind {
	return c.kind
}

// Len returns the number of child nodes.
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.nodes)
}

// Nodes returns the child nodes in order.
func (c *Container) Nodes() []*Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.nodes)
}

// IDs returns the entry ids of the child nodes in order.
func (c *Container) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, len(c.nodes))
	for i, n := range c.nodes {
		ids[i] = n.entry.ID
	}
	return ids
}

// Entries returns the entries of the child nodes in order.
func (c *Container) Entries() []model.AppEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.AppEntry, len(c.nodes))
	for i, n := range c.nodes {
		out[i] = n.entry
	}
	return out
}

// IndexOf returns the position of the first node for id, or -1.
func (c *Container) IndexOf(id string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.IndexFunc(c.nodes, func(n *Node) bool { return n.entry.ID == id })
}

// Contains reports whether a node for id is present.
func (c *Container) Contains(id string) bool {
	return c.IndexOf(id) >= 0
}

// At returns the node at index.
func (c *Container) At(index int) (*Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if index < 0 || index >= len(c.nodes) {
		return nil, false
	}
	return c.nodes[index], true
}

// insert places n at index, clamped to the container bounds.
func (c *Container) insert(n *Node, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	index = max(0, min(index, len(c.nodes)))
	c.nodes = slices.Insert(c.nodes, index, n)
}

// remove detaches n and returns its former index, or -1.
func (c *Container) remove(n *Node) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.Index(c.nodes, n)
	if i >= 0 {
		c.nodes = slices.Delete(c.nodes, i, i+1)
	}
	return i
}

// render writes entries as nodes. With clear the previous children are
// dropped first. Ids already present, or seen earlier in the same call, are
// skipped.
func (c *Container) render(entries []model.AppEntry, clear bool, run RunFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if clear {
		c.nodes = nil
	}
	present := make(map[string]struct{}, len(c.nodes)+len(entries))
	for _, n := range c.nodes {
		present[n.entry.ID] = struct{}{}
	}
	for _, e := range entries {
		if _, dup := present[e.ID]; dup {
			continue
		}
		present[e.ID] = struct{}{}
		c.nodes = append(c.nodes, &Node{entry: e, run: run})
	}
}

// Renderer projects entries into the list and hotbar containers.
type Renderer struct {
	list   *Container
	hotbar *Container
	run    RunFunc
}

// NewRenderer returns a renderer whose nodes launch entries through run.
func NewRenderer(run RunFunc) *Renderer {
	return &Renderer{
		list:   newContainer(KindList),
		hotbar: newContainer(KindHotbar),
		run:    run,
	}
}

// List returns the list container.
func (r *Renderer) List() *Container { return r.list }

// Hotbar returns the hotbar container.
func (r *Renderer) Hotbar() *Container { return r.hotbar }

// RenderList draws entries into the list.
func (r *Renderer) RenderList(entries []model.AppEntry, clear bool) {
	r.list.render(entries, clear, r.run)
}

// RenderHotbar draws entries into the hotbar.
func (r *Renderer) RenderHotbar(entries []model.AppEntry, clear bool) {
	r.hotbar.render(entries, clear, r.run)
}

// HotbarSeed picks the entries that populate the hotbar on first render:
// the remembered ids in collection order when any are remembered, the first
// MaxHotbar entries otherwise. Either way at most MaxHotbar distinct ids.
func HotbarSeed(entries []model.AppEntry, remembered []string) []model.AppEntry {
	seed := make([]model.AppEntry, 0, MaxHotbar)
	seen := make(map[string]struct{}, MaxHotbar)
	for _, e := range entries {
		if len(seed) == MaxHotbar {
			break
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		if len(remembered) > 0 && !slices.Contains(remembered, e.ID) {
			continue
		}
		seen[e.ID] = struct{}{}
		seed = append(seed, e)
	}
	return seed
}
