package cell

import "sync"

// usageNode records whether a cell, identified by its level-0 hash, was
// touched during a traversal, and which of its children were specifically
// descended into.
type usageNode struct {
	loaded    bool
	childSeen [maxRefs]bool
}

// UsageTree is a shadow access log: as application code walks a DAG
// through UsageCell wrappers, the tree records which cells and which of
// their children were actually visited. A proof builder later uses this
// log as its is_pruned predicate — anything never touched gets collapsed
// into a pruned-branch stub.
//
// Multiple independent traversals may share one UsageTree and run
// concurrently; each traversal is itself single-threaded (a UsageCell
// chain has no internal synchronization of its own), matching the
// concurrency contract the rest of the package assumes.
type UsageTree struct {
	mu    sync.RWMutex
	nodes map[[32]byte]*usageNode
}

// NewUsageTree returns an empty usage tree ready to back one or more
// UsageCell-wrapped traversals of the same root.
func NewUsageTree() *UsageTree {
	return &UsageTree{nodes: make(map[[32]byte]*usageNode)}
}

func (t *UsageTree) nodeLocked(hash [32]byte) *usageNode {
	n, ok := t.nodes[hash]
	if !ok {
		n = &usageNode{}
		t.nodes[hash] = n
	}
	return n
}

func (t *UsageTree) markLoaded(hash [32]byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nodeLocked(hash).loaded = true
}

func (t *UsageTree) markChild(hash [32]byte, idx int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.nodeLocked(hash)
	n.loaded = true
	if idx >= 0 && idx < maxRefs {
		n.childSeen[idx] = true
	}
}

// IsLoaded reports whether the cell with this hash was ever touched.
func (t *UsageTree) IsLoaded(hash [32]byte) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[hash]
	return ok && n.loaded
}

// ChildSeen reports whether the given child index of the cell with this
// hash was specifically descended into.
func (t *UsageTree) ChildSeen(hash [32]byte, idx int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[hash]
	if !ok || idx < 0 || idx >= maxRefs {
		return false
	}
	return n.childSeen[idx]
}

// UsageCell wraps a concrete *Cell so that every access through the Ref
// interface is mirrored into a UsageTree. It implements Ref itself, so a
// Slice (or any other Ref-consuming code) can walk a usage-tracked DAG
// exactly as it would walk a plain one.
type UsageCell struct {
	cell *Cell
	tree *UsageTree
}

// WrapUsage returns a usage-tracked view of c backed by t. Accessing any
// field of the returned UsageCell marks c as loaded in t; fetching a
// reference additionally marks that specific child index as seen and
// wraps the child in the same tree.
func WrapUsage(c *Cell, t *UsageTree) *UsageCell {
	return &UsageCell{cell: c, tree: t}
}

// Cell returns the concrete cell this view wraps, without marking usage.
// Used by code that needs the real DAG node, e.g. the proof builder.
func (u *UsageCell) Cell() *Cell { return u.cell }

// Tree returns the usage tree backing this view.
func (u *UsageCell) Tree() *UsageTree { return u.tree }

func (u *UsageCell) Kind() Kind {
	u.tree.markLoaded(u.cell.Hash())
	return u.cell.Kind()
}

func (u *UsageCell) Mask() LevelMask {
	u.tree.markLoaded(u.cell.Hash())
	return u.cell.Mask()
}

func (u *UsageCell) BitLen() int {
	u.tree.markLoaded(u.cell.Hash())
	return u.cell.BitLen()
}

func (u *UsageCell) Bits() []byte {
	u.tree.markLoaded(u.cell.Hash())
	return u.cell.Bits()
}

func (u *UsageCell) RefsLen() int {
	u.tree.markLoaded(u.cell.Hash())
	return u.cell.RefsLen()
}

func (u *UsageCell) Ref(i int) (Ref, error) {
	child, err := u.cell.RefCell(i)
	if err != nil {
		return nil, err
	}
	u.tree.markChild(u.cell.Hash(), i)
	return WrapUsage(child, u.tree), nil
}

func (u *UsageCell) HashAt(level int) [32]byte {
	u.tree.markLoaded(u.cell.Hash())
	return u.cell.HashAt(level)
}

func (u *UsageCell) DepthAt(level int) uint16 {
	u.tree.markLoaded(u.cell.Hash())
	return u.cell.DepthAt(level)
}
