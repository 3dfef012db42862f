// Package tree is the editor-side test tree: nodes, their lazy children and
// the per-run state transitions observers render.
package tree

import (
	"sync"

	"ptx/internal/domain"
)

// IDSeparator joins a parent identity and a child name
const IDSeparator = "::"

// Node is one item of the test tree
type Node struct {
	ID        string
	Label     string
	Kind      domain.NodeKind
	Framework string
	Location  domain.Location

	// CanResolveChildren marks a node whose children are built on demand
	CanResolveChildren bool

	mu       sync.RWMutex
	parent   *Node
	children []*Node
	parsed   bool
}

// NewNode creates a detached node
func NewNode(id, label string, kind domain.NodeKind, loc domain.Location) *Node {
	return &Node{ID: id, Label: label, Kind: kind, Location: loc}
}

// ChildID builds the identity of a child of the node
func (n *Node) ChildID(name string) string {
	return n.ID + IDSeparator + name
}

// Parent returns the enclosing node, nil for a file node
func (n *Node) Parent() *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// Children returns a snapshot of the children in source order
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	return children
}

// Parsed reports whether children have been populated at least once
func (n *Node) Parsed() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parsed
}

// ReplaceChildren swaps the whole child list and marks the node parsed
func (n *Node) ReplaceChildren(children []*Node) {
	for _, c := range children {
		c.mu.Lock()
		c.parent = n
		c.mu.Unlock()
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, old := range n.children {
		old.mu.Lock()
		old.parent = nil
		old.mu.Unlock()
	}
	n.children = children
	n.parsed = true
}

// File walks up the parent chain to the file node
func (n *Node) File() *Node {
	cur := n
	for cur != nil && cur.Kind != domain.KindFile {
		cur = cur.Parent()
	}
	return cur
}

// Leaves returns the case nodes at or beneath n
func (n *Node) Leaves() []*Node {
	if n.Kind == domain.KindCase {
		return []*Node{n}
	}
	var leaves []*Node
	for _, c := range n.Children() {
		leaves = append(leaves, c.Leaves()...)
	}
	return leaves
}

// Walk visits n and every descendant depth first
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children() {
		c.Walk(fn)
	}
}

// Find returns the descendant (or n itself) with the given identity
func (n *Node) Find(id string) *Node {
	if n.ID == id {
		return n
	}
	for _, c := range n.Children() {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}
