package tree

import (
	"path/filepath"
	"strings"
	"sync"
)

// Tree holds the file nodes of one framework keyed by absolute path
type Tree struct {
	mu    sync.RWMutex
	files map[string]*Node
	order []string
}

// New creates an empty Tree
func New() *Tree {
	return &Tree{files: make(map[string]*Node)}
}

// Add attaches a file node at the top level. An existing node with the same
// identity is kept and returned instead.
func (t *Tree) Add(n *Node) (*Node, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.files[n.ID]; ok {
		return existing, false
	}
	t.files[n.ID] = n
	t.order = append(t.order, n.ID)
	return n, true
}

// File returns the file node with the given identity
func (t *Tree) File(id string) (*Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.files[id]
	return n, ok
}

// Lookup finds a node of any level by identity
func (t *Tree) Lookup(id string) (*Node, bool) {
	fileID := id
	if i := strings.Index(id, IDSeparator); i >= 0 {
		fileID = id[:i]
	}
	file, ok := t.File(fileID)
	if !ok {
		return nil, false
	}
	n := file.Find(id)
	return n, n != nil
}

// Remove detaches the file node and, with it, all of its children
func (t *Tree) Remove(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.files[id]; !ok {
		return false
	}
	delete(t.files, id)
	for i, o := range t.order {
		if o == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// RemoveUnder detaches every file node located beneath dir
func (t *Tree) RemoveUnder(dir string) []string {
	prefix := filepath.Clean(dir) + string(filepath.Separator)
	var removed []string
	for _, n := range t.Files() {
		if strings.HasPrefix(n.ID, prefix) {
			t.Remove(n.ID)
			removed = append(removed, n.ID)
		}
	}
	return removed
}

// Files returns the file nodes in the order they were added
func (t *Tree) Files() []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	files := make([]*Node, 0, len(t.order))
	for _, id := range t.order {
		files = append(files, t.files[id])
	}
	return files
}

// Len returns the number of file nodes
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.order)
}

// Clear discards every node
func (t *Tree) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files = make(map[string]*Node)
	t.order = nil
}
