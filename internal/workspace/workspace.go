// Package workspace resolves which open project root owns a path.
//
// Every path handed to a test process is relative to its owning root, never to
// the outermost directory of the session. Several roots may be open at once and
// roots may be nested; the most specific root wins.
package workspace

import (
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"ptx/internal/domain"
)

// Workspace is the set of currently open project roots
type Workspace struct {
	mu     sync.RWMutex
	roots  []domain.ProjectRoot
	logger zerolog.Logger
}

// New creates a Workspace with the given roots
func New(logger zerolog.Logger, roots ...domain.ProjectRoot) *Workspace {
	ws := &Workspace{logger: logger}
	for _, r := range roots {
		ws.AddRoot(r)
	}
	return ws
}

// AddRoot opens a root. A root with the same name is replaced.
func (w *Workspace) AddRoot(root domain.ProjectRoot) {
	root.Path = filepath.Clean(root.Path)

	w.mu.Lock()
	defer w.mu.Unlock()
	for i, r := range w.roots {
		if r.Name == root.Name {
			w.roots[i] = root
			return
		}
	}
	w.roots = append(w.roots, root)
}

// RemoveRoot closes the root with the given name
func (w *Workspace) RemoveRoot(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, r := range w.roots {
		if r.Name == name {
			w.roots = append(w.roots[:i], w.roots[i+1:]...)
			return
		}
	}
}

// Roots returns a snapshot of the open roots in the order they were added
func (w *Workspace) Roots() []domain.ProjectRoot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	roots := make([]domain.ProjectRoot, len(w.roots))
	copy(roots, w.roots)
	return roots
}

// OwnerOf returns the root whose base path contains path.
// With nested roots the longest base path wins.
func (w *Workspace) OwnerOf(path string) (domain.ProjectRoot, bool) {
	path = filepath.Clean(path)

	w.mu.RLock()
	defer w.mu.RUnlock()

	var owner domain.ProjectRoot
	found := false
	for _, r := range w.roots {
		if !contains(r.Path, path) {
			continue
		}
		if !found || len(r.Path) > len(owner.Path) {
			owner = r
			found = true
		}
	}

	if found {
		w.logger.Debug().Str("path", path).Str("root", owner.Name).Msg("resolved owning root")
	} else {
		w.logger.Debug().Str("path", path).Msg("path is outside every open root")
	}
	return owner, found
}

// RelativeTo returns path relative to its owning root with forward slashes.
// Without an owner the path is returned unchanged.
func (w *Workspace) RelativeTo(path string) string {
	owner, ok := w.OwnerOf(path)
	if !ok {
		return path
	}
	rel, err := filepath.Rel(owner.Path, filepath.Clean(path))
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// ToContainerMountPath converts a host path into the syntax of a container mount flag
func (w *Workspace) ToContainerMountPath(hostPath string) string {
	return MountPath(hostPath, runtime.GOOS)
}

// MountPath converts hostPath as seen on goos. On windows `C:\a\b` becomes `/c/a/b`;
// everywhere else the path is returned as is.
func MountPath(hostPath, goos string) string {
	if goos != "windows" {
		return hostPath
	}
	p := strings.ReplaceAll(hostPath, `\`, "/")
	if len(p) >= 2 && p[1] == ':' && isLetter(p[0]) {
		p = "/" + strings.ToLower(p[:1]) + p[2:]
	}
	return p
}

// contains reports whether path is base or lies beneath it
func contains(base, path string) bool {
	if path == base {
		return true
	}
	prefix := base
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
