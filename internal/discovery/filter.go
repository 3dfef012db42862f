package discovery

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"ptx/internal/tree"
)

// RootFilter is the allow-list of project root names. Names may use glob
// wildcards. An empty allow-list admits every root.
type RootFilter struct {
	globs []glob.Glob
}

// NewRootFilter compiles the allow-list
func NewRootFilter(names []string) (*RootFilter, error) {
	f := &RootFilter{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		g, err := glob.Compile(n)
		if err != nil {
			return nil, err
		}
		f.globs = append(f.globs, g)
	}
	return f, nil
}

// Allows reports whether the root with the given name passes the filter
func (f *RootFilter) Allows(name string) bool {
	if f == nil || len(f.globs) == 0 {
		return true
	}
	for _, g := range f.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Filter selects file nodes by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps the file nodes whose base name matches pattern.
// Patterns with * or ? are wildcards ("*UserTest.php", "*Payment*"), anything
// else is a substring match. An empty pattern keeps everything.
func (f *Filter) FilterByName(files []*tree.Node, pattern string) []*tree.Node {
	if pattern == "" {
		return files
	}

	var filtered []*tree.Node
	for _, n := range files {
		name := filepath.Base(n.ID)
		if f.matches(pattern, name) {
			filtered = append(filtered, n)
		}
	}
	return filtered
}

func (f *Filter) matches(pattern, name string) bool {
	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}
	if ok, err := filepath.Match(pattern, name); err == nil && ok {
		return true
	}

	// "*Payment*" style: every literal part must appear, in order
	rest := name
	hasPart := false
	for _, part := range strings.Split(pattern, "*") {
		if part == "" || strings.Contains(part, "?") {
			continue
		}
		hasPart = true
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
	}
	return hasPart
}
