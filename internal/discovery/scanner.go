package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Scanner finds test files beneath a root. The include pattern and the first
// exclude glob are applied while walking; the remaining excludes run as a
// second pass over the walk results.
type Scanner struct {
	pattern  string
	excludes []string
}

// NewScanner creates a Scanner for the include pattern and exclude globs
func NewScanner(pattern string, excludes []string) *Scanner {
	return &Scanner{pattern: pattern, excludes: excludes}
}

// Scan finds all matching files beneath root and returns their absolute paths
func (s *Scanner) Scan(ctx context.Context, root string) ([]string, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			// Skip hidden directories and those the native exclude covers entirely
			if strings.HasPrefix(d.Name(), ".") || s.prunes(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.includes(rel) && !s.nativeExcludes(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.excludeRest(root, files), nil
}

// Matches applies include and every exclude to one path relative to its root
func (s *Scanner) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	if !s.includes(rel) {
		return false
	}
	for _, g := range s.excludes {
		if match(g, rel) {
			return false
		}
	}
	return true
}

func (s *Scanner) includes(rel string) bool {
	return match(s.pattern, rel)
}

func (s *Scanner) nativeExcludes(rel string) bool {
	return len(s.excludes) > 0 && match(s.excludes[0], rel)
}

// prunes reports whether the native exclude matches everything under dir
func (s *Scanner) prunes(dir string) bool {
	if len(s.excludes) == 0 || !strings.HasSuffix(s.excludes[0], "/**") {
		return false
	}
	return match(strings.TrimSuffix(s.excludes[0], "/**"), dir)
}

// excludeRest is the manual pass for the excludes the walk does not apply
func (s *Scanner) excludeRest(root string, files []string) []string {
	if len(s.excludes) < 2 {
		return files
	}
	kept := files[:0]
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		excluded := false
		for _, g := range s.excludes[1:] {
			if match(g, rel) {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, f)
		}
	}
	return kept
}

func match(pattern, rel string) bool {
	ok, err := doublestar.Match(pattern, rel)
	return err == nil && ok
}
