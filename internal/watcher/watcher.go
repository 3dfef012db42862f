// Package watcher turns file system notifications under the project roots
// into Created, Changed and Deleted calls.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Handler receives file events. Paths are absolute and cleaned.
type Handler interface {
	// Created is called for every new file, including files inside a newly
	// created directory
	Created(path string)
	// Changed is called when a file was written
	Changed(path string)
	// Deleted is called for removed or renamed files and directories
	Deleted(path string)
}

// Watcher watches directory trees recursively. No debouncing is done.
type Watcher struct {
	watcher  *fsnotify.Watcher
	handlers []Handler
	ignore   map[string]bool
	logger   zerolog.Logger

	mu   sync.Mutex
	dirs map[string]struct{}
}

// New creates a Watcher. Directories whose base name is in ignore, or is
// hidden, are not watched.
func New(logger zerolog.Logger, ignore []string, handlers ...Handler) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	skip := make(map[string]bool, len(ignore))
	for _, name := range ignore {
		skip[name] = true
	}

	return &Watcher{
		watcher:  fw,
		handlers: handlers,
		ignore:   skip,
		logger:   logger,
		dirs:     make(map[string]struct{}),
	}, nil
}

// Add watches root and every directory beneath it
func (w *Watcher) Add(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cannot watch %s: not a directory", root)
	}
	_, err = w.addRecursive(filepath.Clean(root), false)
	return err
}

// Dirs returns the number of watched directories
func (w *Watcher) Dirs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.dirs)
}

// Run dispatches events until ctx is done, then closes the watcher
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("file watcher error")
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	switch {
	case event.Has(fsnotify.Create):
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if !info.IsDir() {
			w.dispatch(path, Handler.Created)
			return
		}
		if w.skipped(path) {
			return
		}
		files, err := w.addRecursive(path, true)
		if err != nil {
			w.logger.Warn().Err(err).Str("dir", path).Msg("cannot watch new directory")
		}
		for _, f := range files {
			w.dispatch(f, Handler.Created)
		}

	case event.Has(fsnotify.Write):
		w.dispatch(path, Handler.Changed)

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.forget(path)
		w.dispatch(path, Handler.Deleted)
	}
}

func (w *Watcher) dispatch(path string, call func(Handler, string)) {
	w.logger.Debug().Str("path", path).Msg("file event")
	for _, h := range w.handlers {
		call(h, path)
	}
}

// addRecursive watches root and its subdirectories. With collect set it
// also returns the files found on the way.
func (w *Watcher) addRecursive(root string, collect bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if collect {
				files = append(files, path)
			}
			return nil
		}
		if path != root && w.skipped(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("cannot watch %s: %w", path, err)
		}
		w.mu.Lock()
		w.dirs[path] = struct{}{}
		w.mu.Unlock()
		return nil
	})
	return files, err
}

// forget drops the bookkeeping for a removed directory tree. fsnotify drops
// the watches itself.
func (w *Watcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	prefix := path + string(filepath.Separator)
	for dir := range w.dirs {
		if dir == path || strings.HasPrefix(dir, prefix) {
			delete(w.dirs, dir)
		}
	}
}

func (w *Watcher) skipped(dir string) bool {
	name := filepath.Base(dir)
	return w.ignore[name] || (strings.HasPrefix(name, ".") && len(name) > 1)
}
