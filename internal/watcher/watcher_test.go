package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(kind, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind+" "+path)
}

func (r *recorder) Created(path string) { r.add("created", path) }
func (r *recorder) Changed(path string) { r.add("changed", path) }
func (r *recorder) Deleted(path string) { r.add("deleted", path) }

func (r *recorder) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

func start(t *testing.T, ignore ...string) (string, *Watcher, *recorder) {
	t.Helper()
	root := t.TempDir()
	rec := &recorder{}
	w, err := New(zerolog.Nop(), ignore, rec)
	require.NoError(t, err)
	require.NoError(t, w.Add(root))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return root, w, rec
}

func eventually(t *testing.T, rec *recorder, event string) {
	t.Helper()
	assert.Eventually(t, func() bool { return rec.has(event) }, 5*time.Second, 20*time.Millisecond, event)
}

func TestWatcher_FileLifecycle(t *testing.T) {
	root, _, rec := start(t)
	path := filepath.Join(root, "math.bats")

	require.NoError(t, os.WriteFile(path, []byte("@test \"a\" {\n}\n"), 0o644))
	eventually(t, rec, "created "+path)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("@test \"b\" {\n}\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	eventually(t, rec, "changed "+path)

	require.NoError(t, os.Remove(path))
	eventually(t, rec, "deleted "+path)
}

func TestWatcher_NewDirectoryIsWatched(t *testing.T) {
	root, w, rec := start(t)
	dir := filepath.Join(root, "test")
	require.NoError(t, os.Mkdir(dir, 0o755))
	assert.Eventually(t, func() bool { return w.Dirs() == 2 }, 5*time.Second, 20*time.Millisecond)

	path := filepath.Join(dir, "inner.bats")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	eventually(t, rec, "created "+path)
}

func TestWatcher_RemovedDirectory(t *testing.T) {
	root, w, rec := start(t)
	dir := filepath.Join(root, "suite")
	require.NoError(t, os.Mkdir(dir, 0o755))
	assert.Eventually(t, func() bool { return w.Dirs() == 2 }, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.RemoveAll(dir))
	eventually(t, rec, "deleted "+dir)
	assert.Eventually(t, func() bool { return w.Dirs() == 1 }, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_Rename(t *testing.T) {
	root, _, rec := start(t)
	from := filepath.Join(root, "old.bats")
	to := filepath.Join(root, "new.bats")
	require.NoError(t, os.WriteFile(from, nil, 0o644))
	eventually(t, rec, "created "+from)

	require.NoError(t, os.Rename(from, to))
	eventually(t, rec, "deleted "+from)
	eventually(t, rec, "created "+to)
}

func TestWatcher_SkipsIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "pkg"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "test"), 0o755))

	w, err := New(zerolog.Nop(), []string{"node_modules"})
	require.NoError(t, err)
	defer w.watcher.Close()
	require.NoError(t, w.Add(root))

	assert.Equal(t, 2, w.Dirs())
}

func TestWatcher_AddRejectsFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	w, err := New(zerolog.Nop(), nil)
	require.NoError(t, err)
	defer w.watcher.Close()

	assert.Error(t, w.Add(path))
	assert.Error(t, w.Add(filepath.Join(t.TempDir(), "missing")))
}

func TestWatcher_RenameOverExistingFile(t *testing.T) {
	root, _, rec := start(t)
	path := filepath.Join(root, "math.bats")
	require.NoError(t, os.WriteFile(path, []byte("@test \"a\" {\n}\n"), 0o644))
	eventually(t, rec, "created "+path)

	tmp := filepath.Join(root, "math.bats.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("@test \"a\" {\n}\n@test \"b\" {\n}\n"), 0o644))
	eventually(t, rec, "created "+tmp)

	rec.mu.Lock()
	rec.events = nil
	rec.mu.Unlock()

	require.NoError(t, os.Rename(tmp, path))
	eventually(t, rec, "created "+path)
}
