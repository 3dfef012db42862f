package discovery

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptx/internal/config"
	"ptx/internal/domain"
	"ptx/internal/tree"
	"ptx/internal/workspace"
)

const mathBats = `@test "adds two numbers" {
  [ 1 -eq 1 ]
}

@test "fails on bad input" {
  false
}
`

type fixture struct {
	rootA, rootB string
	ws           *workspace.Workspace
	tree         *tree.Tree
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	f := &fixture{rootA: filepath.Join(base, "plugin-a"), rootB: filepath.Join(base, "plugin-b"), tree: tree.New()}
	for _, root := range []string{f.rootA, f.rootB} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "test"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "smoke.bats"), []byte(mathBats), 0644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(f.rootA, "vendor"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(f.rootA, "vendor", "dep.bats"), []byte(mathBats), 0644))

	f.ws = workspace.New(zerolog.Nop(),
		domain.ProjectRoot{Name: "plugin-a", Path: f.rootA},
		domain.ProjectRoot{Name: "plugin-b", Path: f.rootB},
	)
	return f
}

func (f *fixture) discoverer(t *testing.T, cfg config.Framework) *Discoverer {
	t.Helper()
	d, err := NewDiscoverer("bats", cfg, f.ws, f.tree, NewBatsParser(), zerolog.Nop())
	require.NoError(t, err)
	return d
}

func ids(tr *tree.Tree) []string {
	var out []string
	for _, n := range tr.Files() {
		out = append(out, n.ID)
	}
	sort.Strings(out)
	return out
}

func TestDiscoverer_Discover(t *testing.T) {
	f := newFixture(t)
	d := f.discoverer(t, config.DefaultBats)

	require.NoError(t, d.Discover(context.Background()))

	expected := []string{filepath.Join(f.rootA, "smoke.bats"), filepath.Join(f.rootB, "smoke.bats")}
	sort.Strings(expected)
	assert.Equal(t, expected, ids(f.tree))

	t.Run("file nodes are lazy and labelled by base name", func(t *testing.T) {
		for _, n := range f.tree.Files() {
			assert.Equal(t, "smoke.bats", n.Label)
			assert.True(t, n.CanResolveChildren)
			assert.False(t, n.Parsed())
			assert.Equal(t, "bats", n.Framework)
		}
	})

	t.Run("same file name in two roots resolves to distinct relative paths", func(t *testing.T) {
		for _, n := range f.tree.Files() {
			assert.Equal(t, "smoke.bats", f.ws.RelativeTo(n.ID))
		}
		ownerA, _ := f.ws.OwnerOf(filepath.Join(f.rootA, "smoke.bats"))
		ownerB, _ := f.ws.OwnerOf(filepath.Join(f.rootB, "smoke.bats"))
		assert.NotEqual(t, ownerA.Name, ownerB.Name)
	})

	t.Run("second pass keeps identities and parsed nodes", func(t *testing.T) {
		first, _ := f.tree.File(filepath.Join(f.rootA, "smoke.bats"))
		d.Resolve(first)

		require.NoError(t, d.Discover(context.Background()))
		assert.Equal(t, expected, ids(f.tree))

		again, _ := f.tree.File(first.ID)
		assert.Same(t, first, again)
		assert.True(t, again.Parsed())
	})
}

func TestDiscoverer_RootFilters(t *testing.T) {
	t.Run("configured allow-list", func(t *testing.T) {
		f := newFixture(t)
		cfg := config.DefaultBats
		cfg.Roots = []string{"plugin-b"}
		require.NoError(t, f.discoverer(t, cfg).Discover(context.Background()))
		assert.Equal(t, []string{filepath.Join(f.rootB, "smoke.bats")}, ids(f.tree))
	})

	t.Run("explicit names narrow discovery", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.discoverer(t, config.DefaultBats).Discover(context.Background(), "plugin-a"))
		assert.Equal(t, []string{filepath.Join(f.rootA, "smoke.bats")}, ids(f.tree))
	})
}

func TestDiscoverer_NestedRoots(t *testing.T) {
	f := newFixture(t)
	nested := filepath.Join(f.rootA, "test")
	require.NoError(t, os.WriteFile(filepath.Join(nested, "inner.bats"), []byte(mathBats), 0644))
	f.ws.AddRoot(domain.ProjectRoot{Name: "inner", Path: nested})

	cfg := config.DefaultBats
	cfg.Roots = []string{"plugin-a"}
	require.NoError(t, f.discoverer(t, cfg).Discover(context.Background()))

	// inner.bats belongs to the nested root, which is not allowed
	assert.Equal(t, []string{filepath.Join(f.rootA, "smoke.bats")}, ids(f.tree))
}

func TestDiscoverer_Refresh(t *testing.T) {
	f := newFixture(t)
	d := f.discoverer(t, config.DefaultBats)
	require.NoError(t, d.Discover(context.Background()))

	stale := tree.NewNode("/gone/x.bats", "x.bats", domain.KindFile, domain.Location{Path: "/gone/x.bats"})
	f.tree.Add(stale)

	require.NoError(t, d.Refresh(context.Background()))
	assert.Len(t, ids(f.tree), 2)
	_, ok := f.tree.File("/gone/x.bats")
	assert.False(t, ok)
}

func TestDiscoverer_AdmitAndAddFile(t *testing.T) {
	f := newFixture(t)
	d := f.discoverer(t, config.DefaultBats)

	assert.True(t, d.Admit(filepath.Join(f.rootA, "test", "new.bats")))
	assert.False(t, d.Admit(filepath.Join(f.rootA, "vendor", "dep.bats")))
	assert.False(t, d.Admit(filepath.Join(f.rootA, "notes.txt")))
	assert.False(t, d.Admit("/outside/every/root.bats"))

	n, added := d.AddFile(filepath.Join(f.rootB, "smoke.bats"))
	require.True(t, added)
	assert.Equal(t, filepath.Join(f.rootB, "smoke.bats"), n.ID)

	_, added = d.AddFile(filepath.Join(f.rootB, "smoke.bats"))
	assert.False(t, added)
}

func TestDiscoverer_Resolve(t *testing.T) {
	f := newFixture(t)
	d := f.discoverer(t, config.DefaultBats)
	n, _ := d.AddFile(filepath.Join(f.rootA, "smoke.bats"))

	d.Resolve(n)
	children := n.Children()
	require.Len(t, children, 2)
	assert.Equal(t, n.ID+"::adds two numbers", children[0].ID)
	assert.Equal(t, "adds two numbers", children[0].Label)
	assert.Equal(t, 1, children[0].Location.Line)
	assert.Equal(t, 5, children[1].Location.Line)

	t.Run("re-parse is stable", func(t *testing.T) {
		d.Resolve(n)
		again := n.Children()
		require.Len(t, again, 2)
		for i := range children {
			assert.Equal(t, children[i].ID, again[i].ID)
			assert.Equal(t, children[i].Location, again[i].Location)
		}
	})

	t.Run("unreadable file yields no children", func(t *testing.T) {
		require.NoError(t, os.Remove(n.ID))
		d.Resolve(n)
		assert.True(t, n.Parsed())
		assert.Empty(t, n.Children())
	})
}

func TestDiscoverer_ResolvePHPUnit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "FooTest.php")
	require.NoError(t, os.WriteFile(path, []byte("<?php\nclass FooTest extends TestCase {\n function testAddsValues() {}\n}\n"), 0644))

	ws := workspace.New(zerolog.Nop(), domain.ProjectRoot{Name: "p", Path: dir})
	tr := tree.New()
	d, err := NewDiscoverer("phpunit", config.DefaultPHPUnit, ws, tr, NewPHPUnitParser(), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, d.Discover(context.Background()))

	file, ok := tr.File(path)
	require.True(t, ok)
	d.Resolve(file)

	require.Len(t, file.Children(), 1)
	class := file.Children()[0]
	assert.Equal(t, path+"::FooTest", class.ID)
	assert.Equal(t, domain.KindClass, class.Kind)
	require.Len(t, class.Children(), 1)
	assert.Equal(t, path+"::FooTest::testAddsValues", class.Children()[0].ID)
	assert.Same(t, file, class.Children()[0].File())
}
