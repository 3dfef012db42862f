package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptx/internal/domain"
)

func TestFramework_ExcludeGlobs(t *testing.T) {
	tests := []struct {
		name     string
		exclude  string
		expected []string
	}{
		{name: "empty", exclude: "", expected: nil},
		{name: "single", exclude: "**/vendor/**", expected: []string{"**/vendor/**"}},
		{name: "trims and drops blanks", exclude: " a/** , ,b/**,", expected: []string{"a/**", "b/**"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Framework{Exclude: tt.exclude}
			assert.Equal(t, tt.expected, f.ExcludeGlobs())
		})
	}
}

func TestFramework_TimeoutDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, Framework{Timeout: 1500}.TimeoutDuration())
	assert.Zero(t, Framework{}.TimeoutDuration())
}

func TestFramework_Validate(t *testing.T) {
	tests := []struct {
		name    string
		fw      Framework
		wantErr bool
	}{
		{name: "defaults", fw: DefaultBats},
		{name: "disabled skips checks", fw: Framework{Enabled: false}},
		{name: "empty pattern", fw: Framework{Enabled: true, Executable: "bats"}, wantErr: true},
		{name: "bad pattern", fw: Framework{Enabled: true, Pattern: "[", Executable: "bats"}, wantErr: true},
		{name: "bad exclude", fw: Framework{Enabled: true, Pattern: "**/*.bats", Exclude: "a/**,[", Executable: "bats"}, wantErr: true},
		{name: "negative timeout", fw: Framework{Enabled: true, Pattern: "*.bats", Timeout: -1, Executable: "bats"}, wantErr: true},
		{name: "container without executable", fw: Framework{Enabled: true, Pattern: "*.bats", UseContainer: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fw.Validate("bats")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultContainerRuntime, cfg.ContainerRuntime)
	assert.Equal(t, DefaultBats, cfg.Bats)
	assert.Equal(t, DefaultPHPUnit, cfg.PHPUnit)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, New(), cfg)
	})

	t.Run("overrides keep unspecified defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ptx.yaml")
		content := `
roots:
  - name: plugin-a
    path: /work/a
bats:
  timeout: 500
  useContainer: true
phpunit:
  enabled: false
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []domain.ProjectRoot{{Name: "plugin-a", Path: "/work/a"}}, cfg.Roots)
		assert.Equal(t, 500, cfg.Bats.Timeout)
		assert.True(t, cfg.Bats.UseContainer)
		assert.Equal(t, DefaultBats.Pattern, cfg.Bats.Pattern)
		assert.False(t, cfg.PHPUnit.Enabled)
		assert.Equal(t, DefaultPHPUnit.Executable, cfg.PHPUnit.Executable)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ptx.yaml")
		require.NoError(t, os.WriteFile(path, []byte("bats: [unclosed"), 0644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ptx.yaml")
		require.NoError(t, os.WriteFile(path, []byte("bats:\n  timeout: -5\n"), 0644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestConfig_ResolveRoots(t *testing.T) {
	t.Run("defaults to working directory", func(t *testing.T) {
		cfg := New()
		roots, err := cfg.ResolveRoots()
		require.NoError(t, err)
		require.Len(t, roots, 1)

		wd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, wd, roots[0].Path)
		assert.Equal(t, filepath.Base(wd), roots[0].Name)
	})

	t.Run("fills missing names", func(t *testing.T) {
		dir := t.TempDir()
		cfg := New()
		cfg.Roots = []domain.ProjectRoot{{Path: dir}, {Name: "named", Path: dir}}
		roots, err := cfg.ResolveRoots()
		require.NoError(t, err)
		assert.Equal(t, filepath.Base(dir), roots[0].Name)
		assert.Equal(t, "named", roots[1].Name)
	})
}

func TestFileSource_ReloadsEveryCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ptx.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bats:\n  timeout: 100\n"), 0644))
	src := FileSource{Path: path, Apply: func(c *Config) { c.Bats.UseContainer = true }}

	cfg, err := src.Current()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Bats.Timeout)
	assert.True(t, cfg.Bats.UseContainer)

	require.NoError(t, os.WriteFile(path, []byte("bats:\n  timeout: 200\n"), 0644))
	cfg, err = src.Current()
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Bats.Timeout)

	require.NoError(t, os.WriteFile(path, []byte("bats: [unclosed"), 0644))
	_, err = src.Current()
	assert.Error(t, err)
}

func TestStatic(t *testing.T) {
	cfg := New()
	got, err := Static{Config: cfg}.Current()
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}
