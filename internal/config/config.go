package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"ptx/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	// Open project roots; empty means the working directory
	Roots []domain.ProjectRoot `yaml:"roots"`

	LogLevel         string `yaml:"logLevel"`
	ContainerRuntime string `yaml:"containerRuntime"`

	Bats    Framework `yaml:"bats"`
	PHPUnit Framework `yaml:"phpunit"`

	// Command flags
	Flags Flags `yaml:"-"`
}

// Framework is the configuration surface of one test framework
type Framework struct {
	Enabled          bool     `yaml:"enabled"`
	Pattern          string   `yaml:"pattern"`          // Include glob, relative to each root
	Exclude          string   `yaml:"exclude"`          // Comma-separated exclude globs
	Roots            []string `yaml:"roots"`            // Allow-listed root names, empty = all
	Timeout          int      `yaml:"timeout"`          // Milliseconds, 0 = none
	Executable       string   `yaml:"executable"`       // Native test executable
	Image            string   `yaml:"image"`            // Container image
	ContainerCommand string   `yaml:"containerCommand"` // Command inside the image, empty = entrypoint
	UseContainer     bool     `yaml:"useContainer"`
}

// Flags holds command-line flags that override the file
type Flags struct {
	Framework    string
	Roots        []string
	NameFilter   string
	TestCases    bool
	Verbose      bool
	ReportPath   string
	UseContainer bool
	RunOnChange  bool
}

// New creates a new Config with defaults
func New() *Config {
	return &Config{
		LogLevel:         DefaultLogLevel,
		ContainerRuntime: DefaultContainerRuntime,
		Bats:             DefaultBats,
		PHPUnit:          DefaultPHPUnit,
	}
}

// ExcludeGlobs splits the comma-separated exclude list
func (f Framework) ExcludeGlobs() []string {
	var globs []string
	for _, g := range strings.Split(f.Exclude, ",") {
		if g = strings.TrimSpace(g); g != "" {
			globs = append(globs, g)
		}
	}
	return globs
}

// TimeoutDuration returns the per-process timeout, zero meaning none
func (f Framework) TimeoutDuration() time.Duration {
	return time.Duration(f.Timeout) * time.Millisecond
}

// Validate checks one framework section
func (f Framework) Validate(name string) error {
	if !f.Enabled {
		return nil
	}
	if f.Pattern == "" {
		return fmt.Errorf("%s: pattern must not be empty", name)
	}
	if !doublestar.ValidatePattern(f.Pattern) {
		return fmt.Errorf("%s: invalid pattern %q", name, f.Pattern)
	}
	for _, g := range f.ExcludeGlobs() {
		if !doublestar.ValidatePattern(g) {
			return fmt.Errorf("%s: invalid exclude glob %q", name, g)
		}
	}
	if f.Timeout < 0 {
		return fmt.Errorf("%s: timeout must not be negative", name)
	}
	if f.Executable == "" && !f.UseContainer {
		return fmt.Errorf("%s: executable must not be empty", name)
	}
	return nil
}

// Validate checks the whole configuration
func (c *Config) Validate() error {
	for _, r := range c.Roots {
		if r.Path == "" {
			return fmt.Errorf("root %q has no path", r.Name)
		}
	}
	if err := c.Bats.Validate("bats"); err != nil {
		return err
	}
	return c.PHPUnit.Validate("phpunit")
}

// ResolveRoots returns the configured roots with absolute paths and names filled in.
// When none are configured the working directory is the single root.
func (c *Config) ResolveRoots() ([]domain.ProjectRoot, error) {
	roots := c.Roots
	if len(roots) == 0 {
		roots = []domain.ProjectRoot{{Path: "."}}
	}

	resolved := make([]domain.ProjectRoot, 0, len(roots))
	for _, r := range roots {
		abs, err := filepath.Abs(r.Path)
		if err != nil {
			return nil, fmt.Errorf("resolve root %s: %w", r.Path, err)
		}
		name := r.Name
		if name == "" {
			name = filepath.Base(abs)
		}
		resolved = append(resolved, domain.ProjectRoot{Name: name, Path: abs})
	}
	return resolved, nil
}
