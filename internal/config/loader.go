package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path on top of the defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := New()
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Source hands out the current configuration
type Source interface {
	Current() (*Config, error)
}

// FileSource reloads the file on every call so each run sees its current
// contents. Apply, if set, is run on every loaded configuration.
type FileSource struct {
	Path  string
	Apply func(*Config)
}

// Current implements Source
func (s FileSource) Current() (*Config, error) {
	cfg, err := Load(s.Path)
	if err != nil {
		return nil, err
	}
	if s.Apply != nil {
		s.Apply(cfg)
	}
	return cfg, nil
}

// Static always returns the same configuration
type Static struct {
	Config *Config
}

// Current implements Source
func (s Static) Current() (*Config, error) {
	return s.Config, nil
}
