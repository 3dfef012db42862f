package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"ptx/internal/config"
	"ptx/internal/logging"
	"ptx/internal/provider"
	"ptx/internal/workspace"
)

// Session is the state one command works with: configuration, logger,
// workspace and one provider per enabled framework.
type Session struct {
	Config    *config.Config
	Source    config.Source
	Logger    zerolog.Logger
	Workspace *workspace.Workspace
	Providers []*provider.Provider

	logFile *os.File
}

// Open loads the configuration and sets up the providers. Logs go to
// logOut unless a log file was requested.
func Open(f *Flags, logOut io.Writer) (*Session, error) {
	source := config.FileSource{Path: f.ConfigPath, Apply: f.Apply}
	cfg, err := source.Current()
	if err != nil {
		return nil, err
	}

	s := &Session{Config: cfg, Source: source}
	if f.LogFile != "" {
		file, err := os.OpenFile(f.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		s.logFile = file
		logOut = file
	}

	s.Logger, err = logging.New(cfg.LogLevel, logOut)
	if err != nil {
		s.Close()
		return nil, err
	}

	roots, err := cfg.ResolveRoots()
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Workspace = workspace.New(logging.For(s.Logger, "workspace"), roots...)

	providers, err := provider.NewAll(cfg, source, s.Workspace, s.Logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	for _, p := range providers {
		if cfg.Flags.Framework == "" || cfg.Flags.Framework == p.Name() {
			s.Providers = append(s.Providers, p)
		}
	}
	if len(s.Providers) == 0 {
		s.Close()
		return nil, fmt.Errorf("no enabled framework matches %q", cfg.Flags.Framework)
	}
	return s, nil
}

// Discover runs discovery for every provider
func (s *Session) Discover(ctx context.Context) error {
	for _, p := range s.Providers {
		if err := p.Discover(ctx, s.Config.Flags.Roots...); err != nil {
			return fmt.Errorf("%s discovery: %w", p.Name(), err)
		}
		s.Logger.Debug().Str("framework", p.Name()).Int("files", p.Tree().Len()).Msg("discovery finished")
	}
	return nil
}

// Close releases the log file, if any
func (s *Session) Close() {
	if s.logFile != nil {
		_ = s.logFile.Close()
		s.logFile = nil
	}
}
