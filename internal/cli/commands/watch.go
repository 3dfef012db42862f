package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ptx/internal/cli"
	"ptx/internal/logging"
	"ptx/internal/provider"
	"ptx/internal/tree"
	"ptx/internal/ui"
	"ptx/internal/watcher"
)

// ignoredDirs are never watched
var ignoredDirs = []string{"node_modules", "vendor"}

// WatchCommand handles the watch command
type WatchCommand struct {
	flags *cli.Flags
}

// Execute runs the command
func (wc *WatchCommand) Execute(cmd *cobra.Command, args []string) error {
	s, err := cli.Open(wc.flags, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
	defer stop()

	if err := s.Discover(ctx); err != nil {
		return err
	}

	handlers := make([]watcher.Handler, 0, len(s.Providers)+1)
	for _, p := range s.Providers {
		handlers = append(handlers, p)
	}
	if s.Config.Flags.RunOnChange {
		handlers = append(handlers, &runOnChange{
			ctx:       ctx,
			providers: s.Providers,
			observer:  ui.NewReporter(cmd.OutOrStdout(), s.Config.Flags.Verbose),
		})
	}

	w, err := watcher.New(logging.For(s.Logger, "watcher"), ignoredDirs, handlers...)
	if err != nil {
		return err
	}
	roots := s.Workspace.Roots()
	for _, r := range roots {
		if err := w.Add(r.Path); err != nil {
			return err
		}
	}

	for _, p := range s.Providers {
		color.New(color.FgCyan).Fprintf(cmd.OutOrStdout(), "%s: %d test file(s)\n", p.Name(), p.Tree().Len())
	}
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Watching %d project root(s), press Ctrl+C to stop\n", len(roots))
	return w.Run(ctx)
}

// runOnChange runs a test file after the providers have re-parsed it. It is
// registered after them so it sees the updated tree.
type runOnChange struct {
	ctx       context.Context
	providers []*provider.Provider
	observer  tree.Observer
}

func (r *runOnChange) Created(path string) { r.run(path) }
func (r *runOnChange) Changed(path string) { r.run(path) }
func (r *runOnChange) Deleted(string) {}

func (r *runOnChange) run(path string) {
	if r.ctx.Err() != nil {
		return
	}
	for _, p := range r.providers {
		if file, ok := p.Tree().File(filepath.Clean(path)); ok {
			p.Run(r.ctx, []*tree.Node{file}, r.observer)
		}
	}
}
