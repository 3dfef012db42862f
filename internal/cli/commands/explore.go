package commands

import (
	"io"

	"github.com/spf13/cobra"

	"ptx/internal/cli"
	"ptx/internal/logging"
	"ptx/internal/ui"
)

// ExploreCommand handles the explore command
type ExploreCommand struct {
	flags *cli.Flags
}

// Execute runs the command
func (ec *ExploreCommand) Execute(cmd *cobra.Command, args []string) error {
	// The TUI owns the terminal; logs are dropped unless --log-file is set.
	s, err := cli.Open(ec.flags, io.Discard)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmdContext(cmd)
	if err := s.Discover(ctx); err != nil {
		return err
	}

	suites := make([]ui.Suite, 0, len(s.Providers))
	for _, p := range s.Providers {
		suites = append(suites, p)
	}
	formatter := ui.NewFormatter(cmd.OutOrStdout(), s.Workspace)
	return ui.NewExplorer(suites, formatter, logging.For(s.Logger, "explorer")).Run(ctx)
}
