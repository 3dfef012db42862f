package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ptx/internal/cli"
	"ptx/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	flags *cli.Flags
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	s, err := cli.Open(lc.flags, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Discover(cmdContext(cmd)); err != nil {
		return err
	}

	formatter := ui.NewFormatter(cmd.OutOrStdout(), s.Workspace)
	found := 0
	for _, p := range s.Providers {
		files, _ := p.Select(nil, s.Config.Flags.NameFilter)
		if len(files) == 0 {
			continue
		}
		if found > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		found += len(files)
		formatter.PrintTestList(p.Name(), files, s.Config.Flags.TestCases, p.Resolve)
	}

	if found == 0 {
		color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "No tests found")
	}
	return nil
}
