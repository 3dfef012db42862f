package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ptx/internal/cli"
	"ptx/internal/config"
	"ptx/internal/storage"
	"ptx/internal/ui"
	"ptx/internal/workspace"
)

// ReportCommand handles the report command
type ReportCommand struct {
	flags *cli.Flags
}

// Execute runs the command
func (rc *ReportCommand) Execute(cmd *cobra.Command, args []string) error {
	path := config.DefaultReportFile
	if len(args) > 0 {
		path = args[0]
	}

	reports, err := storage.NewJSONStorage(path).Load()
	if err != nil {
		return err
	}

	// Roots only shorten the displayed paths; a broken config is not fatal here.
	ws := workspace.New(zerolog.Nop())
	if cfg, err := config.Load(rc.flags.ConfigPath); err == nil {
		if roots, err := cfg.ResolveRoots(); err == nil {
			for _, r := range roots {
				ws.AddRoot(r)
			}
		}
	}

	ui.NewFormatter(cmd.OutOrStdout(), ws).PrintSummary(reports)
	return nil
}
