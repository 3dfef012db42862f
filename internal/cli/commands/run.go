package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ptx/internal/cli"
	"ptx/internal/domain"
	"ptx/internal/provider"
	"ptx/internal/storage"
	"ptx/internal/tree"
	"ptx/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	flags *cli.Flags
}

type selection struct {
	provider *provider.Provider
	nodes    []*tree.Node
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	s, err := cli.Open(rc.flags, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
	defer stop()

	if err := s.Discover(ctx); err != nil {
		return err
	}

	selections, err := selectNodes(s.Providers, args, s.Config.Flags.NameFilter)
	if err != nil {
		return err
	}
	if len(selections) == 0 {
		color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "No tests to execute")
		return nil
	}

	var runs []*tree.Run
	for _, sel := range selections {
		runs = append(runs, rc.runOne(ctx, cmd, sel))
	}

	reports := make([]domain.RunReport, 0, len(runs))
	for _, run := range runs {
		reports = append(reports, storage.BuildReport(run))
	}
	if path := s.Config.Flags.ReportPath; path != "" {
		if err := storage.NewJSONStorage(path).SaveReports(reports); err != nil {
			return fmt.Errorf("failed to save run report: %w", err)
		}
	}

	ui.NewFormatter(cmd.OutOrStdout(), s.Workspace).PrintSummary(reports)

	failed := 0
	for _, r := range reports {
		failed += r.Meta.Failed + r.Meta.Errored
	}
	if failed > 0 {
		return fmt.Errorf("%d test(s) failed", failed)
	}
	return nil
}

func (rc *RunCommand) runOne(ctx context.Context, cmd *cobra.Command, sel selection) *tree.Run {
	if rc.flags.Verbose {
		return sel.provider.Run(ctx, sel.nodes, ui.NewReporter(cmd.OutOrStdout(), true))
	}
	progress := ui.NewProgressBar(sel.nodes, cmd.ErrOrStderr())
	defer progress.Finish()
	return sel.provider.Run(ctx, sel.nodes, progress)
}

// selectNodes resolves the arguments against every provider. An argument no
// provider knows is an error.
func selectNodes(providers []*provider.Provider, args []string, nameFilter string) ([]selection, error) {
	unknownTo := make(map[string]int, len(args))
	var selections []selection
	for _, p := range providers {
		nodes, unknown := p.Select(args, nameFilter)
		for _, arg := range unknown {
			unknownTo[arg]++
		}
		if len(nodes) > 0 {
			selections = append(selections, selection{provider: p, nodes: nodes})
		}
	}
	for _, arg := range args {
		if unknownTo[arg] == len(providers) {
			return nil, fmt.Errorf("no test matches %q", arg)
		}
	}
	return selections, nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
