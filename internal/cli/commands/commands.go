package commands

import (
	"github.com/spf13/cobra"

	"ptx/internal/cli"
)

// Commands holds all CLI commands
type Commands struct {
	Run     *RunCommand
	List    *ListCommand
	Watch   *WatchCommand
	Explore *ExploreCommand
	Report  *ReportCommand
}

// NewCommands creates all commands. The session is opened by each command
// once its flags are parsed.
func NewCommands(flags *cli.Flags) *Commands {
	return &Commands{
		Run:     &RunCommand{flags: flags},
		List:    &ListCommand{flags: flags},
		Watch:   &WatchCommand{flags: flags},
		Explore: &ExploreCommand{flags: flags},
		Report:  &ReportCommand{flags: flags},
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	// Run command
	runCmd := &cobra.Command{
		Use:   "run [node-id|path ...]",
		Short: "Run bats and PHPUnit tests",
		Long: "Discover tests and run the selected files, classes or cases one after the other. " +
			"Without arguments every discovered file is run.",
		RunE: c.Run.Execute,
	}
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test files by name pattern (supports wildcards, e.g., '*UserTest.php' or '*math*')")
	runCmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Stream process output and print every result")
	runCmd.Flags().StringVar(&flags.ReportPath, "report", "", "Write a JSON run report to this file")
	runCmd.Flags().BoolVar(&flags.UseContainer, "container", false, "Run tests inside containers when the runtime is available")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered tests",
		Long:  "Scan the project roots and list test files without executing them",
		RunE:  c.List.Execute,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test files by name pattern (supports wildcards, e.g., '*UserTest.php' or '*math*')")
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "List test cases as well as test files")
	rootCmd.AddCommand(listCmd)

	// Watch command
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the test tree in sync with the file system",
		Long:  "Watch the project roots, adding, re-parsing and removing test files as they change",
		RunE:  c.Watch.Execute,
	}
	watchCmd.Flags().BoolVar(&flags.RunOnChange, "run", false, "Run a test file whenever it is created or changed")
	watchCmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Stream process output of triggered runs")
	rootCmd.AddCommand(watchCmd)

	// Explore command
	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse and run tests interactively",
		Long:  "Display the test tree in an interactive viewer; files are parsed when expanded",
		RunE:  c.Explore.Execute,
	}
	exploreCmd.Flags().BoolVar(&flags.UseContainer, "container", false, "Run tests inside containers when the runtime is available")
	rootCmd.AddCommand(exploreCmd)

	// Report command
	reportCmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Show a saved run report",
		Long:  "Print the summary of a report written by run --report",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.Report.Execute,
	}
	rootCmd.AddCommand(reportCmd)
}
