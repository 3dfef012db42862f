package main

import (
	"fmt"
	"os"

	"ptx/internal/cli"
	"ptx/internal/cli/commands"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:     "ptx",
		Short:   "Discover and run bats and PHPUnit tests",
		Long:    `Discovers bats and PHPUnit tests across several project roots, runs them natively or in containers and correlates per-case results back onto the test tree.`,
		Version: version,
		// Test failures are reported by the summary
		SilenceUsage: true,
	}

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags
	cli.BindPersistentFlags(rootCmd, &flags)

	// Register all commands
	commands.NewCommands(&flags).Register(rootCmd, &flags)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
