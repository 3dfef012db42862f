package cli

import (
	"github.com/spf13/cobra"

	"ptx/internal/config"
)

// Flags holds command-line flags
type Flags struct {
	ConfigPath   string
	LogLevel     string
	LogFile      string
	Framework    string
	Roots        []string
	NameFilter   string
	TestCases    bool
	Verbose      bool
	ReportPath   string
	UseContainer bool
	RunOnChange  bool
}

// BindPersistentFlags registers the flags shared by every command
func BindPersistentFlags(rootCmd *cobra.Command, f *Flags) {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&f.ConfigPath, "config", config.DefaultConfigFile, "Path to the configuration file")
	pf.StringVar(&f.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error); overrides the config file")
	pf.StringVar(&f.LogFile, "log-file", "", "Write logs to this file instead of stderr")
	pf.StringVar(&f.Framework, "framework", "", "Only use this framework (bats or phpunit)")
	pf.StringSliceVar(&f.Roots, "root", nil, "Only use project roots with these names (wildcards allowed)")
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Framework:    f.Framework,
		Roots:        f.Roots,
		NameFilter:   f.NameFilter,
		TestCases:    f.TestCases,
		Verbose:      f.Verbose,
		ReportPath:   f.ReportPath,
		UseContainer: f.UseContainer,
		RunOnChange:  f.RunOnChange,
	}
}

// Apply overrides file settings with the flags that were given
func (f *Flags) Apply(cfg *config.Config) {
	cfg.Flags = f.ToConfigFlags()
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.UseContainer {
		cfg.Bats.UseContainer = true
		cfg.PHPUnit.UseContainer = true
	}
}
