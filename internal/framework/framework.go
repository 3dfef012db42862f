// Package framework holds the capability records that specialise the generic
// discovery and execution engine for one test framework.
package framework

import (
	"regexp"

	"ptx/internal/config"
	"ptx/internal/discovery"
	"ptx/internal/domain"
	"ptx/internal/parser"
	"ptx/internal/tree"
)

const (
	NameBats    = "bats"
	NamePHPUnit = "phpunit"
)

// Framework is everything the engine needs to know about one test framework
type Framework struct {
	Name string

	// Source parses test files into items
	Source discovery.SourceParser
	// Results parses process output into per-case results
	Results parser.ResultParser

	// LabelKey and ResultKey map a case label and a printed result name onto
	// the value they are correlated by
	LabelKey  func(label string) string
	ResultKey func(name string) string

	// FormatArgs switch the executable to its machine-parsable output
	FormatArgs []string
	// FilterArgs narrows a run to one sub-node of a file; nil runs the whole file
	FilterArgs func(n *tree.Node) []string

	// FailureExitCode means "ran, some tests failed"
	FailureExitCode int

	// Settings selects this framework's section of the configuration
	Settings func(cfg *config.Config) config.Framework
}

// Bats is the shell test framework
func Bats() Framework {
	return Framework{
		Name:       NameBats,
		Source:     discovery.NewBatsParser(),
		Results:    parser.NewTAPParser(),
		LabelKey:   identity,
		ResultKey:  identity,
		FormatArgs: []string{"--tap", "--timing"},
		FilterArgs: func(n *tree.Node) []string {
			if n.Kind != domain.KindCase {
				return nil
			}
			return []string{"--filter", "^" + regexp.QuoteMeta(n.Label) + "$"}
		},
		FailureExitCode: 1,
		Settings:        func(cfg *config.Config) config.Framework { return cfg.Bats },
	}
}

// PHPUnit is the unit-test framework
func PHPUnit() Framework {
	return Framework{
		Name:       NamePHPUnit,
		Source:     discovery.NewPHPUnitParser(),
		Results:    parser.NewTestDoxParser(),
		LabelKey:   parser.Humanize,
		ResultKey:  parser.NormalizeName,
		FormatArgs: []string{"--testdox", "--colors=never"},
		FilterArgs: func(n *tree.Node) []string {
			switch n.Kind {
			case domain.KindClass:
				return []string{"--filter", `/\b` + n.Label + `::/`}
			case domain.KindCase:
				class := n.Parent()
				if class == nil {
					return []string{"--filter", `/::` + n.Label + `\b/`}
				}
				return []string{"--filter", `/\b` + class.Label + `::` + n.Label + `\b/`}
			default:
				return nil
			}
		},
		FailureExitCode: 1,
		Settings:        func(cfg *config.Config) config.Framework { return cfg.PHPUnit },
	}
}

// All returns every supported framework
func All() []Framework {
	return []Framework{Bats(), PHPUnit()}
}

// ByName returns the framework with the given name
func ByName(name string) (Framework, bool) {
	for _, f := range All() {
		if f.Name == name {
			return f, true
		}
	}
	return Framework{}, false
}

func identity(s string) string { return s }
