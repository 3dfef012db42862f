// Package parser turns captured test process output into per-case results.
package parser

import "ptx/internal/domain"

// ResultParser extracts per-case results from process output. Parsing is best
// effort: lines it does not understand are reported back, never an error.
type ResultParser interface {
	ParseResults(output string) (results []domain.CaseResult, unmatched []string)
}
