package parser

import (
	"strings"
	"unicode/utf8"

	"ptx/internal/domain"
)

var (
	passGlyphs = []rune{'✔', '✓', '☑'}
	failGlyphs = []rune{'✘', '✗', '✖', '✕', '×'}
	skipGlyphs = []rune{'↩', '∅'}

	// Box drawing prefixes of the failure detail block printed after a cross line
	detailGlyphs = []rune{'┐', '├', '│', '┴'}
)

// TestDoxParser parses phpunit --testdox output:
//
//	Foo (Tests\Foo)
//	 ✔ Adds values
//	 ✘ Rejects bad input
//	   ┐
//	   ├ Failed asserting that false is true.
//	   ┴
type TestDoxParser struct{}

// NewTestDoxParser creates a new TestDoxParser
func NewTestDoxParser() *TestDoxParser {
	return &TestDoxParser{}
}

// ParseResults implements ResultParser
func (p *TestDoxParser) ParseResults(output string) ([]domain.CaseResult, []string) {
	var results []domain.CaseResult
	var unmatched []string
	var details []string
	current := -1

	flush := func() {
		if current >= 0 && len(details) > 0 {
			results[current].Message = strings.Join(details, "\n")
		}
		details = nil
	}

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))
		if line == "" {
			continue
		}

		glyph, size := utf8.DecodeRuneInString(line)
		if containsRune(detailGlyphs, glyph) {
			if current >= 0 && results[current].Status == domain.StatusFailed {
				if text := strings.TrimSpace(line[size:]); text != "" {
					details = append(details, text)
				}
			}
			continue
		}

		status, ok := glyphStatus(glyph)
		if !ok {
			unmatched = append(unmatched, line)
			continue
		}

		flush()
		results = append(results, domain.CaseResult{
			Name:   strings.TrimSpace(line[size:]),
			Status: status,
		})
		current = len(results) - 1
	}
	flush()

	return results, unmatched
}

func glyphStatus(r rune) (domain.Status, bool) {
	switch {
	case containsRune(passGlyphs, r):
		return domain.StatusPassed, true
	case containsRune(failGlyphs, r):
		return domain.StatusFailed, true
	case containsRune(skipGlyphs, r):
		return domain.StatusSkipped, true
	default:
		return domain.StatusUnstarted, false
	}
}

func containsRune(set []rune, r rune) bool {
	for _, c := range set {
		if c == r {
			return true
		}
	}
	return false
}
