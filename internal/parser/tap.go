package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"ptx/internal/domain"
)

const tapComment = "#"

var (
	tapLine   = regexp.MustCompile(`^(ok|not ok)\s+\d+\s+(.*)$`)
	tapSkip   = regexp.MustCompile(`(?i)\s*#\s*skip\b.*$`)
	tapTiming = regexp.MustCompile(`\s+in\s+(\d+(?:\.\d+)?)(ms|sec|s)$`)
	tapPlan   = regexp.MustCompile(`^\d+\.\.\d+$`)
)

// TAPParser parses bats output produced with --tap --timing:
//
//	ok 1 adds two numbers in 12ms
//	not ok 2 fails on bad input in 3ms
//	# (in test file test/math.bats, line 9)
type TAPParser struct{}

// NewTAPParser creates a new TAPParser
func NewTAPParser() *TAPParser {
	return &TAPParser{}
}

// ParseResults implements ResultParser
func (p *TAPParser) ParseResults(output string) ([]domain.CaseResult, []string) {
	var results []domain.CaseResult
	var unmatched []string
	var diagnostics []string
	current := -1

	flush := func() {
		if current >= 0 && len(diagnostics) > 0 {
			results[current].Message = strings.Join(diagnostics, "\n")
		}
		diagnostics = nil
	}

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimRight(raw, "\r")

		if strings.HasPrefix(line, tapComment) {
			if current >= 0 && results[current].Status == domain.StatusFailed {
				diagnostics = append(diagnostics, strings.TrimPrefix(strings.TrimPrefix(line, tapComment), " "))
			}
			continue
		}

		m := tapLine.FindStringSubmatch(line)
		if m == nil {
			if strings.TrimSpace(line) != "" && !tapPlan.MatchString(line) {
				unmatched = append(unmatched, line)
			}
			continue
		}

		flush()
		results = append(results, parseTAPCase(m[1] == "ok", m[2]))
		current = len(results) - 1
	}
	flush()

	return results, unmatched
}

func parseTAPCase(ok bool, rest string) domain.CaseResult {
	result := domain.CaseResult{Status: domain.StatusPassed}
	if !ok {
		result.Status = domain.StatusFailed
	}

	if loc := tapSkip.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]]
		result.Status = domain.StatusSkipped
	}

	if m := tapTiming.FindStringSubmatch(rest); m != nil {
		result.Duration = toDuration(m[1], m[2])
		rest = rest[:len(rest)-len(m[0])]
	}

	result.Name = strings.TrimSpace(rest)
	return result
}

// toDuration normalizes an elapsed value in ms or seconds
func toDuration(value, unit string) time.Duration {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	if unit != "ms" {
		v *= 1000
	}
	return time.Duration(v * float64(time.Millisecond))
}
