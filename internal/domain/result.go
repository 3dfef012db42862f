package domain

import "time"

// CaseResult is one per-case result line parsed from process output
type CaseResult struct {
	Name     string        // Case name as printed by the reporter
	Status   Status        // StatusPassed, StatusFailed or StatusSkipped
	Duration time.Duration // Elapsed time, zero if not reported
	Message  string        // Failure diagnostics following the result line
}

// RunResult is the transient run state attached to one node for one run
type RunResult struct {
	Status   Status
	Message  string
	Duration time.Duration
	Output   string
}

// NodeReport is the exported result of one node
type NodeReport struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Kind       string  `json:"kind"`
	Status     Status  `json:"status"`
	Message    string  `json:"message,omitempty"`
	DurationMS float64 `json:"duration_ms,omitempty"`
}

// RunReportMeta contains metadata about a run batch
type RunReportMeta struct {
	RunID     string `json:"run_id"`
	Framework string `json:"framework"`
	Total     int    `json:"total"`
	Passed    int    `json:"passed"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
	Errored   int    `json:"errored"`
	Duration  string `json:"duration"`
	Timestamp string `json:"timestamp"`
}

// RunReport is the complete exported structure of a run batch
type RunReport struct {
	Meta    RunReportMeta `json:"meta"`
	Results []NodeReport  `json:"results"`
}
