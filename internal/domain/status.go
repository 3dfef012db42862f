package domain

import "fmt"

// Status is the run state of a tree node
type Status int

const (
	StatusUnstarted Status = iota
	StatusQueued
	StatusRunning
	StatusPassed
	StatusFailed
	StatusSkipped
	StatusErrored
)

// String makes Status satisfy fmt.Stringer
func (s Status) String() string {
	switch s {
	case StatusUnstarted:
		return "unstarted"
	case StatusQueued:
		return "queued"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is allowed within a run
func (s Status) Terminal() bool {
	return s == StatusPassed || s == StatusFailed || s == StatusSkipped || s == StatusErrored
}

// MarshalText encodes the status by name in reports
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name written by MarshalText
func (s *Status) UnmarshalText(text []byte) error {
	for c := StatusUnstarted; c <= StatusErrored; c++ {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}
