package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ptx/internal/domain"
	"ptx/internal/tree"
)

// reportFile is the on-disk layout
type reportFile struct {
	Runs []domain.RunReport `json:"runs"`
}

// BuildReport exports the state of every node the run touched. Only nodes
// that reached a terminal state are counted.
func BuildReport(run *tree.Run) domain.RunReport {
	report := domain.RunReport{
		Meta: domain.RunReportMeta{
			RunID:     run.ID,
			Framework: run.Framework,
			Duration:  run.Duration().String(),
			Timestamp: run.Started.Format(time.RFC3339),
		},
	}

	for _, n := range run.Nodes() {
		res := run.Result(n)
		report.Results = append(report.Results, domain.NodeReport{
			ID:         n.ID,
			Label:      n.Label,
			Kind:       n.Kind.String(),
			Status:     res.Status,
			Message:    res.Message,
			DurationMS: float64(res.Duration) / float64(time.Millisecond),
		})

		switch res.Status {
		case domain.StatusPassed:
			report.Meta.Passed++
		case domain.StatusFailed:
			report.Meta.Failed++
		case domain.StatusSkipped:
			report.Meta.Skipped++
		case domain.StatusErrored:
			report.Meta.Errored++
		default:
			continue
		}
		report.Meta.Total++
	}
	return report
}

// Save writes a report for every run to the JSON file.
func (s *JSONStorage) Save(runs []*tree.Run) error {
	reports := make([]domain.RunReport, 0, len(runs))
	for _, run := range runs {
		reports = append(reports, BuildReport(run))
	}
	return s.SaveReports(reports)
}

// SaveReports writes the reports to the JSON file, replacing its contents.
func (s *JSONStorage) SaveReports(reports []domain.RunReport) error {
	data, err := json.MarshalIndent(reportFile{Runs: reports}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal reports: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}
	return nil
}

// Load reads the reports from the JSON file.
func (s *JSONStorage) Load() ([]domain.RunReport, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read reports file: %w", err)
	}
	var file reportFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse reports: %w", err)
	}
	return file.Runs, nil
}
