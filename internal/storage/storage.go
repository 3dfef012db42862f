package storage

import (
	"ptx/internal/domain"
	"ptx/internal/tree"
)

// Storage persists and loads run reports (e.g. for the report command).
type Storage interface {
	Save(runs []*tree.Run) error
	Load() ([]domain.RunReport, error)
	// SaveReports writes already built reports.
	SaveReports(reports []domain.RunReport) error
}

// JSONStorage stores reports in a JSON file.
type JSONStorage struct {
	path string
}

// NewJSONStorage returns a Storage that reads/writes the JSON file at path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the report file location
func (s *JSONStorage) Path() string {
	return s.path
}
