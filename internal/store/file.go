package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tobiasmay/go-playlist-fingerprint/internal/analysis"
)

// FileStore persists each report as one JSON file under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a file-backed
// store.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating analysis directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save assigns an analysis ID, embeds it in the stored blob, and writes the
// report to <dir>/<id>.json.
func (s *FileStore) Save(ctx context.Context, report *analysis.Report) (string, error) {
	id := newAnalysisID()

	stored := *report
	stored.AnalysisID = id

	data, err := json.Marshal(&stored)
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(s.path(id), data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return id, nil
}

// Load reads a stored report. Returns ErrNotFound when the ID is unknown.
func (s *FileStore) Load(ctx context.Context, analysisID string) (*analysis.Report, error) {
	// IDs come from URLs; reject anything that is not a bare file name.
	if analysisID == "" || filepath.Base(analysisID) != analysisID {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(s.path(analysisID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	var report analysis.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return &report, nil
}

func (s *FileStore) path(analysisID string) string {
	return filepath.Join(s.dir, analysisID+".json")
}
