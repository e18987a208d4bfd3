package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/fresque-scraper/internal/record"
)

const (
	filePrefix = "records_"
	fileSuffix = ".json"
	fileStamp  = "20060102-150405"
)

// Storage handles persistence of run outputs
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// recordsPath returns the output file for a run started at runAt
func (s *Storage) recordsPath(runAt time.Time) string {
	return filepath.Join(s.dataDir, filePrefix+runAt.UTC().Format(fileStamp)+fileSuffix)
}

// SaveRecords writes records as an indented JSON array and returns the
// file path. The file is written to a temporary name first and renamed,
// so readers never observe a partial run.
func (s *Storage) SaveRecords(records []*record.Record, runAt time.Time) (string, error) {
	if records == nil {
		records = []*record.Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding records: %w", err)
	}

	path := s.recordsPath(runAt)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("writing records: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("writing records: %w", err)
	}

	return path, nil
}
