// Package sink writes the rendered artifact to disk, skipping no-op writes.
package sink

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSink persists rendered bytes at a stable path. The file is replaced
// only when the content differs from the previous run, and never partially:
// data is written to a temp file first and renamed into place.
type FileSink struct {
	path string
}

// NewFileSink creates a sink for the given target path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Path returns the target path.
func (s *FileSink) Path() string {
	return s.path
}

// Write persists data if it differs from the current file content.
// It reports whether a write happened.
func (s *FileSink) Write(data []byte) (bool, error) {
	existing, err := os.ReadFile(s.path)
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to read existing artifact: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return false, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return false, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return false, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return false, fmt.Errorf("failed to replace artifact: %w", err)
	}
	return true, nil
}
