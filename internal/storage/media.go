// Package storage manages the media area on disk: uploaded input files,
// generated and matched trajectory CSVs and the model cache directory.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Media subdirectories
const (
	UploadsDir   = "uploads"
	GeneratedDir = "generated"
	MatchedDir   = "matched"
	CacheDir     = "cache"
)

// Media is the root of the on-disk media area
type Media struct {
	root string
}

// NewMedia creates the media root and its subdirectories
func NewMedia(root string) (*Media, error) {
	for _, sub := range []string{UploadsDir, GeneratedDir, MatchedDir, CacheDir} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create media dir %s: %w", sub, err)
		}
	}
	return &Media{root: root}, nil
}

// Root returns the media root path
func (m *Media) Root() string {
	return m.root
}

// Path joins a subdirectory and filename under the media root
func (m *Media) Path(sub, filename string) string {
	return filepath.Join(m.root, sub, filename)
}

// CachePath returns the cache directory for the cache store
func (m *Media) CachePath() string {
	return filepath.Join(m.root, CacheDir)
}

// SaveUpload persists an uploaded stream under uploads/ and returns the
// stored path
func (m *Media) SaveUpload(filename string, r io.Reader) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid upload filename %q", filename)
	}

	path := m.Path(UploadsDir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return path, nil
}

// Resolve locates a file for download: first directly under the media root,
// then inside the generated, matched and cache subdirectories. Returns
// os.ErrNotExist when no candidate exists.
func (m *Media) Resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid filename %q: %w", filename, os.ErrNotExist)
	}

	candidates := []string{filepath.Join(m.root, filename)}
	for _, sub := range []string{GeneratedDir, MatchedDir, CacheDir} {
		candidates = append(candidates, m.Path(sub, filename))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("file %s: %w", filename, os.ErrNotExist)
}
