// Package cache persists the intermediate trajectory model between the
// model-building phase and generation requests.
package cache

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/palmto/trajgen-backend-go/internal/models"
	"github.com/palmto/trajgen-backend-go/internal/palmto"
	"github.com/palmto/trajgen-backend-go/internal/spatial"
)

var (
	// ErrNotFound is returned when a cache reference does not resolve to a file
	ErrNotFound = errors.New("cache file not found")
	// ErrMalformed is returned when a blob decodes without all required fields
	ErrMalformed = errors.New("malformed cache blob")
)

// Blob is the durable handoff artifact written after phase 1. A Load success
// only guarantees field presence; internal consistency of the model is
// trusted, not verified.
type Blob struct {
	Grid      *spatial.Grid
	Ngrams    *palmto.NgramModel
	Sentences []palmto.Sentence
	Boundary  spatial.Boundary
	CellSize  int
	Stats     models.PipelineStats
	CreatedAt time.Time
}

// Store reads and writes cache blobs inside a dedicated directory
type Store struct {
	dir string
}

// NewStore creates a cache store rooted at dir
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Filename returns the cache reference for a cell size. The name is derived
// from the cell size alone: two models built with the same cell size share
// one file and the later Save overwrites the earlier one.
func Filename(cellSize int) string {
	return fmt.Sprintf("cache_%d.gob", cellSize)
}

// Save serializes the blob to its derived filename, creating the cache
// directory if absent. The blob is written to a temp file and renamed so a
// failed save never leaves a partial cache behind.
func (s *Store) Save(blob *Blob) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}

	name := Filename(blob.CellSize)
	tmp, err := os.CreateTemp(s.dir, name+".tmp*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp cache file: %w", err)
	}

	if err := gob.NewEncoder(tmp).Encode(blob); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to encode cache blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close temp cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move cache file into place: %w", err)
	}

	return name, nil
}

// Load resolves a stored cache reference and decodes it
func (s *Store) Load(name string) (*Blob, error) {
	if name == "" || name != filepath.Base(name) {
		return nil, fmt.Errorf("%w: invalid reference %q", ErrNotFound, name)
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	return decode(f)
}

// LoadFrom decodes a freshly uploaded blob without touching disk state
func LoadFrom(r io.Reader) (*Blob, error) {
	return decode(r)
}

// Delete removes a stored cache file. Used when a client asks for its cache
// to be discarded after generation.
func (s *Store) Delete(name string) error {
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("%w: invalid reference %q", ErrNotFound, name)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

func decode(r io.Reader) (*Blob, error) {
	var blob Blob
	if err := gob.NewDecoder(r).Decode(&blob); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch {
	case blob.Grid == nil:
		return nil, fmt.Errorf("%w: missing grid", ErrMalformed)
	case blob.Ngrams == nil:
		return nil, fmt.Errorf("%w: missing ngram model", ErrMalformed)
	case len(blob.Sentences) == 0:
		return nil, fmt.Errorf("%w: missing token sentences", ErrMalformed)
	case blob.CellSize <= 0:
		return nil, fmt.Errorf("%w: missing cell size", ErrMalformed)
	}

	return &blob, nil
}
